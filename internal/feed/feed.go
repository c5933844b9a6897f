// Package feed implements the read-through upstream proxies: one feed per
// endpoint kind, each owning a single TTL'd cache snapshot.
//
// A feed never returns a raw error to its caller. Failures degrade into a
// typed fallback payload with Meta.Success false; the cache keeps its prior
// state. Concurrent refreshes of the same feed may duplicate the upstream
// call (last writer wins), accepted because the data is idempotent.
package feed

import (
	"context"
	"time"
)

// Meta describes how a payload was obtained.
type Meta struct {
	Success  bool
	Cached   bool
	CacheAge float64 // seconds, only meaningful when Cached
	Err      string  // human-readable message when !Success
}

// SnapshotStore mirrors cache entries to a shared backend so multiple edge
// instances can reuse one upstream fetch. All methods are best effort.
type SnapshotStore interface {
	// Load unmarshals the stored payload for kind into v and returns its
	// fetch time. A zero time means no snapshot exists.
	Load(ctx context.Context, kind string, v any) (time.Time, error)
	// Save stores the payload for kind with its fetch time.
	Save(ctx context.Context, kind string, v any, fetchedAt time.Time, ttl time.Duration) error
}

func metaFresh() Meta {
	return Meta{Success: true}
}

func metaCached(age time.Duration) Meta {
	return Meta{Success: true, Cached: true, CacheAge: age.Seconds()}
}

func metaFailed(msg string) Meta {
	return Meta{Err: msg}
}
