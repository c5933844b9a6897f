// Package cache provides the per-endpoint-kind snapshot cache.
//
// One Snapshot holds exactly one payload. Staleness is derived at read time
// from the age comparison; there is no background eviction. Concurrent
// refreshes may race (last writer wins), which is accepted for this
// idempotent display data.
package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time. Injected so tests drive TTL expiry
// deterministically.
type Clock func() time.Time

// Snapshot is a single-entry TTL cache for one upstream kind.
type Snapshot[T any] struct {
	mu        sync.RWMutex
	payload   T
	fetchedAt time.Time
	ttl       time.Duration
	now       Clock
}

// New creates an empty snapshot with the given TTL.
// A nil clock defaults to time.Now.
func New[T any](ttl time.Duration, now Clock) *Snapshot[T] {
	if now == nil {
		now = time.Now
	}
	return &Snapshot[T]{ttl: ttl, now: now}
}

// Get returns the cached payload and its age.
// ok is true only while the entry exists and has not outlived the TTL.
func (s *Snapshot[T]) Get() (payload T, age time.Duration, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fetchedAt.IsZero() {
		return payload, 0, false
	}
	age = s.now().Sub(s.fetchedAt)
	if age >= s.ttl {
		return payload, age, false
	}
	return s.payload, age, true
}

// Set stores a fresh payload stamped with the current time.
func (s *Snapshot[T]) Set(payload T) {
	s.SetAt(payload, s.now())
}

// SetAt stores a payload with an explicit fetch time. Used when adopting a
// snapshot fetched by another instance.
func (s *Snapshot[T]) SetAt(payload T, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = payload
	s.fetchedAt = fetchedAt
}

// Clear drops the entry, returning the snapshot to its empty state.
func (s *Snapshot[T]) Clear() {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = zero
	s.fetchedAt = time.Time{}
}

// Age returns the entry age and whether an entry exists at all, fresh or not.
func (s *Snapshot[T]) Age() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fetchedAt.IsZero() {
		return 0, false
	}
	return s.now().Sub(s.fetchedAt), true
}

// FetchedAt returns the stamp of the current entry (zero when empty).
func (s *Snapshot[T]) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// TTL returns the configured time-to-live.
func (s *Snapshot[T]) TTL() time.Duration { return s.ttl }
