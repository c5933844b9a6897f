// Package redis mirrors per-kind upstream snapshots to Redis so multiple
// edge instances behind a balancer share one upstream fetch.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists upstream snapshots with their fetch stamps.
type Store struct {
	client *redis.Client
}

// NewStore creates a new snapshot store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// envelope wraps a payload with its fetch stamp. The TTL on the key itself
// only bounds storage; freshness is decided by the reader against fetchedAt.
type envelope struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Save stores the payload for kind. The key TTL is the cache TTL so stale
// snapshots age out of Redis on their own.
func (s *Store) Save(ctx context.Context, kind string, v any, fetchedAt time.Time, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", kind, err)
	}

	data, err := json.Marshal(envelope{Payload: payload, FetchedAt: fetchedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot envelope %s: %w", kind, err)
	}

	if err := s.client.Set(ctx, SnapshotKey(kind), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", kind, err)
	}
	return nil
}

// Load unmarshals the stored payload for kind into v and returns its fetch
// stamp. A missing key is not an error; it returns a zero time.
func (s *Store) Load(ctx context.Context, kind string, v any) (time.Time, error) {
	data, err := s.client.Get(ctx, SnapshotKey(kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil // No shared snapshot
		}
		return time.Time{}, fmt.Errorf("failed to load snapshot %s: %w", kind, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return time.Time{}, fmt.Errorf("failed to unmarshal snapshot envelope %s: %w", kind, err)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return time.Time{}, fmt.Errorf("failed to unmarshal snapshot payload %s: %w", kind, err)
	}

	return env.FetchedAt, nil
}
