package feed

import (
	"context"
	"time"

	"github.com/vaporshelf/edge/internal/cache"
	"github.com/vaporshelf/edge/internal/logger"
	"github.com/vaporshelf/edge/internal/upstream/release"
)

// KindRelease keys the release snapshot in the shared store.
const KindRelease = "release"

// ReleaseFetcher is implemented by the release upstream client.
type ReleaseFetcher interface {
	Latest(ctx context.Context) (release.Info, error)
	Fallback() release.Info
}

// ReleaseFeed serves the latest desktop build info.
type ReleaseFeed struct {
	fetcher ReleaseFetcher
	snap    *cache.Snapshot[release.Info]
	store   SnapshotStore // nil when no shared store is configured
	log     logger.Logger
	now     cache.Clock
}

func NewReleaseFeed(fetcher ReleaseFetcher, ttl time.Duration, now cache.Clock, store SnapshotStore, log logger.Logger) *ReleaseFeed {
	if now == nil {
		now = time.Now
	}
	return &ReleaseFeed{
		fetcher: fetcher,
		snap:    cache.New[release.Info](ttl, now),
		store:   store,
		log:     log,
		now:     now,
	}
}

// Get returns the release info, cached while fresh, refetched otherwise.
// On upstream failure the cache is left untouched and a degraded fallback is
// returned with Meta.Success false.
func (f *ReleaseFeed) Get(ctx context.Context) (release.Info, Meta) {
	if info, age, ok := f.snap.Get(); ok {
		return info, metaCached(age)
	}

	if info, fetchedAt, ok := f.loadShared(ctx); ok {
		f.snap.SetAt(info, fetchedAt)
		return info, metaCached(f.now().Sub(fetchedAt))
	}

	info, err := f.fetcher.Latest(ctx)
	if err != nil {
		f.log.Warn("release fetch failed, serving fallback", logger.Error(err))
		return f.fetcher.Fallback(), metaFailed("release data unavailable")
	}

	f.snap.Set(info)
	f.saveShared(ctx, info)
	return info, metaFresh()
}

// CacheAge exposes the entry age for the infra endpoint.
func (f *ReleaseFeed) CacheAge() (time.Duration, bool) {
	return f.snap.Age()
}

func (f *ReleaseFeed) loadShared(ctx context.Context) (release.Info, time.Time, bool) {
	if f.store == nil {
		return release.Info{}, time.Time{}, false
	}
	var info release.Info
	fetchedAt, err := f.store.Load(ctx, KindRelease, &info)
	if err != nil {
		f.log.Debug("shared release snapshot unavailable", logger.Error(err))
		return release.Info{}, time.Time{}, false
	}
	if fetchedAt.IsZero() || f.now().Sub(fetchedAt) >= f.snap.TTL() {
		return release.Info{}, time.Time{}, false
	}
	return info, fetchedAt, true
}

func (f *ReleaseFeed) saveShared(ctx context.Context, info release.Info) {
	if f.store == nil {
		return
	}
	if err := f.store.Save(ctx, KindRelease, info, f.snap.FetchedAt(), f.snap.TTL()); err != nil {
		f.log.Debug("failed to mirror release snapshot", logger.Error(err))
	}
}
