package feed

import (
	"context"
	"sync"
	"time"

	"github.com/vaporshelf/edge/internal/cache"
	"github.com/vaporshelf/edge/internal/logger"
	"github.com/vaporshelf/edge/internal/sitecfg"
	"github.com/vaporshelf/edge/internal/upstream/presence"
)

// KindPresence keys the presence snapshot in the shared store.
const KindPresence = "presence"

// PresenceFetcher is implemented by the presence upstream client.
type PresenceFetcher interface {
	Lookup(ctx context.Context, id string) (*presence.Lanyard, error)
}

// PresenceFeed serves the developer roster with live presence.
// Roster identities come from the site data registry so a hot reload takes
// effect on the next refresh.
type PresenceFeed struct {
	fetcher PresenceFetcher
	site    *sitecfg.Registry
	snap    *cache.Snapshot[[]presence.Developer]
	store   SnapshotStore
	log     logger.Logger
	now     cache.Clock
}

func NewPresenceFeed(fetcher PresenceFetcher, site *sitecfg.Registry, ttl time.Duration, now cache.Clock, store SnapshotStore, log logger.Logger) *PresenceFeed {
	if now == nil {
		now = time.Now
	}
	return &PresenceFeed{
		fetcher: fetcher,
		site:    site,
		snap:    cache.New[[]presence.Developer](ttl, now),
		store:   store,
		log:     log,
		now:     now,
	}
}

// Get returns the roster with per-identity presence. One identity's lookup
// failure degrades only that entry (nil lanyard); the overall result fails
// only when every lookup failed, and then the cache is left untouched.
func (f *PresenceFeed) Get(ctx context.Context) ([]presence.Developer, Meta) {
	if devs, age, ok := f.snap.Get(); ok {
		return devs, metaCached(age)
	}

	if devs, fetchedAt, ok := f.loadShared(ctx); ok {
		f.snap.SetAt(devs, fetchedAt)
		return devs, metaCached(f.now().Sub(fetchedAt))
	}

	roster := f.site.Snapshot().Developers
	devs := make([]presence.Developer, len(roster))

	var wg sync.WaitGroup
	for i, identity := range roster {
		wg.Add(1)
		go func(i int, identity presence.Identity) {
			defer wg.Done()
			devs[i] = presence.Developer{ID: identity.ID, Name: identity.Name}
			lanyard, err := f.fetcher.Lookup(ctx, identity.ID)
			if err != nil {
				f.log.Debug("presence lookup failed",
					logger.String("id", identity.ID),
					logger.Error(err))
				return
			}
			devs[i].Lanyard = lanyard
		}(i, identity)
	}
	wg.Wait()

	if len(devs) > 0 && allAbsent(devs) {
		f.log.Warn("all presence lookups failed, serving degraded roster")
		return devs, metaFailed("presence data unavailable")
	}

	f.snap.Set(devs)
	f.saveShared(ctx, devs)
	return devs, metaFresh()
}

// CacheAge exposes the entry age for the infra endpoint.
func (f *PresenceFeed) CacheAge() (time.Duration, bool) {
	return f.snap.Age()
}

func allAbsent(devs []presence.Developer) bool {
	for _, d := range devs {
		if d.Lanyard != nil {
			return false
		}
	}
	return true
}

func (f *PresenceFeed) loadShared(ctx context.Context) ([]presence.Developer, time.Time, bool) {
	if f.store == nil {
		return nil, time.Time{}, false
	}
	var devs []presence.Developer
	fetchedAt, err := f.store.Load(ctx, KindPresence, &devs)
	if err != nil {
		f.log.Debug("shared presence snapshot unavailable", logger.Error(err))
		return nil, time.Time{}, false
	}
	if fetchedAt.IsZero() || f.now().Sub(fetchedAt) >= f.snap.TTL() {
		return nil, time.Time{}, false
	}
	return devs, fetchedAt, true
}

func (f *PresenceFeed) saveShared(ctx context.Context, devs []presence.Developer) {
	if f.store == nil {
		return
	}
	if err := f.store.Save(ctx, KindPresence, devs, f.snap.FetchedAt(), f.snap.TTL()); err != nil {
		f.log.Debug("failed to mirror presence snapshot", logger.Error(err))
	}
}
