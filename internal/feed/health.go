package feed

import (
	"context"
	"sync"
	"time"

	"github.com/vaporshelf/edge/internal/cache"
	"github.com/vaporshelf/edge/internal/logger"
	"github.com/vaporshelf/edge/internal/sitecfg"
	"github.com/vaporshelf/edge/internal/upstream/health"
)

// KindHealth keys the health snapshot in the shared store.
const KindHealth = "health"

// HealthProber is implemented by the health upstream prober.
type HealthProber interface {
	Probe(ctx context.Context, target health.Target) health.Record
}

// HealthFeed serves reachability records for the monitored endpoints.
// Probes are the expensive kind (each contacts an external target with its
// own timeout) so this feed carries the longest TTL.
type HealthFeed struct {
	prober HealthProber
	site   *sitecfg.Registry
	snap   *cache.Snapshot[[]health.Record]
	store  SnapshotStore
	log    logger.Logger
	now    cache.Clock
}

func NewHealthFeed(prober HealthProber, site *sitecfg.Registry, ttl time.Duration, now cache.Clock, store SnapshotStore, log logger.Logger) *HealthFeed {
	if now == nil {
		now = time.Now
	}
	return &HealthFeed{
		prober: prober,
		site:   site,
		snap:   cache.New[[]health.Record](ttl, now),
		store:  store,
		log:    log,
		now:    now,
	}
}

// Get returns the health records, probing all targets concurrently on a
// cache miss. Probes classify failures themselves, so Get always succeeds;
// an unreachable target is an offline record, not an error.
func (f *HealthFeed) Get(ctx context.Context) ([]health.Record, Meta) {
	if recs, age, ok := f.snap.Get(); ok {
		return recs, metaCached(age)
	}

	if recs, fetchedAt, ok := f.loadShared(ctx); ok {
		f.snap.SetAt(recs, fetchedAt)
		return recs, metaCached(f.now().Sub(fetchedAt))
	}

	targets := f.site.Snapshot().Targets
	recs := make([]health.Record, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target health.Target) {
			defer wg.Done()
			recs[i] = f.prober.Probe(ctx, target)
		}(i, target)
	}
	wg.Wait()

	f.snap.Set(recs)
	f.saveShared(ctx, recs)
	return recs, metaFresh()
}

// CacheAge exposes the entry age for the infra endpoint.
func (f *HealthFeed) CacheAge() (time.Duration, bool) {
	return f.snap.Age()
}

func (f *HealthFeed) loadShared(ctx context.Context) ([]health.Record, time.Time, bool) {
	if f.store == nil {
		return nil, time.Time{}, false
	}
	var recs []health.Record
	fetchedAt, err := f.store.Load(ctx, KindHealth, &recs)
	if err != nil {
		f.log.Debug("shared health snapshot unavailable", logger.Error(err))
		return nil, time.Time{}, false
	}
	if fetchedAt.IsZero() || f.now().Sub(fetchedAt) >= f.snap.TTL() {
		return nil, time.Time{}, false
	}
	return recs, fetchedAt, true
}

func (f *HealthFeed) saveShared(ctx context.Context, recs []health.Record) {
	if f.store == nil {
		return
	}
	if err := f.store.Save(ctx, KindHealth, recs, f.snap.FetchedAt(), f.snap.TTL()); err != nil {
		f.log.Debug("failed to mirror health snapshot", logger.Error(err))
	}
}
