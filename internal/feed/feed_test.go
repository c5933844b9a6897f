package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vaporshelf/edge/internal/sitecfg"
	"github.com/vaporshelf/edge/internal/upstream/health"
	"github.com/vaporshelf/edge/internal/upstream/presence"
	"github.com/vaporshelf/edge/internal/upstream/release"
)

// nopLogger satisfies logger.Logger for tests.
type nopLogger struct{}

func (nopLogger) Debug(string, ...zap.Field)    {}
func (nopLogger) Info(string, ...zap.Field)     {}
func (nopLogger) Warn(string, ...zap.Field)     {}
func (nopLogger) Error(string, ...zap.Field)    {}
func (nopLogger) Fatal(string, ...zap.Field)    {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Fatalf(string, ...interface{}) {}
func (nopLogger) Sync() error                   { return nil }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeReleaseFetcher struct {
	calls int
	info  release.Info
	err   error
}

func (f *fakeReleaseFetcher) Latest(ctx context.Context) (release.Info, error) {
	f.calls++
	if f.err != nil {
		return release.Info{}, f.err
	}
	return f.info, nil
}

func (f *fakeReleaseFetcher) Fallback() release.Info {
	return release.Info{URL: "https://example.com/releases"}
}

func TestReleaseFeedCachesWithinTTL(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	fetcher := &fakeReleaseFetcher{info: release.Info{URL: "https://dl/setup.exe", Version: "v1.0.0"}}
	f := NewReleaseFeed(fetcher, time.Minute, clk.Now, nil, nopLogger{})

	first, meta := f.Get(context.Background())
	if !meta.Success || meta.Cached {
		t.Fatalf("first Get meta = %+v, want fresh success", meta)
	}

	clk.Advance(30 * time.Second)
	second, meta := f.Get(context.Background())
	if !meta.Success || !meta.Cached {
		t.Fatalf("second Get meta = %+v, want cached success", meta)
	}
	if meta.CacheAge < 0 {
		t.Errorf("CacheAge = %f, want >= 0", meta.CacheAge)
	}
	if first != second {
		t.Errorf("cached payload differs: %+v vs %+v", first, second)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1 inside the TTL window", fetcher.calls)
	}
}

func TestReleaseFeedRefetchesAfterTTL(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	fetcher := &fakeReleaseFetcher{info: release.Info{Version: "v1.0.0"}}
	f := NewReleaseFeed(fetcher, time.Minute, clk.Now, nil, nopLogger{})

	f.Get(context.Background())
	clk.Advance(2 * time.Minute)

	fetcher.info = release.Info{Version: "v1.1.0"}
	info, meta := f.Get(context.Background())

	if meta.Cached {
		t.Error("post-TTL Get should not be cache-derived")
	}
	if info.Version != "v1.1.0" {
		t.Errorf("Version = %q, want refetched v1.1.0", info.Version)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want exactly 2", fetcher.calls)
	}
	if age, ok := f.CacheAge(); !ok || age != 0 {
		t.Errorf("CacheAge = %v, %v; want 0 right after refetch", age, ok)
	}
}

func TestReleaseFeedFailureLeavesCacheUntouched(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	fetcher := &fakeReleaseFetcher{info: release.Info{Version: "v1.0.0"}}
	f := NewReleaseFeed(fetcher, time.Minute, clk.Now, nil, nopLogger{})

	f.Get(context.Background())
	stampBefore, _ := f.CacheAge()

	// Entry expires, next upstream call fails.
	clk.Advance(2 * time.Minute)
	fetcher.err = errors.New("upstream down")

	info, meta := f.Get(context.Background())
	if meta.Success {
		t.Error("failed fetch should report Success=false")
	}
	if meta.Err == "" {
		t.Error("failed fetch should carry a message")
	}
	if info.URL != "https://example.com/releases" {
		t.Errorf("URL = %q, want fallback URL", info.URL)
	}
	if info.Version != "" || info.FileSizeBytes != 0 || info.DownloadCount != 0 {
		t.Errorf("fallback should be zeroed, got %+v", info)
	}

	// Cache still holds the old entry stamp.
	age, ok := f.CacheAge()
	if !ok {
		t.Fatal("prior cache entry should still exist")
	}
	if age != stampBefore+2*time.Minute {
		t.Errorf("cache age = %v, want untouched prior entry", age)
	}
}

type fakePresenceFetcher struct {
	fail map[string]bool
}

func (f *fakePresenceFetcher) Lookup(ctx context.Context, id string) (*presence.Lanyard, error) {
	if f.fail[id] {
		return nil, errors.New("lookup failed")
	}
	return &presence.Lanyard{Status: "online"}, nil
}

func presenceSite(ids ...string) *sitecfg.Registry {
	reg := sitecfg.NewRegistry()
	snap := sitecfg.Snapshot{}
	for _, id := range ids {
		snap.Developers = append(snap.Developers, presence.Identity{ID: id, Name: "dev-" + id})
	}
	reg.Update(snap)
	return reg
}

func TestPresenceFeedPartialFailure(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	fetcher := &fakePresenceFetcher{fail: map[string]bool{"2": true}}
	f := NewPresenceFeed(fetcher, presenceSite("1", "2", "3"), time.Minute, clk.Now, nil, nopLogger{})

	devs, meta := f.Get(context.Background())
	if !meta.Success {
		t.Fatalf("partial failure should still succeed, meta = %+v", meta)
	}
	if len(devs) != 3 {
		t.Fatalf("len(devs) = %d, want full roster of 3", len(devs))
	}
	for _, d := range devs {
		switch d.ID {
		case "2":
			if d.Lanyard != nil {
				t.Errorf("failed identity %s should have nil lanyard", d.ID)
			}
		default:
			if d.Lanyard == nil {
				t.Errorf("identity %s should be populated", d.ID)
			}
		}
		if d.Name == "" {
			t.Errorf("identity %s lost its name", d.ID)
		}
	}
}

func TestPresenceFeedTotalFailure(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	fetcher := &fakePresenceFetcher{fail: map[string]bool{"1": true, "2": true}}
	f := NewPresenceFeed(fetcher, presenceSite("1", "2"), time.Minute, clk.Now, nil, nopLogger{})

	devs, meta := f.Get(context.Background())
	if meta.Success {
		t.Error("total failure should report Success=false")
	}
	if len(devs) != 2 {
		t.Errorf("len(devs) = %d, want degraded full roster", len(devs))
	}
	if _, ok := f.CacheAge(); ok {
		t.Error("total failure must not populate the cache")
	}
}

type fakeProber struct {
	status string
}

func (p *fakeProber) Probe(ctx context.Context, target health.Target) health.Record {
	return health.Record{Name: target.Name, Status: p.status}
}

func TestHealthFeedProbesAllTargets(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	reg := sitecfg.NewRegistry()
	reg.Update(sitecfg.Snapshot{Targets: []health.Target{
		{Name: "github", URL: "https://api.github.com"},
		{Name: "lanyard", URL: "https://api.lanyard.rest"},
	}})

	f := NewHealthFeed(&fakeProber{status: health.StatusOnline}, reg, time.Minute, clk.Now, nil, nopLogger{})

	recs, meta := f.Get(context.Background())
	if !meta.Success {
		t.Fatalf("meta = %+v, want success", meta)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}

	// Second read inside the TTL is cache-derived.
	_, meta = f.Get(context.Background())
	if !meta.Cached {
		t.Error("second Get should be cache-derived")
	}
}

// memStore is an in-memory SnapshotStore.
type memStore struct {
	payloads map[string][]byte
	stamps   map[string]time.Time
	saves    int
}

func newMemStore() *memStore {
	return &memStore{payloads: map[string][]byte{}, stamps: map[string]time.Time{}}
}

func (s *memStore) Load(ctx context.Context, kind string, v any) (time.Time, error) {
	data, ok := s.payloads[kind]
	if !ok {
		return time.Time{}, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return time.Time{}, err
	}
	return s.stamps[kind], nil
}

func (s *memStore) Save(ctx context.Context, kind string, v any, fetchedAt time.Time, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.payloads[kind] = data
	s.stamps[kind] = fetchedAt
	s.saves++
	return nil
}

func TestReleaseFeedAdoptsSharedSnapshot(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	store := newMemStore()

	// Another instance fetched 10s ago.
	shared := release.Info{URL: "https://dl/shared.exe", Version: "v9.9.9"}
	if err := store.Save(context.Background(), KindRelease, shared, clk.Now().Add(-10*time.Second), time.Minute); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	fetcher := &fakeReleaseFetcher{info: release.Info{Version: "local"}}
	f := NewReleaseFeed(fetcher, time.Minute, clk.Now, store, nopLogger{})

	info, meta := f.Get(context.Background())
	if fetcher.calls != 0 {
		t.Errorf("fetcher calls = %d, want 0 (shared snapshot adopted)", fetcher.calls)
	}
	if !meta.Cached {
		t.Error("adopted snapshot should report cached")
	}
	if info.Version != "v9.9.9" {
		t.Errorf("Version = %q, want shared v9.9.9", info.Version)
	}
}

func TestReleaseFeedIgnoresStaleSharedSnapshot(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	store := newMemStore()

	shared := release.Info{Version: "stale"}
	if err := store.Save(context.Background(), KindRelease, shared, clk.Now().Add(-2*time.Minute), time.Minute); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	fetcher := &fakeReleaseFetcher{info: release.Info{Version: "fresh"}}
	f := NewReleaseFeed(fetcher, time.Minute, clk.Now, store, nopLogger{})

	info, _ := f.Get(context.Background())
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1 (stale shared snapshot ignored)", fetcher.calls)
	}
	if info.Version != "fresh" {
		t.Errorf("Version = %q, want fresh", info.Version)
	}
	if store.saves != 2 {
		t.Errorf("store saves = %d, want refreshed mirror", store.saves)
	}
}
