package cache

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1700000000, 0)} }

func TestSnapshotEmpty(t *testing.T) {
	clk := newFakeClock()
	s := New[string](time.Minute, clk.Now)

	if _, _, ok := s.Get(); ok {
		t.Fatal("empty snapshot should not report a valid entry")
	}
	if _, exists := s.Age(); exists {
		t.Fatal("empty snapshot should not report an age")
	}
}

func TestSnapshotFreshWithinTTL(t *testing.T) {
	clk := newFakeClock()
	s := New[string](time.Minute, clk.Now)

	s.Set("payload")

	clk.Advance(30 * time.Second)
	got, age, ok := s.Get()
	if !ok {
		t.Fatal("entry inside the TTL window should be valid")
	}
	if got != "payload" {
		t.Errorf("payload = %q, want %q", got, "payload")
	}
	if age != 30*time.Second {
		t.Errorf("age = %v, want %v", age, 30*time.Second)
	}

	// Same window, identical payload.
	got2, _, ok := s.Get()
	if !ok || got2 != got {
		t.Errorf("second read = %q, %v; want identical payload", got2, ok)
	}
}

func TestSnapshotStaleAfterTTL(t *testing.T) {
	clk := newFakeClock()
	s := New[int](time.Minute, clk.Now)

	s.Set(42)
	clk.Advance(time.Minute)

	if _, _, ok := s.Get(); ok {
		t.Fatal("entry at exactly the TTL boundary should be stale")
	}

	// Stale entries are overwritten, not evicted; age keeps growing.
	age, exists := s.Age()
	if !exists {
		t.Fatal("stale entry should still exist until overwritten")
	}
	if age != time.Minute {
		t.Errorf("age = %v, want %v", age, time.Minute)
	}
}

func TestSnapshotOverwriteUpdatesFetchedAt(t *testing.T) {
	clk := newFakeClock()
	s := New[int](time.Minute, clk.Now)

	s.Set(1)
	first := s.FetchedAt()

	clk.Advance(2 * time.Minute)
	s.Set(2)

	if !s.FetchedAt().After(first) {
		t.Error("Set should restamp fetchedAt")
	}
	got, age, ok := s.Get()
	if !ok || got != 2 {
		t.Errorf("Get = %d, %v; want 2, true", got, ok)
	}
	if age != 0 {
		t.Errorf("age = %v, want 0 right after Set", age)
	}
}

func TestSnapshotSetAtAdoptsForeignStamp(t *testing.T) {
	clk := newFakeClock()
	s := New[string](time.Minute, clk.Now)

	fetched := clk.Now().Add(-20 * time.Second)
	s.SetAt("shared", fetched)

	_, age, ok := s.Get()
	if !ok {
		t.Fatal("adopted entry inside TTL should be valid")
	}
	if age != 20*time.Second {
		t.Errorf("age = %v, want %v", age, 20*time.Second)
	}
}

func TestSnapshotClear(t *testing.T) {
	clk := newFakeClock()
	s := New[string](time.Minute, clk.Now)

	s.Set("payload")
	s.Clear()

	if _, _, ok := s.Get(); ok {
		t.Fatal("cleared snapshot should be empty")
	}
}
