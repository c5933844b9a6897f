package sitecfg

import (
	"sync"
	"time"
)

// Registry holds the live site data snapshot.
// Readers get a consistent snapshot; Update swaps it wholesale on reload.
type Registry struct {
	mu         sync.RWMutex
	snap       Snapshot
	lastReload time.Time
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Update replaces the current snapshot.
func (r *Registry) Update(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
	r.lastReload = time.Now()
}

// Snapshot returns the current site data.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// LastReload returns the timestamp of the last successful update.
func (r *Registry) LastReload() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastReload
}

// Loaded reports whether a snapshot has ever been applied.
func (r *Registry) Loaded() bool {
	return !r.LastReload().IsZero()
}
