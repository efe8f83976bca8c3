// Package cooldown guards externally-triggered syncs with a short per-user
// debounce. The guard is advisory: a missed debounce causes redundant work,
// never corruption. It sits behind a small interface so a shared expiring
// KV store can replace the in-process map when running multiple replicas.
package cooldown

import (
	"sync"
	"time"
)

// Guard rejects a second sync trigger for the same key within the window.
type Guard interface {
	// TryAcquire marks key as syncing. Returns false while a previous
	// acquisition is still inside the cooldown window.
	TryAcquire(key string) bool
	// Release clears the marker early (sync finished before the window).
	Release(key string)
}

// MemoryGuard is the in-process Guard implementation.
type MemoryGuard struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	started map[string]time.Time
}

// NewMemoryGuard creates a guard with the given cooldown window.
func NewMemoryGuard(window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		window:  window,
		now:     time.Now,
		started: make(map[string]time.Time),
	}
}

func (g *MemoryGuard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if started, ok := g.started[key]; ok && now.Sub(started) < g.window {
		return false
	}
	g.started[key] = now
	return true
}

func (g *MemoryGuard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.started, key)
}
