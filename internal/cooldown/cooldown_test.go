package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryGuard_BlocksWithinWindow(t *testing.T) {
	g := NewMemoryGuard(5 * time.Second)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	g.now = func() time.Time { return current }

	assert.True(t, g.TryAcquire("user-1"))
	assert.False(t, g.TryAcquire("user-1"))

	current = base.Add(3 * time.Second)
	assert.False(t, g.TryAcquire("user-1"))

	current = base.Add(5 * time.Second)
	assert.True(t, g.TryAcquire("user-1"))
}

func TestMemoryGuard_KeysAreIndependent(t *testing.T) {
	g := NewMemoryGuard(5 * time.Second)

	assert.True(t, g.TryAcquire("user-1"))
	assert.True(t, g.TryAcquire("user-2"))
	assert.False(t, g.TryAcquire("user-1"))
}

func TestMemoryGuard_ReleaseClearsEarly(t *testing.T) {
	g := NewMemoryGuard(time.Minute)

	assert.True(t, g.TryAcquire("user-1"))
	g.Release("user-1")
	assert.True(t, g.TryAcquire("user-1"))
}
