package health

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("database", func(ctx context.Context) Status { return StatusOK })
	c.Register("provider", func(ctx context.Context) Status { return StatusDegraded })

	results := c.RunAll(context.Background())
	assert.Equal(t, StatusOK, results["database"])
	assert.Equal(t, StatusDegraded, results["provider"])

	// Degraded is still ready; only down blocks readiness.
	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_DownBlocksReadiness(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("database", func(ctx context.Context) Status { return StatusDown })

	assert.False(t, c.IsReady(context.Background()))
}

func TestChecker_NoChecksIsReady(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	assert.True(t, c.IsReady(context.Background()))
	assert.Empty(t, c.RunAll(context.Background()))
}
