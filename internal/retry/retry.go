// Package retry wraps provider calls in capped exponential backoff.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/mstrand/infodiet/internal/apperr"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultConfig returns sensible retry defaults for provider syncs.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Jitter:      true,
	}
}

// Delay computes the backoff before attempt n (0-based). Exponential in n,
// capped at MaxDelay, with up to 10% jitter either way when enabled.
func (cfg Config) Delay(attempt int) time.Duration {
	delay := cfg.BaseDelay << attempt
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter {
		delay = time.Duration(float64(delay) * (0.9 + rand.Float64()*0.2))
	}
	return delay
}

// Do runs fn up to MaxAttempts times. Non-retryable errors return
// immediately; cancellation of ctx cuts the backoff short.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !apperr.IsRetryable(err) || attempt >= cfg.MaxAttempts-1 {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Delay(attempt)):
		}
	}
}
