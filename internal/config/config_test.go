package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears a variable for the duration of the test. t.Setenv
// registers the restore; envconfig only applies defaults when unset.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "ENVIRONMENT", "JWT_SECRET", "DIET_WINDOWS", "OPENROUTER_API_KEY")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "infodiet.db", cfg.DatabasePath)
	assert.Equal(t, "https://readwise.io/api/v3", cfg.ReadwiseBaseURL)
	assert.Equal(t, 5*time.Second, cfg.SyncCooldown)
	assert.Equal(t, 3, cfg.SyncAttempts)
	assert.Equal(t, []int{7, 14, 21}, cfg.DietWindows)
	assert.False(t, cfg.SummaryEnabled())
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	unsetenv(t, "JWT_SECRET")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "topsecret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "topsecret", cfg.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	unsetenv(t, "ENVIRONMENT", "JWT_SECRET")
	t.Setenv("DIET_WINDOWS", "30,90")
	t.Setenv("SYNC_COOLDOWN", "1m")
	t.Setenv("OPENROUTER_API_KEY", "key-123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{30, 90}, cfg.DietWindows)
	assert.Equal(t, time.Minute, cfg.SyncCooldown)
	assert.True(t, cfg.SummaryEnabled())
}
