// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// Storage
	DatabasePath string `envconfig:"DATABASE_PATH" default:"infodiet.db"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET"`

	// Classification
	WeightsPath string `envconfig:"CLASSIFY_WEIGHTS_PATH"`

	// Readwise
	ReadwiseBaseURL string `envconfig:"READWISE_BASE_URL" default:"https://readwise.io/api/v3"`

	// Sync behaviour
	SyncCooldown  time.Duration `envconfig:"SYNC_COOLDOWN" default:"5s"`
	SyncAttempts  int           `envconfig:"SYNC_RETRY_ATTEMPTS" default:"3"`
	SyncBaseDelay time.Duration `envconfig:"SYNC_RETRY_BASE_DELAY" default:"1s"`
	SyncMaxDelay  time.Duration `envconfig:"SYNC_RETRY_MAX_DELAY" default:"10s"`

	// Open Library
	OpenLibraryBaseURL string `envconfig:"OPENLIBRARY_BASE_URL" default:"https://openlibrary.org"`

	// AI summaries. Disabled when no API key is configured.
	SummaryAPIKey   string        `envconfig:"OPENROUTER_API_KEY"`
	SummaryBaseURL  string        `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	SummaryModel    string        `envconfig:"SUMMARY_MODEL" default:"anthropic/claude-3.5-haiku"`
	SummaryCacheTTL time.Duration `envconfig:"SUMMARY_CACHE_TTL" default:"168h"`

	// Diet windows, days
	DietWindows []int `envconfig:"DIET_WINDOWS" default:"7,14,21"`
}

// SummaryEnabled returns true if an AI summary API key is configured.
func (c *Config) SummaryEnabled() bool {
	return c.SummaryAPIKey != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.Environment != "development" {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}
	return &cfg, nil
}
