package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mstrand/infodiet/internal/books"
	"github.com/mstrand/infodiet/internal/classify"
	"github.com/mstrand/infodiet/internal/config"
	"github.com/mstrand/infodiet/internal/cooldown"
	"github.com/mstrand/infodiet/internal/feeds"
	"github.com/mstrand/infodiet/internal/health"
	"github.com/mstrand/infodiet/internal/metrics"
	"github.com/mstrand/infodiet/internal/readwise"
	"github.com/mstrand/infodiet/internal/retry"
	"github.com/mstrand/infodiet/internal/server"
	"github.com/mstrand/infodiet/internal/store"
	"github.com/mstrand/infodiet/internal/summary"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Str("database", cfg.DatabasePath).
		Bool("summaries_enabled", cfg.SummaryEnabled()).
		Msg("starting infodiet")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	db, err := store.New(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	weights := classify.DefaultWeights()
	if cfg.WeightsPath != "" {
		weights, err = classify.LoadWeights(cfg.WeightsPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.WeightsPath).Msg("failed to load classification weights")
		}
		logger.Info().Str("path", cfg.WeightsPath).Msg("classification weights loaded")
	}
	classifier := classify.New(weights)

	checker := health.NewChecker(logger)
	checker.Register("database", func(ctx context.Context) health.Status {
		if err := db.DB().PingContext(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	m := metrics.New()

	rwClient := readwise.NewClient(readwise.WithBaseURL(cfg.ReadwiseBaseURL))
	syncer := readwise.NewSyncer(rwClient, db, classifier, retry.Config{
		MaxAttempts: cfg.SyncAttempts,
		BaseDelay:   cfg.SyncBaseDelay,
		MaxDelay:    cfg.SyncMaxDelay,
		Jitter:      true,
	}, logger)

	var gen *summary.Generator
	if cfg.SummaryEnabled() {
		gen = summary.NewGenerator(cfg.SummaryAPIKey, cfg.SummaryBaseURL, cfg.SummaryModel, cfg.SummaryCacheTTL, logger)
	} else {
		logger.Info().Msg("AI summaries not configured, skipping")
	}

	srv := server.New(server.Config{
		ListenAddr:  cfg.ListenAddr,
		CORSOrigins: cfg.CORSOrigins,
		Auth:        server.AuthConfig{JWTSecret: cfg.JWTSecret},
		DietWindows: cfg.DietWindows,
	}, server.Deps{
		Store:      db,
		Classifier: classifier,
		Syncer:     syncer,
		SyncGuard:  cooldown.NewMemoryGuard(cfg.SyncCooldown),
		Feeds:      feeds.NewFetcher(15*time.Second, logger),
		Books:      books.NewClient(cfg.OpenLibraryBaseURL, logger),
		Summary:    gen,
		Checker:    checker,
		Metrics:    m,
	}, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
		}
	}()

	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("API server shutdown error")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("all goroutines stopped")
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("infodiet stopped")
}
