// Package server exposes the reading tracker over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/books"
	"github.com/mstrand/infodiet/internal/classify"
	"github.com/mstrand/infodiet/internal/cooldown"
	"github.com/mstrand/infodiet/internal/feeds"
	"github.com/mstrand/infodiet/internal/health"
	"github.com/mstrand/infodiet/internal/metrics"
	"github.com/mstrand/infodiet/internal/readwise"
	"github.com/mstrand/infodiet/internal/store"
	"github.com/mstrand/infodiet/internal/summary"
)

// Config holds configuration for the HTTP server.
type Config struct {
	ListenAddr  string
	CORSOrigins string
	Auth        AuthConfig
	DietWindows []int
}

// Deps bundles the server's collaborators. Summary may be nil when no
// completion API key is configured.
type Deps struct {
	Store      *store.Store
	Classifier *classify.Classifier
	Syncer     *readwise.Syncer
	SyncGuard  cooldown.Guard
	Feeds      *feeds.Fetcher
	Books      *books.Client
	Summary    *summary.Generator
	Checker    *health.Checker
	Metrics    *metrics.Metrics
}

// Server is the HTTP API Fiber application.
type Server struct {
	app      *fiber.App
	handlers *Handlers
	logger   zerolog.Logger
	config   Config
}

// New creates and configures the API server.
func New(cfg Config, deps Deps, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger, deps.Metrics),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadBufferSize:        8192,
		WriteBufferSize:       8192,
	})

	handlers := NewHandlers(deps, cfg.DietWindows, logger)

	s := &Server{
		app:      app,
		handlers: handlers,
		logger:   logger.With().Str("component", "server").Logger(),
		config:   cfg,
	}

	s.setupMiddleware(cfg, deps.Metrics, logger)
	s.setupRoutes(handlers, deps.Metrics)

	return s
}

func (s *Server) setupMiddleware(cfg Config, m *metrics.Metrics, logger zerolog.Logger) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	s.app.Use(requestid.New())

	if cfg.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			AllowMethods: "GET, POST, DELETE, OPTIONS",
		}))
	}

	s.app.Use(NewAuthMiddleware(cfg.Auth, logger))

	// Audit and metrics middleware, skipping noisy probes.
	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Str("ip", c.IP()).
			Str("request_id", requestIDFrom(c)).
			Str("user_id", userID(c)).
			Msg("api request")

		start := time.Now()
		err := c.Next()

		if m != nil {
			status := c.Response().StatusCode()
			if err != nil {
				status, _, _ = classifyError(err)
			}
			route := c.Route().Path
			m.RecordRequest(route, strconv.Itoa(status))
			m.ObserveDuration(route, time.Since(start).Seconds())
		}
		return err
	})
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}

func (s *Server) setupRoutes(h *Handlers, m *metrics.Metrics) {
	s.app.Get("/healthz", h.Liveness)
	s.app.Get("/readyz", h.Readiness)

	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	v1 := s.app.Group("/api/v1")

	v1.Post("/items", h.CreateItem)
	v1.Get("/items", h.ListItems)
	v1.Get("/items/:id", h.GetItem)
	v1.Delete("/items/:id", h.DeleteItem)
	v1.Post("/items/:id/recategorize", h.Recategorize)

	v1.Post("/items/:id/sessions", h.LogSession)
	v1.Get("/items/:id/sessions", h.ListSessions)
	v1.Post("/items/:id/progress", h.UpdateProgress)
	v1.Post("/items/:id/done", h.MarkDone)
	v1.Post("/items/:id/pause", h.Pause)
	v1.Post("/items/:id/start", h.Start)

	v1.Get("/diet", h.Diet)
	v1.Get("/items/:id/summary", h.Summary)

	v1.Post("/sources", h.ConnectSource)
	v1.Get("/sources", h.ListSources)

	v1.Post("/sync/readwise", h.SyncReadwise)
	v1.Post("/feeds/validate", h.ValidateFeed)
	v1.Post("/feeds/sync", h.SyncFeeds)

	v1.Get("/books/search", h.SearchBooks)
	v1.Get("/books/:workId", h.BookDetails)

	v1.Post("/import/goodreads", h.ImportGoodreads)
	v1.Post("/import/storygraph", h.ImportStoryGraph)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	s.logger.Info().Str("addr", addr).Msg("API server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("API server shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(logger zerolog.Logger, m *metrics.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, errType, title := classifyError(err)

		if status >= fiber.StatusInternalServerError {
			logger.Error().
				Err(err).
				Int("status", status).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Msg("unhandled error")
		}
		if m != nil {
			m.RecordError("server", errType)
		}

		detail := err.Error()
		if status == fiber.StatusInternalServerError {
			detail = "An internal error occurred"
		}

		return c.Status(status).JSON(ProblemDetail{
			Type:     errType,
			Title:    title,
			Status:   status,
			Detail:   detail,
			Instance: c.Path(),
		})
	}
}

// classifyError maps domain errors onto HTTP statuses. Validation failures
// are client errors; provider failures surface as bad gateway.
func classifyError(err error) (status int, errType, title string) {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, "http_error", fiberErr.Message
	case apperr.IsValidation(err), errors.Is(err, apperr.ErrInvalidInput):
		return fiber.StatusBadRequest, "invalid_input", "Bad Request"
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound, "not_found", "Not Found"
	case errors.Is(err, apperr.ErrSyncCooldown):
		return fiber.StatusTooManyRequests, "sync_cooldown", "Too Many Requests"
	case errors.Is(err, apperr.ErrAuthFailure):
		return fiber.StatusBadGateway, "provider_auth", "Bad Gateway"
	case errors.Is(err, apperr.ErrRateLimit), errors.Is(err, apperr.ErrUnavailable), errors.Is(err, apperr.ErrTimeout):
		return fiber.StatusBadGateway, "provider_unavailable", "Bad Gateway"
	default:
		var apiErr *apperr.APIError
		if errors.As(err, &apiErr) {
			return fiber.StatusBadGateway, "provider_error", "Bad Gateway"
		}
		return fiber.StatusInternalServerError, "internal_error", "Internal Server Error"
	}
}
