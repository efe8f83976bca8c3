package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mstrand/infodiet/internal/classify"
	"github.com/mstrand/infodiet/internal/diet"
	"github.com/mstrand/infodiet/internal/estimate"
	"github.com/mstrand/infodiet/internal/model"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	deps        Deps
	dietWindows []int
	logger      zerolog.Logger
	startTime   time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps, dietWindows []int, logger zerolog.Logger) *Handlers {
	if len(dietWindows) == 0 {
		dietWindows = []int{7, 14, 21}
	}
	return &Handlers{
		deps:        deps,
		dietWindows: dietWindows,
		logger:      logger.With().Str("component", "handlers").Logger(),
		startTime:   time.Now(),
	}
}

// CreateItem handles POST /api/v1/items. Items are classified at creation:
// an explicit contentType wins, books are long-form by definition, and
// links go through the signal pipeline.
func (h *Handlers) CreateItem(c *fiber.Ctx) error {
	var req CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" && req.URL == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_title", "Bad Request",
			"Either title or url is required")
	}
	if req.Title == "" {
		req.Title = req.URL
	}
	if req.TotalPages < 0 {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_total_pages", "Bad Request",
			"totalPages must not be negative")
	}

	ct, path := h.resolveContentType(req)

	item := &model.Item{
		ID:            uuid.NewString(),
		UserID:        userID(c),
		Title:         req.Title,
		URL:           req.URL,
		Author:        req.Author,
		ContentType:   ct,
		Status:        model.StatusQueued,
		WordCount:     req.WordCount,
		TotalPages:    req.TotalPages,
		ISBN:          req.ISBN,
		OpenLibraryID: req.OpenLibraryID,
		CoverURL:      req.CoverURL,
	}
	item.EstimatedMinutes = estimateMinutes(item, req.DurationText)

	if err := h.deps.Store.CreateItem(item); err != nil {
		return err
	}

	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordClassification(string(ct), path)
	}

	return c.Status(fiber.StatusCreated).JSON(itemResponse(item))
}

func (h *Handlers) resolveContentType(req CreateItemRequest) (model.ContentType, string) {
	if req.ContentType != "" {
		if ct, ok := model.ParseContentType(req.ContentType); ok {
			return ct, "explicit"
		}
	}
	if req.Kind == "book" || req.TotalPages > 0 {
		return model.Journey, "book"
	}
	if minutes, ok := classify.ParseDuration(req.DurationText); ok {
		return classify.ByDuration(minutes), "duration"
	}
	if req.WordCount > 0 {
		return classify.ByWordCount(req.WordCount), "words"
	}
	if req.URL != "" {
		return h.deps.Classifier.Link(req.URL, req.Title), "url"
	}
	return classify.Title(req.Title), "title"
}

func estimateMinutes(item *model.Item, durationText string) int {
	if minutes, ok := classify.ParseDuration(durationText); ok {
		return minutes
	}
	if item.TotalPages > 0 {
		return estimate.FromPages(item.TotalPages)
	}
	if item.WordCount > 0 {
		return estimate.FromWords(item.WordCount)
	}
	return estimate.Default(item.ContentType)
}

// ListItems handles GET /api/v1/items.
func (h *Handlers) ListItems(c *fiber.Ctx) error {
	status := model.ItemStatus(strings.ToUpper(c.Query("status")))
	switch status {
	case "", model.StatusQueued, model.StatusReading, model.StatusDone:
	default:
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_status", "Bad Request",
			"Unknown status filter: "+string(status))
	}

	items, err := h.deps.Store.ListItems(userID(c), status)
	if err != nil {
		return err
	}

	resp := ItemListResponse{Items: make([]ItemResponse, 0, len(items)), Total: len(items)}
	for i := range items {
		resp.Items = append(resp.Items, itemResponse(&items[i]))
	}
	return c.JSON(resp)
}

// GetItem handles GET /api/v1/items/:id.
func (h *Handlers) GetItem(c *fiber.Ctx) error {
	item, err := h.deps.Store.GetItem(userID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(itemResponse(item))
}

// DeleteItem handles DELETE /api/v1/items/:id.
func (h *Handlers) DeleteItem(c *fiber.Ctx) error {
	if err := h.deps.Store.DeleteItem(userID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Recategorize handles POST /api/v1/items/:id/recategorize. The override is
// sticky: provider syncs never reclassify an item afterwards.
func (h *Handlers) Recategorize(c *fiber.Ctx) error {
	var req RecategorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	ct, ok := model.ParseContentType(req.ContentType)
	if !ok {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_content_type", "Bad Request",
			"Unknown content type: "+req.ContentType)
	}

	uid := userID(c)
	id := c.Params("id")
	if err := h.deps.Store.SetContentType(uid, id, ct); err != nil {
		return err
	}
	if h.deps.Summary != nil {
		h.deps.Summary.Invalidate(id)
	}

	item, err := h.deps.Store.GetItem(uid, id)
	if err != nil {
		return err
	}
	return c.JSON(itemResponse(item))
}

// Diet handles GET /api/v1/diet. Without a window parameter every
// configured window is returned.
func (h *Handlers) Diet(c *fiber.Ctx) error {
	records, err := h.deps.Store.DietRecords(userID(c))
	if err != nil {
		return err
	}

	now := time.Now()
	if window := c.QueryInt("window", 0); window > 0 {
		if !h.validWindow(window) {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_window", "Bad Request",
				"Unsupported diet window")
		}
		return c.JSON(diet.Compute(records, window, now))
	}

	return c.JSON(fiber.Map{
		"windows": diet.ComputeAll(records, h.dietWindows, now),
	})
}

func (h *Handlers) validWindow(window int) bool {
	for _, w := range h.dietWindows {
		if w == window {
			return true
		}
	}
	return false
}

// Summary handles GET /api/v1/items/:id/summary.
func (h *Handlers) Summary(c *fiber.Ctx) error {
	if h.deps.Summary == nil {
		return problemResponse(c, fiber.StatusServiceUnavailable,
			"summaries_disabled", "Service Unavailable",
			"AI summaries are not configured")
	}

	uid := userID(c)
	item, err := h.deps.Store.GetItem(uid, c.Params("id"))
	if err != nil {
		return err
	}

	records, err := h.deps.Store.DietRecords(uid)
	if err != nil {
		return err
	}
	snap := diet.Compute(records, h.dietWindows[0], time.Now())

	text, cached, err := h.deps.Summary.WhyReadThis(c.Context(), item, snap)
	if err != nil {
		return err
	}

	return c.JSON(SummaryResponse{ItemID: item.ID, Summary: text, Cached: cached})
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	if h.deps.Checker != nil && !h.deps.Checker.IsReady(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
