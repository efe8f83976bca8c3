package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/importer"
	"github.com/mstrand/infodiet/internal/model"
)

// SyncReadwise handles POST /api/v1/sync/readwise. Runs are guarded by a
// per-user cooldown; a second request inside the window gets 429. Partial
// failures come back as 200 with errors[] populated.
func (h *Handlers) SyncReadwise(c *fiber.Ctx) error {
	var req SyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_body", "Bad Request",
				"Invalid request body: "+err.Error())
		}
	}

	uid := userID(c)
	src, err := h.deps.Store.GetSourceByType(uid, model.SourceReadwise)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	token := req.Token
	var lastSyncedAt *time.Time
	if src != nil {
		if token == "" {
			token = src.Token
		}
		lastSyncedAt = src.LastSyncedAt
	}
	if token == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_token", "Bad Request",
			"No Readwise token provided or connected")
	}

	if !h.deps.SyncGuard.TryAcquire(uid) {
		return problemResponse(c, fiber.StatusTooManyRequests,
			"sync_cooldown", "Too Many Requests",
			"A sync for this user ran too recently")
	}

	result := h.deps.Syncer.Sync(c.Context(), uid, token, lastSyncedAt)

	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "partial"
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordSyncRun("readwise", outcome)
	}

	if src != nil {
		if err := h.deps.Store.TouchSourceSynced(src.ID, result.LastSyncedAt); err != nil {
			h.logger.Warn().Err(err).Msg("recording sync time failed")
		}
	}

	return c.JSON(result)
}

// ConnectSource handles POST /api/v1/sources.
func (h *Handlers) ConnectSource(c *fiber.Ctx) error {
	var req ConnectSourceRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	typ := model.SourceType(strings.ToUpper(req.Type))
	switch typ {
	case model.SourceReadwise:
		if req.Token == "" {
			return problemResponse(c, fiber.StatusBadRequest,
				"missing_token", "Bad Request",
				"A Readwise source requires a token")
		}
	case model.SourceRSS:
		if req.FeedURL == "" {
			return problemResponse(c, fiber.StatusBadRequest,
				"missing_feed_url", "Bad Request",
				"An RSS source requires a feedUrl")
		}
		if _, err := h.deps.Feeds.Validate(c.Context(), req.FeedURL); err != nil {
			return err
		}
	default:
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_source_type", "Bad Request",
			"Unknown source type: "+req.Type)
	}

	src := &model.Source{
		ID:      uuid.NewString(),
		UserID:  userID(c),
		Type:    typ,
		Name:    req.Name,
		FeedURL: req.FeedURL,
		Token:   req.Token,
	}
	if err := h.deps.Store.CreateSource(src); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sourceResponse(src))
}

// ListSources handles GET /api/v1/sources.
func (h *Handlers) ListSources(c *fiber.Ctx) error {
	sources, err := h.deps.Store.ListSources(userID(c))
	if err != nil {
		return err
	}
	resp := make([]SourceResponse, 0, len(sources))
	for i := range sources {
		resp = append(resp, sourceResponse(&sources[i]))
	}
	return c.JSON(fiber.Map{"sources": resp, "total": len(resp)})
}

// ValidateFeed handles POST /api/v1/feeds/validate.
func (h *Handlers) ValidateFeed(c *fiber.Ctx) error {
	var req ValidateFeedRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}
	if req.FeedURL == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_feed_url", "Bad Request",
			"feedUrl is required")
	}

	info, err := h.deps.Feeds.Validate(c.Context(), req.FeedURL)
	if err != nil {
		return err
	}
	return c.JSON(info)
}

// SyncFeeds handles POST /api/v1/feeds/sync. An explicit feedUrl syncs one
// feed; otherwise every connected RSS source is pulled. Entries already
// tracked (by URL) are skipped.
func (h *Handlers) SyncFeeds(c *fiber.Ctx) error {
	var req FeedSyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_body", "Bad Request",
				"Invalid request body: "+err.Error())
		}
	}

	uid := userID(c)
	var feedURLs []string
	var syncedSources []*model.Source
	if req.FeedURL != "" {
		feedURLs = []string{req.FeedURL}
	} else {
		sources, err := h.deps.Store.ListSources(uid)
		if err != nil {
			return err
		}
		for i := range sources {
			if sources[i].Type == model.SourceRSS {
				feedURLs = append(feedURLs, sources[i].FeedURL)
				syncedSources = append(syncedSources, &sources[i])
			}
		}
	}
	if len(feedURLs) == 0 {
		return problemResponse(c, fiber.StatusBadRequest,
			"no_feeds", "Bad Request",
			"No feed URL provided and no RSS sources connected")
	}

	resp := FeedSyncResponse{}
	for _, feedURL := range feedURLs {
		entries, err := h.deps.Feeds.Fetch(c.Context(), feedURL)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("fetching %s: %v", feedURL, err))
			continue
		}
		for _, entry := range entries {
			exists, err := h.deps.Store.HasItemByURL(uid, entry.URL)
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("checking %s: %v", entry.URL, err))
				continue
			}
			if exists {
				resp.Skipped++
				continue
			}
			if err := h.deps.Store.CreateItem(entry.ToItem(uid)); err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("saving %s: %v", entry.URL, err))
				continue
			}
			resp.ItemsCreated++
			if h.deps.Metrics != nil {
				h.deps.Metrics.RecordSyncItem("rss", "created")
			}
		}
	}

	now := time.Now()
	for _, src := range syncedSources {
		if err := h.deps.Store.TouchSourceSynced(src.ID, now); err != nil {
			h.logger.Warn().Err(err).Str("source_id", src.ID).Msg("recording sync time failed")
		}
	}

	if h.deps.Metrics != nil {
		outcome := "ok"
		if len(resp.Errors) > 0 {
			outcome = "partial"
		}
		h.deps.Metrics.RecordSyncRun("rss", outcome)
	}

	return c.JSON(resp)
}

// SearchBooks handles GET /api/v1/books/search.
func (h *Handlers) SearchBooks(c *fiber.Ctx) error {
	results, err := h.deps.Books.Search(c.Context(), c.Query("q"), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"results": results, "total": len(results)})
}

// BookDetails handles GET /api/v1/books/:workId.
func (h *Handlers) BookDetails(c *fiber.Ctx) error {
	meta, err := h.deps.Books.Work(c.Context(), c.Params("workId"))
	if err != nil {
		return err
	}
	return c.JSON(meta)
}

// ImportGoodreads handles POST /api/v1/import/goodreads. The request body
// is the raw CSV export. Row failures are partial results, not a failed
// import; rows matching an existing title and author are skipped.
func (h *Handlers) ImportGoodreads(c *fiber.Ctx) error {
	return h.importCSV(c, importer.ParseGoodreads)
}

// ImportStoryGraph handles POST /api/v1/import/storygraph.
func (h *Handlers) ImportStoryGraph(c *fiber.Ctx) error {
	return h.importCSV(c, importer.ParseStoryGraph)
}

func (h *Handlers) importCSV(c *fiber.Ctx, parse func(r io.Reader) ([]importer.Book, *importer.Result, error)) error {
	body := c.Body()
	if len(body) == 0 {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_file", "Bad Request",
			"Request body must contain the CSV export")
	}

	books, result, err := parse(bytes.NewReader(body))
	if err != nil {
		return err
	}

	uid := userID(c)
	for _, b := range books {
		exists, err := h.deps.Store.HasItemByTitleAuthor(uid, b.Title, b.Author)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("checking %q: %v", b.Title, err))
			continue
		}
		if exists {
			result.Skipped++
			continue
		}
		if err := h.deps.Store.CreateItem(b.ToItem(uid)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("saving %q: %v", b.Title, err))
			continue
		}
		result.Imported++
	}

	return c.JSON(result)
}
