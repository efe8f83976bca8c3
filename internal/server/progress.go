package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mstrand/infodiet/internal/ledger"
	"github.com/mstrand/infodiet/internal/model"
)

// LogSession handles POST /api/v1/items/:id/sessions. The event is applied
// through the ledger and then persisted: the minute accumulator as an atomic
// increment, the session itself as an immutable log row.
func (h *Handlers) LogSession(c *fiber.Ctx) error {
	var req LogSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	item, err := h.deps.Store.GetItem(userID(c), c.Params("id"))
	if err != nil {
		return err
	}

	ev := ledger.SessionEvent{
		MinutesSpent: req.MinutesSpent,
		PagesRead:    req.PagesRead,
		AbsolutePage: req.AbsolutePage,
		At:           time.Now(),
	}

	updated, err := ledger.Apply(*item, ev)
	if err != nil {
		return err
	}

	if err := h.deps.Store.SaveProgress(&updated, ev.MinutesSpent); err != nil {
		return err
	}

	resp := fiber.Map{"item": itemResponse(&updated)}

	// A pages-only event updates progress but is not a session; session
	// rows always carry positive minutes.
	if ev.MinutesSpent > 0 {
		sess := &model.ReadingSession{
			ID:           uuid.NewString(),
			ItemID:       updated.ID,
			MinutesSpent: ev.MinutesSpent,
			PagesRead:    ev.PagesRead,
			OccurredAt:   ev.At,
		}
		if err := h.deps.Store.InsertSession(sess); err != nil {
			return err
		}
		if h.deps.Metrics != nil {
			h.deps.Metrics.RecordSession(ev.MinutesSpent)
		}
		resp["session"] = sessionResponse(sess)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListSessions handles GET /api/v1/items/:id/sessions.
func (h *Handlers) ListSessions(c *fiber.Ctx) error {
	// Ownership check before touching the session log.
	item, err := h.deps.Store.GetItem(userID(c), c.Params("id"))
	if err != nil {
		return err
	}

	sessions, err := h.deps.Store.ListSessions(item.ID, c.QueryInt("limit", 20))
	if err != nil {
		return err
	}

	resp := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, sessionResponse(&sessions[i]))
	}
	return c.JSON(fiber.Map{"sessions": resp, "total": len(resp)})
}

// UpdateProgress handles POST /api/v1/items/:id/progress. Sets an absolute
// page position or corrects the total time accumulator; exactly one of the
// two per request.
func (h *Handlers) UpdateProgress(c *fiber.Ctx) error {
	var req ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}
	if (req.AbsolutePage == nil) == (req.TotalMinutes == nil) {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_progress", "Bad Request",
			"Exactly one of absolutePage or totalMinutes is required")
	}

	item, err := h.deps.Store.GetItem(userID(c), c.Params("id"))
	if err != nil {
		return err
	}

	if req.TotalMinutes != nil {
		updated, delta, err := ledger.CorrectTotalTime(*item, *req.TotalMinutes)
		if err != nil {
			return err
		}
		if err := h.deps.Store.SaveProgress(&updated, delta); err != nil {
			return err
		}
		return c.JSON(itemResponse(&updated))
	}

	ev := ledger.SessionEvent{AbsolutePage: req.AbsolutePage, At: time.Now()}
	updated, err := ledger.Apply(*item, ev)
	if err != nil {
		return err
	}
	if err := h.deps.Store.SaveProgress(&updated, 0); err != nil {
		return err
	}
	return c.JSON(itemResponse(&updated))
}

// MarkDone handles POST /api/v1/items/:id/done.
func (h *Handlers) MarkDone(c *fiber.Ctx) error {
	var req DoneRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	item, err := h.deps.Store.GetItem(userID(c), c.Params("id"))
	if err != nil {
		return err
	}

	updated, err := ledger.MarkDone(*item, req.MinutesSpent, req.Finished, time.Now())
	if err != nil {
		return err
	}

	addMinutes := updated.TimeSpentMinutes - item.TimeSpentMinutes
	if err := h.deps.Store.SaveProgress(&updated, addMinutes); err != nil {
		return err
	}
	return c.JSON(itemResponse(&updated))
}

// Pause handles POST /api/v1/items/:id/pause.
func (h *Handlers) Pause(c *fiber.Ctx) error {
	item, err := h.deps.Store.GetItem(userID(c), c.Params("id"))
	if err != nil {
		return err
	}

	updated, err := ledger.Pause(*item)
	if err != nil {
		return err
	}
	if err := h.deps.Store.SaveProgress(&updated, 0); err != nil {
		return err
	}
	return c.JSON(itemResponse(&updated))
}

// Start handles POST /api/v1/items/:id/start.
func (h *Handlers) Start(c *fiber.Ctx) error {
	item, err := h.deps.Store.GetItem(userID(c), c.Params("id"))
	if err != nil {
		return err
	}

	updated := ledger.Start(*item)
	if err := h.deps.Store.SaveProgress(&updated, 0); err != nil {
		return err
	}
	return c.JSON(itemResponse(&updated))
}

func sessionResponse(sess *model.ReadingSession) SessionResponse {
	return SessionResponse{
		ID:           sess.ID,
		ItemID:       sess.ItemID,
		MinutesSpent: sess.MinutesSpent,
		PagesRead:    sess.PagesRead,
		OccurredAt:   sess.OccurredAt,
	}
}
