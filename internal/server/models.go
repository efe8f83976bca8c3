package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mstrand/infodiet/internal/estimate"
	"github.com/mstrand/infodiet/internal/model"
)

// ProblemDetail is an RFC 7807 error body.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func problemResponse(c *fiber.Ctx, status int, errType, title, detail string) error {
	return c.Status(status).JSON(ProblemDetail{
		Type:     errType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Path(),
	})
}

// CreateItemRequest is the body for POST /api/v1/items.
type CreateItemRequest struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Author        string `json:"author"`
	Kind          string `json:"kind"` // "link", "book", "newsletter"
	ContentType   string `json:"contentType"`
	TotalPages    int    `json:"totalPages"`
	WordCount     int    `json:"wordCount"`
	DurationText  string `json:"durationText"`
	ISBN          string `json:"isbn"`
	OpenLibraryID string `json:"openLibraryId"`
	CoverURL      string `json:"coverUrl"`
}

// ItemResponse is the JSON shape of an item.
type ItemResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	URL              string     `json:"url,omitempty"`
	Author           string     `json:"author,omitempty"`
	ContentType      string     `json:"contentType"`
	Status           string     `json:"status"`
	WordCount        int        `json:"wordCount,omitempty"`
	EstimatedMinutes int        `json:"estimatedMinutes,omitempty"`
	TotalPages       int        `json:"totalPages,omitempty"`
	CurrentPage      int        `json:"currentPage"`
	ProgressPercent  int        `json:"progressPercent,omitempty"`
	TimeSpentMinutes int        `json:"timeSpentMinutes"`
	ReadingStreak    int        `json:"readingStreak"`
	CoverURL         string     `json:"coverUrl,omitempty"`
	ISBN             string     `json:"isbn,omitempty"`
	LastReadAt       *time.Time `json:"lastReadAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CompletionMethod string     `json:"completionMethod,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// ItemListResponse wraps a list of items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}

// RecategorizeRequest is the body for POST /api/v1/items/:id/recategorize.
type RecategorizeRequest struct {
	ContentType string `json:"contentType"`
}

// LogSessionRequest is the body for POST /api/v1/items/:id/sessions.
type LogSessionRequest struct {
	MinutesSpent int  `json:"minutesSpent"`
	PagesRead    int  `json:"pagesRead"`
	AbsolutePage *int `json:"absolutePage"`
}

// SessionResponse is the JSON shape of a logged session.
type SessionResponse struct {
	ID           string    `json:"id"`
	ItemID       string    `json:"itemId"`
	MinutesSpent int       `json:"minutesSpent"`
	PagesRead    int       `json:"pagesRead,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// ProgressRequest is the body for POST /api/v1/items/:id/progress. Exactly
// one of the fields must be set.
type ProgressRequest struct {
	AbsolutePage *int `json:"absolutePage"`
	TotalMinutes *int `json:"totalMinutes"`
}

// DoneRequest is the body for POST /api/v1/items/:id/done.
type DoneRequest struct {
	MinutesSpent int  `json:"minutesSpent"`
	Finished     bool `json:"finished"`
}

// SummaryResponse carries an AI-generated blurb.
type SummaryResponse struct {
	ItemID  string `json:"itemId"`
	Summary string `json:"summary"`
	Cached  bool   `json:"cached"`
}

// SyncRequest is the body for POST /api/v1/sync/readwise. Token is optional
// when a Readwise source is already connected.
type SyncRequest struct {
	Token string `json:"token"`
}

// ConnectSourceRequest is the body for POST /api/v1/sources.
type ConnectSourceRequest struct {
	Type    string `json:"type"` // "READWISE" or "RSS"
	Name    string `json:"name"`
	Token   string `json:"token"`
	FeedURL string `json:"feedUrl"`
}

// SourceResponse is the JSON shape of a connected source.
type SourceResponse struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Name         string     `json:"name"`
	FeedURL      string     `json:"feedUrl,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ValidateFeedRequest is the body for POST /api/v1/feeds/validate.
type ValidateFeedRequest struct {
	FeedURL string `json:"feedUrl"`
}

// FeedSyncRequest is the body for POST /api/v1/feeds/sync. An empty FeedURL
// syncs every connected RSS source.
type FeedSyncRequest struct {
	FeedURL string `json:"feedUrl"`
}

// FeedSyncResponse reports one feed sync run.
type FeedSyncResponse struct {
	ItemsCreated int      `json:"itemsCreated"`
	Skipped      int      `json:"skipped"`
	Errors       []string `json:"errors,omitempty"`
}

func itemResponse(item *model.Item) ItemResponse {
	resp := ItemResponse{
		ID:               item.ID,
		Title:            item.Title,
		URL:              item.URL,
		Author:           item.Author,
		ContentType:      string(item.ContentType),
		Status:           string(item.Status),
		WordCount:        item.WordCount,
		EstimatedMinutes: item.EstimatedMinutes,
		TotalPages:       item.TotalPages,
		CurrentPage:      item.CurrentPage,
		TimeSpentMinutes: item.TimeSpentMinutes,
		ReadingStreak:    item.ReadingStreak,
		CoverURL:         item.CoverURL,
		ISBN:             item.ISBN,
		LastReadAt:       item.LastReadAt,
		CompletedAt:      item.CompletedAt,
		CompletionMethod: string(item.CompletionMethod),
		CreatedAt:        item.CreatedAt,
	}
	if item.TotalPages > 0 {
		resp.ProgressPercent = estimate.ProgressPercent(item.CurrentPage, item.TotalPages)
	}
	return resp
}

func sourceResponse(src *model.Source) SourceResponse {
	return SourceResponse{
		ID:           src.ID,
		Type:         string(src.Type),
		Name:         src.Name,
		FeedURL:      src.FeedURL,
		LastSyncedAt: src.LastSyncedAt,
		CreatedAt:    src.CreatedAt,
	}
}
