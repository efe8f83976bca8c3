// Package feeds pulls RSS and Atom feeds and turns their entries into
// reading items.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/classify"
	"github.com/mstrand/infodiet/internal/estimate"
	"github.com/mstrand/infodiet/internal/model"
)

const userAgent = "infodiet/1.0"

// Entry is one normalized feed entry ready to become an item.
type Entry struct {
	Title       string
	URL         string
	Author      string
	Content     string
	WordCount   int
	Published   *time.Time
	ContentType model.ContentType
}

// FeedInfo describes a validated feed.
type FeedInfo struct {
	Title       string
	Description string
	EntryCount  int
}

// Fetcher retrieves and parses feeds over HTTP.
type Fetcher struct {
	client *http.Client
	logger zerolog.Logger
}

// NewFetcher creates a Fetcher with the given request timeout.
func NewFetcher(timeout time.Duration, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "feeds").Logger(),
	}
}

// Validate fetches a feed URL and confirms it parses, returning its metadata.
func (f *Fetcher) Validate(ctx context.Context, feedURL string) (*FeedInfo, error) {
	feed, err := f.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return &FeedInfo{
		Title:       feed.Title,
		Description: feed.Description,
		EntryCount:  len(feed.Items),
	}, nil
}

// Fetch retrieves a feed and normalizes its entries, newest first as the
// feed orders them. Entries without a link are skipped.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Entry, error) {
	feed, err := f.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it.Link == "" {
			continue
		}
		entries = append(entries, convertEntry(it, feed.Title))
	}

	f.logger.Debug().Str("feed", feed.Title).Int("entries", len(entries)).Msg("fetched feed")
	return entries, nil
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "feedUrl", Reason: fmt.Sprintf("invalid URL: %v", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &apperr.APIError{Service: "feed", Message: "fetching feed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.APIError{
			Service:    "feed",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status fetching %s", feedURL),
		}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "feedUrl", Reason: fmt.Sprintf("not a parseable feed: %v", err)}
	}
	return feed, nil
}

func convertEntry(it *gofeed.Item, feedTitle string) Entry {
	content := it.Content
	if content == "" {
		content = it.Description
	}

	author := ""
	if it.Author != nil {
		author = it.Author.Name
	}

	var published *time.Time
	if it.PublishedParsed != nil {
		published = it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		published = it.UpdatedParsed
	}

	return Entry{
		Title:       it.Title,
		URL:         it.Link,
		Author:      author,
		Content:     content,
		WordCount:   estimate.WordCountFromHTML(content),
		Published:   published,
		ContentType: classify.FeedItem(it.Title, content, feedTitle),
	}
}

// ToItem converts a normalized entry into a new reading item for a user.
func (e Entry) ToItem(userID string) *model.Item {
	minutes := 0
	if e.WordCount > 0 {
		minutes = estimate.FromWords(e.WordCount)
	} else {
		minutes = estimate.Default(e.ContentType)
	}
	return &model.Item{
		ID:               uuid.NewString(),
		UserID:           userID,
		Title:            e.Title,
		URL:              e.URL,
		Author:           e.Author,
		ContentType:      e.ContentType,
		Status:           model.StatusQueued,
		WordCount:        e.WordCount,
		EstimatedMinutes: minutes,
		PublishedDate:    e.Published,
	}
}
