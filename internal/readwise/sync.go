package readwise

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/classify"
	"github.com/mstrand/infodiet/internal/model"
	"github.com/mstrand/infodiet/internal/retry"
)

// ItemStore is the persistence surface the syncer needs.
type ItemStore interface {
	GetItemByReadwiseID(userID, docID string) (*model.Item, error)
	CreateItem(item *model.Item) error
	SaveProgress(item *model.Item, addMinutes int) error
}

// Result reports the outcome of one sync run. A failed document never
// aborts the batch; its error joins Errors and processing continues.
type Result struct {
	ItemsCreated   int       `json:"itemsCreated"`
	ItemsUpdated   int       `json:"itemsUpdated"`
	ItemsCompleted int       `json:"itemsCompleted"`
	Errors         []string  `json:"errors"`
	LastSyncedAt   time.Time `json:"lastSyncedAt"`
}

// Syncer pulls Readwise documents and reconciles them with stored items.
type Syncer struct {
	client     *Client
	store      ItemStore
	classifier *classify.Classifier
	retryCfg   retry.Config
	logger     zerolog.Logger
}

// NewSyncer creates a progress syncer.
func NewSyncer(client *Client, store ItemStore, classifier *classify.Classifier, retryCfg retry.Config, logger zerolog.Logger) *Syncer {
	return &Syncer{
		client:     client,
		store:      store,
		classifier: classifier,
		retryCfg:   retryCfg,
		logger:     logger.With().Str("component", "readwise_sync").Logger(),
	}
}

// Sync fetches documents updated since lastSyncedAt and applies them. The
// fetch retries with capped exponential backoff; per-document failures are
// collected as partial results.
func (s *Syncer) Sync(ctx context.Context, userID, token string, lastSyncedAt *time.Time) Result {
	result := Result{LastSyncedAt: time.Now()}

	var docs []Document
	err := retry.Do(ctx, s.retryCfg, func(ctx context.Context) error {
		var ferr error
		docs, ferr = s.client.ListDocuments(ctx, token, ListOptions{UpdatedAfter: lastSyncedAt})
		return ferr
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetching readwise documents: %v", err))
		return result
	}

	s.logger.Info().Int("documents", len(docs)).Str("user_id", userID).Msg("fetched readwise documents")

	for _, doc := range docs {
		if err := s.applyDocument(userID, doc, &result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("syncing document %s: %v", doc.ID, err))
		}
	}

	s.logger.Info().
		Int("created", result.ItemsCreated).
		Int("updated", result.ItemsUpdated).
		Int("completed", result.ItemsCompleted).
		Int("errors", len(result.Errors)).
		Msg("readwise sync complete")

	return result
}

func (s *Syncer) applyDocument(userID string, doc Document, result *Result) error {
	item, err := s.store.GetItemByReadwiseID(userID, doc.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return s.createFromDocument(userID, doc, result)
	}
	if err != nil {
		return err
	}

	newStatus := model.StatusFromLocation(doc.Location)
	changed := false
	addMinutes := 0

	if newStatus == model.StatusDone && item.Status != model.StatusDone {
		completedAt := docTime(doc)
		item.Status = model.StatusDone
		item.CompletedAt = &completedAt
		item.CompletionMethod = model.CompletedViaReadwise
		result.ItemsCompleted++
		changed = true
	}

	// Credit estimated reading time against still-open items with recent
	// provider activity. Classification is never re-derived here: a stored
	// contentType, manual override or not, is sticky.
	if item.Status != model.StatusDone {
		if est := estimateProgressMinutes(item, time.Now()); est > 0 {
			readAt := docTime(doc)
			item.LastReadAt = &readAt
			addMinutes = est
			changed = true
		}
	}

	if !changed {
		return nil
	}

	if err := s.store.SaveProgress(item, addMinutes); err != nil {
		return err
	}
	result.ItemsUpdated++
	return nil
}

func (s *Syncer) createFromDocument(userID string, doc Document, result *Result) error {
	incoming := model.IncomingDocument{
		ExternalID:   doc.ID,
		Title:        doc.Title,
		SourceURL:    doc.SourceURL,
		Author:       doc.Author,
		WordCount:    doc.WordCount,
		DurationText: doc.ReadingTime,
		Category:     doc.Category,
		LocationTag:  doc.Location,
	}

	title := doc.Title
	if title == "" {
		title = "Untitled"
	}

	estimated := 0
	if minutes, ok := classify.ParseDuration(doc.ReadingTime); ok {
		estimated = minutes
	}

	item := &model.Item{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Title:              title,
		URL:                doc.SourceURL,
		Author:             doc.Author,
		ContentType:        classify.Document(incoming),
		Status:             model.StatusFromLocation(doc.Location),
		WordCount:          doc.WordCount,
		EstimatedMinutes:   estimated,
		ReadwiseDocumentID: doc.ID,
	}

	if item.Status == model.StatusDone {
		completedAt := docTime(doc)
		item.CompletedAt = &completedAt
		item.CompletionMethod = model.CompletedViaReadwise
	}
	if t, ok := Timestamp(doc.PublishedDate); ok {
		item.PublishedDate = &t
	}

	if err := s.store.CreateItem(item); err != nil {
		return err
	}
	result.ItemsCreated++
	return nil
}

// estimateProgressMinutes guesses at reading time for items the provider
// touched recently: 10 minutes per hour since our last update, capped at
// the item's estimate, and nothing at all beyond a day of staleness.
func estimateProgressMinutes(item *model.Item, now time.Time) int {
	if item.EstimatedMinutes <= 0 {
		return 0
	}
	hoursSince := now.Sub(item.UpdatedAt).Hours()
	if hoursSince > 24 {
		return 0
	}
	est := int(math.Round(hoursSince * 10))
	if est > item.EstimatedMinutes {
		est = item.EstimatedMinutes
	}
	return est
}

func docTime(doc Document) time.Time {
	if t, ok := Timestamp(doc.UpdatedAt); ok {
		return t
	}
	if t, ok := Timestamp(doc.CreatedAt); ok {
		return t
	}
	return time.Now()
}
