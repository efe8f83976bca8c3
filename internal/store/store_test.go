package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestItem(id, userID string) *model.Item {
	return &model.Item{
		ID:          id,
		UserID:      userID,
		Title:       "Test Item " + id,
		URL:         "https://example.com/" + id,
		Author:      "A. Writer",
		ContentType: model.Session,
		Status:      model.StatusQueued,
	}
}

func TestItemRoundTrip(t *testing.T) {
	s := newTestStore(t)

	published := time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)
	item := &model.Item{
		ID:                 "item-1",
		UserID:             "user-1",
		Title:              "The Go Programming Language",
		URL:                "https://example.com/gopl",
		Author:             "Donovan, Kernighan",
		ContentType:        model.Journey,
		Status:             model.StatusQueued,
		WordCount:          150000,
		EstimatedMinutes:   760,
		TotalPages:         380,
		CoverURL:           "https://covers.example.com/gopl.jpg",
		OpenLibraryID:      "OL1W",
		ISBN:               "9780134190440",
		PublishedDate:      &published,
		ReadwiseDocumentID: "rw-1",
	}
	require.NoError(t, s.CreateItem(item))

	got, err := s.GetItem("user-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, item.Title, got.Title)
	assert.Equal(t, item.URL, got.URL)
	assert.Equal(t, item.Author, got.Author)
	assert.Equal(t, model.Journey, got.ContentType)
	assert.Equal(t, model.StatusQueued, got.Status)
	assert.Equal(t, 380, got.TotalPages)
	assert.Equal(t, "9780134190440", got.ISBN)
	assert.Equal(t, "rw-1", got.ReadwiseDocumentID)
	require.NotNil(t, got.PublishedDate)
	assert.Equal(t, published.UnixMilli(), got.PublishedDate.UnixMilli())
	assert.False(t, got.CreatedAt.IsZero())
	assert.Nil(t, got.CompletedAt)
}

func TestGetItem_ScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateItem(newTestItem("item-1", "user-1")))

	_, err := s.GetItem("user-2", "item-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.GetItem("user-1", "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetItemByReadwiseID(t *testing.T) {
	s := newTestStore(t)
	item := newTestItem("item-1", "user-1")
	item.ReadwiseDocumentID = "doc-9"
	require.NoError(t, s.CreateItem(item))

	got, err := s.GetItemByReadwiseID("user-1", "doc-9")
	require.NoError(t, err)
	assert.Equal(t, "item-1", got.ID)

	_, err = s.GetItemByReadwiseID("user-1", "doc-unknown")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListItems_StatusFilter(t *testing.T) {
	s := newTestStore(t)

	queued := newTestItem("item-1", "user-1")
	reading := newTestItem("item-2", "user-1")
	reading.Status = model.StatusReading
	other := newTestItem("item-3", "user-2")
	require.NoError(t, s.CreateItem(queued))
	require.NoError(t, s.CreateItem(reading))
	require.NoError(t, s.CreateItem(other))

	all, err := s.ListItems("user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	readingOnly, err := s.ListItems("user-1", model.StatusReading)
	require.NoError(t, err)
	require.Len(t, readingOnly, 1)
	assert.Equal(t, "item-2", readingOnly[0].ID)
}

func TestDeleteItem(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateItem(newTestItem("item-1", "user-1")))

	assert.ErrorIs(t, s.DeleteItem("user-2", "item-1"), apperr.ErrNotFound)
	require.NoError(t, s.DeleteItem("user-1", "item-1"))
	assert.ErrorIs(t, s.DeleteItem("user-1", "item-1"), apperr.ErrNotFound)
}

func TestSetContentType(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateItem(newTestItem("item-1", "user-1")))

	require.NoError(t, s.SetContentType("user-1", "item-1", model.Journey))

	got, err := s.GetItem("user-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, model.Journey, got.ContentType)

	assert.ErrorIs(t, s.SetContentType("user-1", "missing", model.Sprint), apperr.ErrNotFound)
}

func TestSaveProgress_AtomicIncrement(t *testing.T) {
	s := newTestStore(t)
	item := newTestItem("item-1", "user-1")
	require.NoError(t, s.CreateItem(item))

	readAt := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	item.Status = model.StatusReading
	item.CurrentPage = 42
	item.ReadingStreak = 3
	item.LastReadAt = &readAt
	require.NoError(t, s.SaveProgress(item, 30))
	require.NoError(t, s.SaveProgress(item, 15))

	got, err := s.GetItem("user-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, 45, got.TimeSpentMinutes)
	assert.Equal(t, 42, got.CurrentPage)
	assert.Equal(t, 3, got.ReadingStreak)
	assert.Equal(t, model.StatusReading, got.Status)
	require.NotNil(t, got.LastReadAt)
	assert.Equal(t, readAt.UnixMilli(), got.LastReadAt.UnixMilli())
}

func TestSaveProgress_NeverGoesNegative(t *testing.T) {
	s := newTestStore(t)
	item := newTestItem("item-1", "user-1")
	require.NoError(t, s.CreateItem(item))

	require.NoError(t, s.SaveProgress(item, 10))
	require.NoError(t, s.SaveProgress(item, -100))

	got, err := s.GetItem("user-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.TimeSpentMinutes)
}

func TestSaveProgress_NotFound(t *testing.T) {
	s := newTestStore(t)
	item := newTestItem("missing", "user-1")
	assert.ErrorIs(t, s.SaveProgress(item, 5), apperr.ErrNotFound)
}

func TestHasItemLookups(t *testing.T) {
	s := newTestStore(t)
	item := newTestItem("item-1", "user-1")
	item.Title = "Middlemarch"
	item.Author = "George Eliot"
	require.NoError(t, s.CreateItem(item))

	ok, err := s.HasItemByURL("user-1", item.URL)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasItemByURL("user-2", item.URL)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.HasItemByTitleAuthor("user-1", "Middlemarch", "George Eliot")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasItemByTitleAuthor("user-1", "Middlemarch", "Someone Else")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDietRecords(t *testing.T) {
	s := newTestStore(t)

	completedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	done := newTestItem("item-1", "user-1")
	done.ContentType = model.Sprint
	done.Status = model.StatusDone
	done.CompletedAt = &completedAt
	require.NoError(t, s.CreateItem(done))

	reading := newTestItem("item-2", "user-1")
	reading.Status = model.StatusReading
	reading.TimeSpentMinutes = 25
	require.NoError(t, s.CreateItem(reading))

	require.NoError(t, s.CreateItem(newTestItem("item-3", "user-2")))

	records, err := s.DietRecords("user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byType := map[model.ContentType]int{}
	for _, r := range records {
		byType[r.ContentType]++
		if r.Status == model.StatusDone {
			require.NotNil(t, r.CompletedAt)
			assert.Equal(t, completedAt.UnixMilli(), r.CompletedAt.UnixMilli())
		} else {
			assert.Equal(t, 25, r.TimeSpentMinutes)
		}
	}
	assert.Equal(t, 1, byType[model.Sprint])
	assert.Equal(t, 1, byType[model.Session])
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateItem(newTestItem("item-1", "user-1")))

	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"sess-1", "sess-2", "sess-3"} {
		occurred := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.InsertSession(&model.ReadingSession{
			ID:           id,
			ItemID:       "item-1",
			MinutesSpent: 10 * (i + 1),
			PagesRead:    i,
			OccurredAt:   occurred,
		}))
	}

	sessions, err := s.ListSessions("item-1", 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "sess-3", sessions[0].ID)
	assert.Equal(t, "sess-2", sessions[1].ID)
	assert.Equal(t, 30, sessions[0].MinutesSpent)
}

func TestSources(t *testing.T) {
	s := newTestStore(t)

	src := &model.Source{
		ID:     "src-1",
		UserID: "user-1",
		Type:   model.SourceReadwise,
		Name:   "Readwise",
		Token:  "tok-abc",
	}
	require.NoError(t, s.CreateSource(src))

	rss := &model.Source{
		ID:      "src-2",
		UserID:  "user-1",
		Type:    model.SourceRSS,
		Name:    "Example Blog",
		FeedURL: "https://example.com/feed.xml",
	}
	require.NoError(t, s.CreateSource(rss))

	got, err := s.GetSourceByType("user-1", model.SourceReadwise)
	require.NoError(t, err)
	assert.Equal(t, "src-1", got.ID)
	assert.Equal(t, "tok-abc", got.Token)
	assert.Nil(t, got.LastSyncedAt)

	_, err = s.GetSourceByType("user-2", model.SourceReadwise)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	all, err := s.ListSources("user-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	syncedAt := time.Date(2024, 6, 2, 7, 0, 0, 0, time.UTC)
	require.NoError(t, s.TouchSourceSynced("src-1", syncedAt))

	got, err = s.GetSourceByType("user-1", model.SourceReadwise)
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncedAt)
	assert.Equal(t, syncedAt.UnixMilli(), got.LastSyncedAt.UnixMilli())

	assert.ErrorIs(t, s.TouchSourceSynced("missing", syncedAt), apperr.ErrNotFound)
}
