package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/diet"
	"github.com/mstrand/infodiet/internal/model"
)

const itemColumns = `id, user_id, title, url, author, content_type, status,
	word_count, estimated_minutes, total_pages, cover_url, open_library_id,
	isbn, published_date, readwise_document_id, current_page,
	time_spent_minutes, last_read_at, reading_streak, created_at, updated_at,
	completed_at, completion_method`

// CreateItem inserts a new item.
func (s *Store) CreateItem(item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	query := `
	INSERT INTO items (` + itemColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		item.ID, item.UserID, item.Title,
		nullStr(item.URL), nullStr(item.Author),
		string(item.ContentType), string(item.Status),
		item.WordCount, item.EstimatedMinutes, item.TotalPages,
		nullStr(item.CoverURL), nullStr(item.OpenLibraryID), nullStr(item.ISBN),
		nullTime(item.PublishedDate), nullStr(item.ReadwiseDocumentID),
		item.CurrentPage, item.TimeSpentMinutes,
		nullTime(item.LastReadAt), item.ReadingStreak,
		item.CreatedAt.UnixMilli(), item.UpdatedAt.UnixMilli(),
		nullTime(item.CompletedAt), nullStr(string(item.CompletionMethod)),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetItem fetches one item scoped to its owner.
func (s *Store) GetItem(userID, id string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ? AND user_id = ?`, id, userID)
	return scanItem(row)
}

// GetItemByReadwiseID fetches the item linked to a Readwise document.
func (s *Store) GetItemByReadwiseID(userID, docID string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT `+itemColumns+` FROM items WHERE user_id = ? AND readwise_document_id = ?`,
		userID, docID)
	return scanItem(row)
}

// HasItemByURL reports whether the user already tracks an item with this URL.
func (s *Store) HasItemByURL(userID, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(1) FROM items WHERE user_id = ? AND url = ?`,
		userID, url).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check item by url: %w", err)
	}
	return n > 0, nil
}

// HasItemByTitleAuthor reports whether the user already tracks a book with
// this title and author. Used to keep CSV imports idempotent.
func (s *Store) HasItemByTitleAuthor(userID, title, author string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(1) FROM items WHERE user_id = ? AND title = ? AND author = ?`,
		userID, title, author).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check item by title: %w", err)
	}
	return n > 0, nil
}

// ListItems returns a user's items, optionally filtered by status, newest
// first.
func (s *Store) ListItems(userID string, status model.ItemStatus) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItemRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// DeleteItem removes an item. Historical sessions are deliberately left in
// place (orphaned).
func (s *Store) DeleteItem(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetContentType applies a user recategorization. The override is sticky:
// sync paths never call this.
func (s *Store) SetContentType(userID, id string, ct model.ContentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE items SET content_type = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(ct), time.Now().UnixMilli(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to recategorize item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SaveProgress persists a ledger result. The time accumulator is updated as
// an atomic SQL increment so concurrent session logs from multiple devices
// cannot lose updates; every other progress field is taken from the
// computed item state.
func (s *Store) SaveProgress(item *model.Item, addMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	UPDATE items SET
		time_spent_minutes = MAX(0, time_spent_minutes + ?),
		current_page = ?,
		status = ?,
		reading_streak = ?,
		last_read_at = ?,
		completed_at = ?,
		completion_method = ?,
		updated_at = ?
	WHERE id = ? AND user_id = ?
	`
	res, err := s.db.Exec(query,
		addMinutes,
		item.CurrentPage,
		string(item.Status),
		item.ReadingStreak,
		nullTime(item.LastReadAt),
		nullTime(item.CompletedAt),
		nullStr(string(item.CompletionMethod)),
		time.Now().UnixMilli(),
		item.ID, item.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DietRecords returns the slices of a user's items the diet aggregator
// needs.
func (s *Store) DietRecords(userID string) ([]diet.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT content_type, status, time_spent_minutes, completed_at, last_read_at
		 FROM items WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load diet records: %w", err)
	}
	defer rows.Close()

	var out []diet.Record
	for rows.Next() {
		var rec diet.Record
		var contentType, status string
		var completed, lastRead sql.NullInt64
		if err := rows.Scan(&contentType, &status, &rec.TimeSpentMinutes, &completed, &lastRead); err != nil {
			return nil, fmt.Errorf("failed to scan diet record: %w", err)
		}
		rec.ContentType = model.ContentType(contentType)
		rec.Status = model.ItemStatus(status)
		rec.CompletedAt = timePtr(completed)
		rec.LastReadAt = timePtr(lastRead)
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row *sql.Row) (*model.Item, error) {
	item, err := scanItemRows(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	return item, err
}

func scanItemRows(row rowScanner) (*model.Item, error) {
	var item model.Item
	var url, author, coverURL, olID, isbn, readwiseID, completionMethod sql.NullString
	var publishedDate, lastReadAt, completedAt sql.NullInt64
	var contentType, status string
	var createdAt, updatedAt int64

	err := row.Scan(
		&item.ID, &item.UserID, &item.Title, &url, &author,
		&contentType, &status,
		&item.WordCount, &item.EstimatedMinutes, &item.TotalPages,
		&coverURL, &olID, &isbn, &publishedDate, &readwiseID,
		&item.CurrentPage, &item.TimeSpentMinutes,
		&lastReadAt, &item.ReadingStreak,
		&createdAt, &updatedAt, &completedAt, &completionMethod,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	item.URL = url.String
	item.Author = author.String
	item.ContentType = model.ContentType(contentType)
	item.Status = model.ItemStatus(status)
	item.CoverURL = coverURL.String
	item.OpenLibraryID = olID.String
	item.ISBN = isbn.String
	item.ReadwiseDocumentID = readwiseID.String
	item.CompletionMethod = model.CompletionMethod(completionMethod.String)
	item.PublishedDate = timePtr(publishedDate)
	item.LastReadAt = timePtr(lastReadAt)
	item.CompletedAt = timePtr(completedAt)
	item.CreatedAt = time.UnixMilli(createdAt)
	item.UpdatedAt = time.UnixMilli(updatedAt)

	return &item, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.UnixMilli(n.Int64)
	return &t
}
