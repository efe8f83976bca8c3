package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/model"
)

// CreateSource registers a connected provider for a user.
func (s *Store) CreateSource(src *model.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO sources (id, user_id, type, name, feed_url, token, last_synced_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		src.ID, src.UserID, string(src.Type), src.Name,
		nullStr(src.FeedURL), nullStr(src.Token),
		nullTime(src.LastSyncedAt), src.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}
	return nil
}

// GetSourceByType returns the first source of a type for a user, or
// ErrNotFound.
func (s *Store) GetSourceByType(userID string, typ model.SourceType) (*model.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, user_id, type, name, feed_url, token, last_synced_at, created_at
		 FROM sources WHERE user_id = ? AND type = ? LIMIT 1`,
		userID, string(typ))
	return scanSource(row)
}

// ListSources returns all of a user's sources.
func (s *Store) ListSources(userID string) ([]model.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, user_id, type, name, feed_url, token, last_synced_at, created_at
		 FROM sources WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []model.Source
	for rows.Next() {
		src, err := scanSourceRows(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}
	return sources, rows.Err()
}

// TouchSourceSynced records the completion time of a sync.
func (s *Store) TouchSourceSynced(sourceID string, syncedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE sources SET last_synced_at = ? WHERE id = ?`,
		syncedAt.UnixMilli(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update source sync time: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanSource(row *sql.Row) (*model.Source, error) {
	src, err := scanSourceRows(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	return src, err
}

func scanSourceRows(row rowScanner) (*model.Source, error) {
	var src model.Source
	var typ string
	var feedURL, token sql.NullString
	var lastSynced sql.NullInt64
	var createdAt int64

	err := row.Scan(&src.ID, &src.UserID, &typ, &src.Name, &feedURL, &token, &lastSynced, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	src.Type = model.SourceType(typ)
	src.FeedURL = feedURL.String
	src.Token = token.String
	src.LastSyncedAt = timePtr(lastSynced)
	src.CreatedAt = time.UnixMilli(createdAt)
	return &src, nil
}
