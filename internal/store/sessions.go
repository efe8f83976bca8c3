package store

import (
	"fmt"
	"time"

	"github.com/mstrand/infodiet/internal/model"
)

// InsertSession appends an immutable reading-session record. Sessions are
// never updated or deleted in normal operation.
func (s *Store) InsertSession(sess *model.ReadingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.OccurredAt.IsZero() {
		sess.OccurredAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO reading_sessions (id, item_id, minutes_spent, pages_read, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.ItemID, sess.MinutesSpent, sess.PagesRead, sess.OccurredAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// ListSessions returns an item's most recent sessions, newest first.
func (s *Store) ListSessions(itemID string, limit int) ([]model.ReadingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, item_id, minutes_spent, pages_read, occurred_at
		 FROM reading_sessions WHERE item_id = ?
		 ORDER BY occurred_at DESC LIMIT ?`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.ReadingSession
	for rows.Next() {
		var sess model.ReadingSession
		var occurredAt int64
		if err := rows.Scan(&sess.ID, &sess.ItemID, &sess.MinutesSpent, &sess.PagesRead, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.OccurredAt = time.UnixMilli(occurredAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
