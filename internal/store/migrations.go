package store

import "fmt"

func (s *Store) migrate() error {
	return s.migrateV1()
}

func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT,
		author TEXT,
		content_type TEXT NOT NULL DEFAULT 'SESSION',
		status TEXT NOT NULL DEFAULT 'QUEUED',
		word_count INTEGER NOT NULL DEFAULT 0,
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		total_pages INTEGER NOT NULL DEFAULT 0,
		cover_url TEXT,
		open_library_id TEXT,
		isbn TEXT,
		published_date INTEGER,
		readwise_document_id TEXT,
		current_page INTEGER NOT NULL DEFAULT 0,
		time_spent_minutes INTEGER NOT NULL DEFAULT 0,
		last_read_at INTEGER,
		reading_streak INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		completed_at INTEGER,
		completion_method TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id);
	CREATE INDEX IF NOT EXISTS idx_items_user_status ON items(user_id, status);
	CREATE INDEX IF NOT EXISTS idx_items_readwise ON items(user_id, readwise_document_id);

	CREATE TABLE IF NOT EXISTS reading_sessions (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		minutes_spent INTEGER NOT NULL,
		pages_read INTEGER NOT NULL DEFAULT 0,
		occurred_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_item ON reading_sessions(item_id, occurred_at);

	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		feed_url TEXT,
		token TEXT,
		last_synced_at INTEGER,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sources_user_type ON sources(user_id, type);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("v1 schema: %w", err)
	}
	return nil
}
