// Package model defines the core entities of the reading tracker.
package model

import (
	"strings"
	"time"
)

// ItemStatus is the lifecycle state of an item.
type ItemStatus string

const (
	StatusQueued  ItemStatus = "QUEUED"
	StatusReading ItemStatus = "READING"
	StatusDone    ItemStatus = "DONE"
)

// CompletionMethod records how an item reached DONE.
type CompletionMethod string

const (
	CompletedManually    CompletionMethod = "MANUAL"
	CompletedViaReadwise CompletionMethod = "READWISE"
)

// Item is a unit of content to be read, owned by a single user.
type Item struct {
	ID     string
	UserID string

	Title  string
	URL    string
	Author string

	ContentType ContentType
	Status      ItemStatus

	// Classification metadata.
	WordCount        int // 0 = unknown
	EstimatedMinutes int // 0 = unknown

	// Book metadata.
	TotalPages    int // 0 = not page-tracked; fixed at creation
	CoverURL      string
	OpenLibraryID string
	ISBN          string
	PublishedDate *time.Time

	// Provider linkage.
	ReadwiseDocumentID string

	// Progress state. TimeSpentMinutes only ever grows through the ledger;
	// corrections go through the explicit set-absolute-total path.
	CurrentPage      int
	TimeSpentMinutes int
	LastReadAt       *time.Time
	ReadingStreak    int

	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
	CompletionMethod CompletionMethod
}

// ReadingSession is an immutable log entry of one reading event.
type ReadingSession struct {
	ID           string
	ItemID       string
	MinutesSpent int
	PagesRead    int // 0 = not recorded
	OccurredAt   time.Time
}

// SourceType identifies an external content provider.
type SourceType string

const (
	SourceReadwise SourceType = "READWISE"
	SourceRSS      SourceType = "RSS"
)

// Source is a connected external provider owned by a user.
type Source struct {
	ID           string
	UserID       string
	Type         SourceType
	Name         string
	FeedURL      string
	Token        string
	LastSyncedAt *time.Time
	CreatedAt    time.Time
}

// IncomingDocument is the normalized shape every ingestion path (Readwise,
// RSS, CSV import, manual entry) hands to classification. Optional fields
// use zero values for "absent".
type IncomingDocument struct {
	ExternalID    string
	Title         string
	SourceURL     string
	Author        string
	WordCount     int
	DurationText  string
	Category      string
	PublishedDate *time.Time
	LocationTag   string
}

// StatusFromLocation maps a provider location tag to a lifecycle status.
// An archived document is done; everything else queues.
func StatusFromLocation(location string) ItemStatus {
	if strings.EqualFold(strings.TrimSpace(location), "archive") {
		return StatusDone
	}
	return StatusQueued
}
