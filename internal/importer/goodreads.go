// Package importer turns library-export CSV files into reading items.
// Goodreads and StoryGraph exports are supported; both flatten to the
// same normalized book shape.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/estimate"
	"github.com/mstrand/infodiet/internal/model"
)

// Book is one normalized row from an export file.
type Book struct {
	Title         string
	Author        string
	ISBN          string
	TotalPages    int
	PublishedYear int
	Status        model.ItemStatus
}

// Result reports what an import run did. Row errors never abort the run;
// they are collected per row with 1-based line numbers.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
}

var headerClean = regexp.MustCompile(`[^a-z0-9_]`)

// ParseGoodreads reads a Goodreads library export. Header names are
// normalized (lowercased, non-alphanumerics to underscores) so minor
// export-format drift does not break column lookup.
func ParseGoodreads(r io.Reader) ([]Book, *Result, error) {
	return parse(r, normalizeGoodreadsRow)
}

// ParseStoryGraph reads a StoryGraph library export.
func ParseStoryGraph(r io.Reader) ([]Book, *Result, error) {
	return parse(r, normalizeStoryGraphRow)
}

func parse(r io.Reader, normalize func(map[string]string) Book) ([]Book, *Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, &apperr.ValidationError{Field: "file", Reason: "missing CSV header row"}
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = headerClean.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
	}

	result := &Result{}
	var books []Book
	line := 1
	for {
		record, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		if row["title"] == "" {
			continue
		}
		result.Total++
		books = append(books, normalize(row))
	}

	if result.Total == 0 && len(result.Errors) == 0 {
		return nil, nil, &apperr.ValidationError{Field: "file", Reason: "no books found in CSV"}
	}
	return books, result, nil
}

func normalizeGoodreadsRow(row map[string]string) Book {
	isbn := row["isbn"]
	if isbn == "" {
		isbn = row["isbn13"]
	}
	// Goodreads wraps ISBNs in an Excel-protection formula.
	isbn = strings.Trim(isbn, `="`)

	status := model.StatusQueued
	if row["exclusive_shelf"] == "currently-reading" {
		status = model.StatusReading
	}

	year := atoi(row["original_publication_year"])
	if year == 0 {
		year = atoi(row["published_year"])
	}
	if year == 0 {
		year = atoi(row["year_published"])
	}

	return Book{
		Title:         orDefault(row["title"], "Untitled"),
		Author:        orDefault(row["author"], "Unknown"),
		ISBN:          isbn,
		TotalPages:    atoi(row["number_of_pages"]),
		PublishedYear: year,
		Status:        status,
	}
}

func normalizeStoryGraphRow(row map[string]string) Book {
	status := model.StatusQueued
	if row["date_started"] != "" && row["date_read"] == "" {
		status = model.StatusReading
	}

	pages := atoi(row["page_count"])
	if pages == 0 {
		pages = atoi(row["edition_page_count"])
	}

	// StoryGraph names the column "Authors".
	author := row["author"]
	if author == "" {
		author = row["authors"]
	}

	return Book{
		Title:         orDefault(row["title"], "Untitled"),
		Author:        orDefault(author, "Unknown"),
		ISBN:          strings.Trim(row["isbn"], `="`),
		TotalPages:    pages,
		PublishedYear: atoi(row["publication_year"]),
		Status:        status,
	}
}

// ToItem builds a new reading item from an imported book. Books classify
// as long-form by definition.
func (b Book) ToItem(userID string) *model.Item {
	item := &model.Item{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       b.Title,
		Author:      b.Author,
		ContentType: model.Journey,
		Status:      b.Status,
		TotalPages:  b.TotalPages,
		ISBN:        b.ISBN,
	}
	if b.TotalPages > 0 {
		item.EstimatedMinutes = estimate.FromPages(b.TotalPages)
	} else {
		item.EstimatedMinutes = estimate.Default(model.Journey)
	}
	if b.PublishedYear > 0 {
		t := time.Date(b.PublishedYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		item.PublishedDate = &t
	}
	return item
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
