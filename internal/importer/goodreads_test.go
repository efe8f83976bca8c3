package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/model"
)

const goodreadsCSV = `Title,Author,ISBN,ISBN13,Number of Pages,Original Publication Year,Exclusive Shelf,Date Added,Date Read
The Left Hand of Darkness,Ursula K. Le Guin,"=""0441478123""","=""9780441478125""",304,1969,to-read,2026/01/15,
Piranesi,Susanna Clarke,,,272,2020,currently-reading,2026/02/01,
,,,,,,to-read,,
"Gödel, Escher, Bach",Douglas Hofstadter,,,777,1979,read,2025/11/02,2026/01/20
`

func TestParseGoodreads(t *testing.T) {
	books, result, err := ParseGoodreads(strings.NewReader(goodreadsCSV))
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, 3, result.Total)
	assert.Empty(t, result.Errors)

	first := books[0]
	assert.Equal(t, "The Left Hand of Darkness", first.Title)
	assert.Equal(t, "Ursula K. Le Guin", first.Author)
	assert.Equal(t, "0441478123", first.ISBN)
	assert.Equal(t, 304, first.TotalPages)
	assert.Equal(t, 1969, first.PublishedYear)
	assert.Equal(t, model.StatusQueued, first.Status)

	assert.Equal(t, model.StatusReading, books[1].Status)

	// Quoted comma in the title survives.
	assert.Equal(t, "Gödel, Escher, Bach", books[2].Title)
}

func TestParseGoodreads_EmptyFile(t *testing.T) {
	_, _, err := ParseGoodreads(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// Header only, no data rows.
	_, _, err = ParseGoodreads(strings.NewReader("Title,Author\n"))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

const storygraphCSV = `Title,Authors,ISBN,Page Count,Publication Year,Date Started,Date Read,Date Added
Middlemarch,George Eliot,,880,1871,2026/02/10,,2026/02/01
Small Things Like These,Claire Keegan,,128,2021,,,2026/02/05
`

func TestParseStoryGraph(t *testing.T) {
	books, result, err := ParseStoryGraph(strings.NewReader(storygraphCSV))
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, 2, result.Total)

	assert.Equal(t, "Middlemarch", books[0].Title)
	assert.Equal(t, 880, books[0].TotalPages)
	assert.Equal(t, model.StatusReading, books[0].Status)
	assert.Equal(t, model.StatusQueued, books[1].Status)
}

func TestBook_ToItem(t *testing.T) {
	b := Book{
		Title:         "Middlemarch",
		Author:        "George Eliot",
		TotalPages:    880,
		PublishedYear: 1871,
		Status:        model.StatusQueued,
	}

	item := b.ToItem("user-1")
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "user-1", item.UserID)
	assert.Equal(t, model.Journey, item.ContentType)
	assert.Equal(t, 880, item.TotalPages)
	assert.Equal(t, 1760, item.EstimatedMinutes)
	require.NotNil(t, item.PublishedDate)
	assert.Equal(t, 1871, item.PublishedDate.Year())

	// No page count falls back to the long-form default.
	item = Book{Title: "x", Author: "y"}.ToItem("user-1")
	assert.Equal(t, 60, item.EstimatedMinutes)
}
