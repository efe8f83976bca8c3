package books

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstrand/infodiet/internal/apperr"
)

func newTestClient(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, zerolog.Nop())
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/search.json": `{"docs":[
			{"key":"/works/OL123W","title":"Dune","author_name":["Frank Herbert"],"first_publish_year":1965,"cover_i":42,"edition_count":12,"has_fulltext":true},
			{"key":"/works/OL456W","title":"Dune Messiah","author_name":["Frank Herbert"]}
		]}`,
	})

	results, err := c.Search(context.Background(), "dune", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "OL123W", results[0].WorkID)
	assert.Equal(t, "Dune", results[0].Title)
	assert.Equal(t, "Frank Herbert", results[0].Author)
	assert.Equal(t, 1965, results[0].FirstYear)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-M.jpg", results[0].CoverURL)
	assert.True(t, results[0].FullTextAvail)

	assert.Equal(t, "OL456W", results[1].WorkID)
	assert.Empty(t, results[1].CoverURL)
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := NewClient("http://localhost:0", zerolog.Nop())

	_, err := c.Search(context.Background(), "   ", 5)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestWork(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/works/OL123W.json": `{
			"key":"/works/OL123W",
			"title":"Dune",
			"authors":[{"name":"Frank Herbert"}],
			"covers":[42],
			"first_publish_year":1965,
			"number_of_pages":412,
			"isbn":["9780441013593"],
			"description":{"type":"/type/text","value":"Desert planet epic."}
		}`,
	})

	meta, err := c.Work(context.Background(), "/works/OL123W")
	require.NoError(t, err)
	assert.Equal(t, "Dune", meta.Title)
	assert.Equal(t, "Frank Herbert", meta.Author)
	assert.Equal(t, "OL123W", meta.OpenLibraryID)
	assert.Equal(t, 412, meta.TotalPages)
	assert.Equal(t, "9780441013593", meta.ISBN)
	assert.Equal(t, 1965, meta.PublishedYear)
	assert.Equal(t, "Desert planet epic.", meta.Description)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-M.jpg", meta.CoverURL)
}

func TestWork_EditionsPageCountFallback(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/works/OL9W.json":          `{"title":"Slim Record","description":"A plain string."}`,
		"/works/OL9W/editions.json": `{"entries":[{"number_of_pages":0},{"number_of_pages":288}]}`,
	})

	meta, err := c.Work(context.Background(), "OL9W")
	require.NoError(t, err)
	assert.Equal(t, 288, meta.TotalPages)
	assert.Equal(t, "A plain string.", meta.Description)
}

func TestWork_EditionsLookupFailureIsNotFatal(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/works/OL9W.json": `{"title":"Slim Record"}`,
	})

	meta, err := c.Work(context.Background(), "OL9W")
	require.NoError(t, err)
	assert.Zero(t, meta.TotalPages)
}

func TestWork_NotFound(t *testing.T) {
	c := newTestClient(t, map[string]string{})

	_, err := c.Work(context.Background(), "OLMISSINGW")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestWork_EmptyID(t *testing.T) {
	c := NewClient("http://localhost:0", zerolog.Nop())

	_, err := c.Work(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestDecodeDescription(t *testing.T) {
	assert.Equal(t, "plain", decodeDescription([]byte(`"plain"`)))
	assert.Equal(t, "wrapped", decodeDescription([]byte(`{"type":"/type/text","value":"wrapped"}`)))
	assert.Empty(t, decodeDescription(nil))
	assert.Empty(t, decodeDescription([]byte(`123`)))
}
