// Package books looks up book metadata from Open Library.
package books

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mstrand/infodiet/internal/apperr"
)

const defaultBaseURL = "https://openlibrary.org"

// SearchResult is one hit from the Open Library search endpoint.
type SearchResult struct {
	WorkID        string `json:"workId"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	FirstYear     int    `json:"firstPublishYear,omitempty"`
	CoverURL      string `json:"coverUrl,omitempty"`
	EditionCount  int    `json:"editionCount"`
	FullTextAvail bool   `json:"readingAvailable"`
}

// Metadata is the detailed record for a single work.
type Metadata struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverURL      string `json:"coverUrl,omitempty"`
	TotalPages    int    `json:"totalPages,omitempty"`
	OpenLibraryID string `json:"openLibraryId"`
	ISBN          string `json:"isbn,omitempty"`
	PublishedYear int    `json:"publishedYear,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Client talks to the Open Library JSON API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// NewClient creates an Open Library client. An empty baseURL uses the
// public API.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With().Str("component", "openlibrary").Logger(),
	}
}

type searchResponse struct {
	Docs []struct {
		Key          string   `json:"key"`
		Title        string   `json:"title"`
		AuthorName   []string `json:"author_name"`
		FirstPublish int      `json:"first_publish_year"`
		CoverID      int      `json:"cover_i"`
		EditionCount int      `json:"edition_count"`
		HasFulltext  bool     `json:"has_fulltext"`
	} `json:"docs"`
}

// Search queries works by free text, returning at most limit results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &apperr.ValidationError{Field: "q", Reason: "query must not be empty"}
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("fields", "key,title,author_name,first_publish_year,cover_i,edition_count,has_fulltext")
	q.Set("limit", fmt.Sprint(limit))

	var sr searchResponse
	if err := c.getJSON(ctx, "/search.json?"+q.Encode(), &sr); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(sr.Docs))
	for _, d := range sr.Docs {
		results = append(results, SearchResult{
			WorkID:        strings.TrimPrefix(d.Key, "/works/"),
			Title:         d.Title,
			Author:        strings.Join(d.AuthorName, ", "),
			FirstYear:     d.FirstPublish,
			CoverURL:      coverURL(d.CoverID),
			EditionCount:  d.EditionCount,
			FullTextAvail: d.HasFulltext,
		})
	}
	return results, nil
}

type workResponse struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	CoverID       int             `json:"cover_i"`
	FirstPublish  int             `json:"first_publish_year"`
	NumberOfPages int             `json:"number_of_pages"`
	ISBN          []string        `json:"isbn"`
	Description   json.RawMessage `json:"description"`
	Covers        []int           `json:"covers"`
}

type editionsResponse struct {
	Entries []struct {
		NumberOfPages int `json:"number_of_pages"`
	} `json:"entries"`
}

// Work fetches detailed metadata for a work ID, falling back to the
// editions list for a page count when the work record lacks one.
func (c *Client) Work(ctx context.Context, workID string) (*Metadata, error) {
	workID = strings.TrimPrefix(strings.TrimSpace(workID), "/works/")
	if workID == "" {
		return nil, &apperr.ValidationError{Field: "workId", Reason: "work ID must not be empty"}
	}

	var w workResponse
	if err := c.getJSON(ctx, "/works/"+url.PathEscape(workID)+".json", &w); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(w.Authors))
	for _, a := range w.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}

	coverID := w.CoverID
	if coverID == 0 && len(w.Covers) > 0 {
		coverID = w.Covers[0]
	}

	meta := &Metadata{
		Title:         w.Title,
		Author:        strings.Join(names, ", "),
		CoverURL:      coverURL(coverID),
		TotalPages:    w.NumberOfPages,
		OpenLibraryID: workID,
		PublishedYear: w.FirstPublish,
		Description:   decodeDescription(w.Description),
	}
	if len(w.ISBN) > 0 {
		meta.ISBN = w.ISBN[0]
	}

	if meta.TotalPages == 0 {
		// Page counts usually live on editions, not works. Best effort
		// only; a missing count is not an error.
		var ed editionsResponse
		if err := c.getJSON(ctx, "/works/"+url.PathEscape(workID)+"/editions.json?limit=10", &ed); err == nil {
			for _, e := range ed.Entries {
				if e.NumberOfPages > 0 {
					meta.TotalPages = e.NumberOfPages
					break
				}
			}
		} else {
			c.logger.Debug().Err(err).Str("work_id", workID).Msg("edition page count lookup failed")
		}
	}

	return meta, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building openlibrary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "infodiet/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.APIError{Service: "openlibrary", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &apperr.APIError{Service: "openlibrary", StatusCode: resp.StatusCode, Message: "not found", Err: apperr.ErrNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return &apperr.APIError{Service: "openlibrary", StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperr.APIError{Service: "openlibrary", Message: "decoding response", Err: err}
	}
	return nil
}

// decodeDescription handles the two shapes Open Library uses for work
// descriptions, a bare string or {"type": ..., "value": ...}.
func decodeDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

func coverURL(coverID int) string {
	if coverID == 0 {
		return ""
	}
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", coverID)
}
