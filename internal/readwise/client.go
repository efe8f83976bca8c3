// Package readwise talks to the Readwise Reader v3 API and syncs reading
// progress into the tracker.
package readwise

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mstrand/infodiet/internal/apperr"
)

const defaultBaseURL = "https://readwise.io/api/v3"

// Document is a Readwise Reader document as returned by the list endpoint.
type Document struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	SourceURL     string `json:"source_url"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	WordCount     int    `json:"word_count"`
	ReadingTime   string `json:"reading_time"`
	PublishedDate string `json:"published_date"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// HTTPClient defines the interface for HTTP operations.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client handles communication with the Readwise API.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	limiter    *rate.Limiter
}

// ClientOption allows configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a Readwise API client. Outbound calls are limited to
// stay under the Reader API rate budget.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListOptions filter the document list.
type ListOptions struct {
	UpdatedAfter *time.Time
	Location     string
	MaxResults   int
}

type listResponse struct {
	NextPageCursor string     `json:"nextPageCursor"`
	Results        []Document `json:"results"`
}

// ListDocuments fetches all documents matching opts, following page
// cursors until exhausted.
func (c *Client) ListDocuments(ctx context.Context, token string, opts ListOptions) ([]Document, error) {
	var all []Document
	cursor := ""

	for {
		if opts.MaxResults > 0 && len(all) >= opts.MaxResults {
			break
		}

		page, next, err := c.listPage(ctx, token, cursor, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if next == "" {
			break
		}
		cursor = next
	}
	return all, nil
}

func (c *Client) listPage(ctx context.Context, token, cursor string, opts ListOptions) ([]Document, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	u, err := url.Parse(c.baseURL + "/list/")
	if err != nil {
		return nil, "", fmt.Errorf("building list URL: %w", err)
	}
	q := u.Query()
	if cursor != "" {
		q.Set("pageCursor", cursor)
	}
	if opts.UpdatedAfter != nil {
		q.Set("updatedAfter", opts.UpdatedAfter.Format(time.RFC3339))
	}
	if opts.Location != "" {
		q.Set("location", opts.Location)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("building list request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		// Honor Retry-After before surfacing a retryable error.
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(time.Duration(seconds) * time.Second):
			}
		}
		return nil, "", apperr.NewAPIError("readwise", resp.StatusCode, "rate limited")
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, "", apperr.ErrAuthFailure
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", apperr.NewAPIError("readwise", resp.StatusCode, string(body))
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, "", fmt.Errorf("decoding list response: %w", err)
	}
	return lr.Results, lr.NextPageCursor, nil
}

// Timestamp parses a Readwise document timestamp, trying the formats the
// API is known to emit.
func Timestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
