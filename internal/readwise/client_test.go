package readwise

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstrand/infodiet/internal/apperr"
)

type stubHTTP struct {
	responses []*http.Response
	requests  []*http.Request
}

func (s *stubHTTP) Do(req *http.Request) (*http.Response, error) {
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return nil, errors.New("no stubbed response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), true},
		{"2024-03-01T10:30:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), true},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Timestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want))
			}
		})
	}
}

func TestListDocuments_FollowsCursor(t *testing.T) {
	stub := &stubHTTP{responses: []*http.Response{
		jsonResponse(200, `{"nextPageCursor":"cur-2","results":[{"id":"d1","title":"First"}]}`),
		jsonResponse(200, `{"nextPageCursor":"","results":[{"id":"d2","title":"Second"}]}`),
	}}
	c := NewClient(WithHTTPClient(stub))

	docs, err := c.ListDocuments(context.Background(), "tok-123", ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d1", docs[0].ID)
	assert.Equal(t, "d2", docs[1].ID)

	require.Len(t, stub.requests, 2)
	assert.Equal(t, "Token tok-123", stub.requests[0].Header.Get("Authorization"))
	assert.Empty(t, stub.requests[0].URL.Query().Get("pageCursor"))
	assert.Equal(t, "cur-2", stub.requests[1].URL.Query().Get("pageCursor"))
}

func TestListDocuments_QueryFilters(t *testing.T) {
	since := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubHTTP{responses: []*http.Response{
		jsonResponse(200, `{"nextPageCursor":"","results":[]}`),
	}}
	c := NewClient(WithHTTPClient(stub))

	_, err := c.ListDocuments(context.Background(), "tok", ListOptions{
		UpdatedAfter: &since,
		Location:     "archive",
	})
	require.NoError(t, err)

	q := stub.requests[0].URL.Query()
	assert.Equal(t, "2024-06-01T12:00:00Z", q.Get("updatedAfter"))
	assert.Equal(t, "archive", q.Get("location"))
}

func TestListDocuments_MaxResultsStopsPaging(t *testing.T) {
	stub := &stubHTTP{responses: []*http.Response{
		jsonResponse(200, `{"nextPageCursor":"more","results":[{"id":"d1"},{"id":"d2"}]}`),
	}}
	c := NewClient(WithHTTPClient(stub))

	docs, err := c.ListDocuments(context.Background(), "tok", ListOptions{MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Len(t, stub.requests, 1)
}

func TestListDocuments_AuthFailure(t *testing.T) {
	for _, status := range []int{401, 403} {
		stub := &stubHTTP{responses: []*http.Response{jsonResponse(status, "")}}
		c := NewClient(WithHTTPClient(stub))

		_, err := c.ListDocuments(context.Background(), "bad-tok", ListOptions{})
		assert.ErrorIs(t, err, apperr.ErrAuthFailure)
	}
}

func TestListDocuments_RateLimited(t *testing.T) {
	stub := &stubHTTP{responses: []*http.Response{jsonResponse(429, "")}}
	c := NewClient(WithHTTPClient(stub))

	_, err := c.ListDocuments(context.Background(), "tok", ListOptions{})
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))

	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.StatusCode)
}

func TestListDocuments_ServerError(t *testing.T) {
	stub := &stubHTTP{responses: []*http.Response{jsonResponse(500, "boom")}}
	c := NewClient(WithHTTPClient(stub))

	_, err := c.ListDocuments(context.Background(), "tok", ListOptions{})
	require.Error(t, err)

	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "boom")
}
