package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", ErrTimeout, true},
		{"rate limit", ErrRateLimit, true},
		{"unavailable", ErrUnavailable, true},
		{"wrapped unavailable", fmt.Errorf("calling out: %w", ErrUnavailable), true},
		{"api 429", NewAPIError("readwise", 429, "slow down"), true},
		{"api 503", NewAPIError("feed", 503, "down"), true},
		{"api 400", NewAPIError("readwise", 400, "bad"), false},
		{"auth failure", ErrAuthFailure, false},
		{"not found", ErrNotFound, false},
		{"plain", errors.New("nope"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("minutesSpent", "must not be negative")
	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid minutesSpent: must not be negative", err.Error())

	wrapped := fmt.Errorf("applying session: %w", err)
	assert.True(t, IsValidation(wrapped))

	assert.False(t, IsValidation(ErrNotFound))
}

func TestAPIErrorUnwrap(t *testing.T) {
	inner := &APIError{Service: "openlibrary", StatusCode: 404, Message: "not found", Err: ErrNotFound}
	assert.ErrorIs(t, inner, ErrNotFound)
	assert.Contains(t, inner.Error(), "openlibrary")
	assert.Contains(t, inner.Error(), "404")
}
