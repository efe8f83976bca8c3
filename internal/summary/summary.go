// Package summary generates "why read this now" blurbs for queued items
// using an OpenAI-compatible completion API, with a week-long cache so a
// given item is summarized at most once per diet shift.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/cache"
	"github.com/mstrand/infodiet/internal/diet"
	"github.com/mstrand/infodiet/internal/model"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "google/gemini-flash-1.5"
	cacheCapacity  = 512
)

// Generator produces per-item summaries conditioned on the user's diet.
type Generator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cache      *cache.Cache[string, string]
	logger     zerolog.Logger
}

// NewGenerator creates a summary generator. cacheTTL bounds how long a
// generated blurb is reused.
func NewGenerator(apiKey, baseURL, modelName string, cacheTTL time.Duration, logger zerolog.Logger) *Generator {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if modelName == "" {
		modelName = defaultModel
	}
	return &Generator{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      modelName,
		cache:      cache.New[string, string](cacheCapacity, cacheTTL),
		logger:     logger.With().Str("component", "summary").Logger(),
	}
}

// WhyReadThis returns a short explanation of why the item fits the user's
// current diet. Cached results are returned as-is; cached is true when no
// completion call was made.
func (g *Generator) WhyReadThis(ctx context.Context, item *model.Item, snap diet.Snapshot) (text string, cached bool, err error) {
	key := item.ID
	if s, ok := g.cache.Get(key); ok {
		return s, true, nil
	}

	out, err := g.complete(ctx, buildPrompt(item, snap))
	if err != nil {
		return "", false, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", false, &apperr.APIError{Service: "summary", Message: "empty completion"}
	}

	g.cache.Put(key, out)
	g.logger.Debug().Str("item_id", item.ID).Msg("generated summary")
	return out, false, nil
}

// Invalidate drops the cached summary for an item, forcing regeneration on
// the next request. Used when an item is recategorized.
func (g *Generator) Invalidate(itemID string) {
	g.cache.Delete(itemID)
}

func buildPrompt(item *model.Item, snap diet.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are a reading recommendation assistant for an app that helps users balance their reading consumption.\n\n")
	b.WriteString("Given this reading item and the user's current reading patterns, write a brief 1-2 sentence explanation of why they should read this now. Be conversational and specific to their situation.\n\n")

	fmt.Fprintf(&b, "Item:\n- Title: %q\n- Type: %s\n", item.Title, item.ContentType.Description())
	if item.Author != "" {
		fmt.Fprintf(&b, "- Author: %s\n", item.Author)
	}
	if item.EstimatedMinutes > 0 {
		fmt.Fprintf(&b, "- Reading time: ~%d minutes\n", item.EstimatedMinutes)
	}

	fmt.Fprintf(&b, "\nUser's reading diet:\nYou've been reading %d%% quick reads, %d%% focused reads, and %d%% deep reads.\n",
		snap.SprintPercent, snap.SessionPercent, snap.JourneyPercent)
	fmt.Fprintf(&b, "\nReason for suggestion: %s\n", snap.Rationale)

	b.WriteString("\nWrite only the explanation, no preamble. Keep it to 1-2 sentences max. Be encouraging and friendly.")
	return b.String()
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", &apperr.APIError{Service: "summary", Message: "no API key configured", Err: apperr.ErrAuthFailure}
	}

	body, err := json.Marshal(completionRequest{
		Model:       g.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: 0.8,
		MaxTokens:   150,
	})
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("X-Title", "infodiet")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &apperr.APIError{Service: "summary", Message: "completion request failed", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &apperr.APIError{Service: "summary", StatusCode: resp.StatusCode, Message: "authentication failed", Err: apperr.ErrAuthFailure}
	case resp.StatusCode != http.StatusOK:
		return "", &apperr.APIError{Service: "summary", StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", &apperr.APIError{Service: "summary", Message: "decoding completion", Err: err}
	}
	if len(cr.Choices) == 0 {
		return "", &apperr.APIError{Service: "summary", Message: "no choices in completion"}
	}
	return cr.Choices[0].Message.Content, nil
}
