package classify

import (
	"net/url"
	"strings"

	"github.com/mstrand/infodiet/internal/model"
)

// Signals are the raw classification inputs derived from a heterogeneous
// item description. Zero values mean the signal is absent, except
// DurationMinutes which is paired with HasDuration.
type Signals struct {
	Domain          string
	Title           string
	TitleWords      int
	WordCount       int
	DurationMinutes int
	HasDuration     bool
	Category        string
}

// ExtractSignals derives classification signals from an incoming document.
// A malformed source URL simply yields an empty domain; extraction itself
// never fails.
func ExtractSignals(doc model.IncomingDocument) Signals {
	s := Signals{
		Title:      doc.Title,
		TitleWords: len(strings.Fields(doc.Title)),
		WordCount:  doc.WordCount,
		Category:   strings.ToLower(strings.TrimSpace(doc.Category)),
	}

	if doc.SourceURL != "" {
		if u, err := url.Parse(doc.SourceURL); err == nil {
			s.Domain = strings.ToLower(u.Hostname())
		}
	}

	if minutes, ok := ParseDuration(doc.DurationText); ok {
		s.DurationMinutes = minutes
		s.HasDuration = true
	}

	return s
}
