// Package classify infers the time-investment bucket of incoming content.
//
// Two independent strategies exist because different inputs carry different
// signal availability: a threshold path for documents with explicit
// duration or word-count data, and a weighted-scoring heuristic for
// freeform URL+title input. Classification always produces a bucket;
// Session is the universal default when signals are missing or ambiguous.
package classify

import (
	"net/url"
	"strings"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/model"
)

// Exact threshold cutoffs for the duration/word-count path. These define
// observable behavior and are reproduced bit-for-bit.
const (
	sprintMaxMinutes  = 6
	journeyMinMinutes = 45
	sprintMaxWords    = 900
	journeyMinWords   = 12000
)

// Classifier applies the weighted-scoring heuristic with a tunable table.
type Classifier struct {
	weights Weights
}

// New creates a classifier with the given weight table.
func New(w Weights) *Classifier {
	return &Classifier{weights: w}
}

// ByDuration buckets an explicit duration in minutes.
func ByDuration(minutes int) model.ContentType {
	switch {
	case minutes <= sprintMaxMinutes:
		return model.Sprint
	case minutes >= journeyMinMinutes:
		return model.Journey
	default:
		return model.Session
	}
}

// ByWordCount buckets an explicit word count.
func ByWordCount(words int) model.ContentType {
	switch {
	case words <= sprintMaxWords:
		return model.Sprint
	case words >= journeyMinWords:
		return model.Journey
	default:
		return model.Session
	}
}

// Document classifies an incoming document on the threshold path. Signal
// precedence: declared duration, then provider category hint, then word
// count, then the Session default. Missing signals are never an error.
func Document(doc model.IncomingDocument) model.ContentType {
	s := ExtractSignals(doc)

	if s.HasDuration {
		return ByDuration(s.DurationMinutes)
	}

	switch s.Category {
	case "tweet":
		return model.Sprint
	case "epub", "pdf":
		return model.Journey
	}

	if s.WordCount > 0 {
		return ByWordCount(s.WordCount)
	}

	return model.Session
}

// URL classifies a freeform URL + title pair on the heuristic path. A
// malformed URL yields a ClassificationInputError; callers fall back to
// Title.
func (c *Classifier) URL(rawURL, title string) (model.ContentType, error) {
	score, err := c.ScoreURL(rawURL, title)
	if err != nil {
		return "", err
	}
	return c.resolve(score), nil
}

// ScoreURL folds the weight table into the three accumulators without
// resolving, so the table can be unit-tested independently of the
// resolution logic.
func (c *Classifier) ScoreURL(rawURL, title string) (Score, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		if err == nil {
			err = apperr.ErrInvalidInput
		}
		return Score{}, &apperr.ClassificationInputError{Input: rawURL, Err: err}
	}

	domain := strings.ToLower(u.Hostname())
	lowerURL := strings.ToLower(rawURL)
	titleLower := strings.ToLower(title)
	words := len(strings.Fields(titleLower))

	var score Score

	for _, rule := range c.weights.Domains {
		if !matchesHost(domain, rule.Hosts) {
			continue
		}
		if rule.URLContains != "" && !strings.Contains(lowerURL, rule.URLContains) {
			continue
		}
		score.add(rule.Add)
	}

	if matchesHost(domain, c.weights.Blog.Hosts) {
		switch {
		case title == "":
			score.add(c.weights.Blog.NoTitleAdd)
		case len(title) > c.weights.Blog.LongTitleChars:
			score.add(c.weights.Blog.LongTitleAdd)
		default:
			score.add(c.weights.Blog.ShortTitleAdd)
		}
	}

	for _, rule := range c.weights.Keywords {
		if containsAny(titleLower, rule.Words) {
			score.add(rule.Add)
		}
	}

	for _, rule := range c.weights.Lengths {
		if rule.MaxWords > 0 && words > rule.MaxWords {
			continue
		}
		if rule.MinWords > 0 && words < rule.MinWords {
			continue
		}
		score.add(rule.Add)
	}

	return score, nil
}

// resolve picks a bucket from the accumulated scores. Journey must beat
// sprint by the configured multiplier (or beat session outright); session
// must beat sprint by its multiplier. When no branch fires the fallback
// chain prefers the strictly-greatest score and defaults to Session.
func (c *Classifier) resolve(s Score) model.ContentType {
	max := s.Max()

	if max > 0 {
		switch {
		case s.Journey >= max:
			if float64(s.Journey) > float64(s.Sprint)*c.weights.JourneyOverSprint || s.Journey > s.Session {
				return model.Journey
			}
		case s.Session >= max:
			if float64(s.Session) > float64(s.Sprint)*c.weights.SessionOverSprint {
				return model.Session
			}
		case s.Sprint >= max:
			return model.Sprint
		}
	}

	if s.Journey > s.Sprint && s.Journey > s.Session {
		return model.Journey
	}
	if s.Session > s.Sprint {
		return model.Session
	}
	if s.Sprint > 0 {
		return model.Sprint
	}
	return model.Session
}

// Title is the simpler title-only variant used when no URL is available.
// Keyword precedence is deliberate and fixed: book/guide indicators are
// checked before quick/brief indicators, so a title matching both ("Quick
// Guide to X") classifies Journey.
func Title(title string) model.ContentType {
	words := len(strings.Fields(title))
	lower := strings.ToLower(title)

	if words <= 8 {
		return model.Sprint
	}
	if words >= 20 {
		return model.Journey
	}

	if containsAny(lower, []string{"book", "chapter", "guide", "manual", "handbook"}) {
		return model.Journey
	}
	if containsAny(lower, []string{"quick", "brief", "summary", "news", "update"}) {
		return model.Sprint
	}
	if containsAny(lower, []string{"essay", "analysis", "deep dive", "exploration", "investigation"}) {
		return model.Session
	}

	if words <= 12 {
		return model.Sprint
	}
	if words >= 15 {
		return model.Journey
	}
	return model.Session
}

// Link classifies a manually-added link: the heuristic URL path first, the
// title-only variant when the URL result is the nondescript default or the
// URL is unusable.
func (c *Classifier) Link(rawURL, title string) model.ContentType {
	fromURL, err := c.URL(rawURL, title)
	if err != nil {
		return Title(title)
	}
	if fromURL != model.Session {
		return fromURL
	}
	if title == "" {
		return model.Session
	}
	return Title(title)
}

func matchesHost(domain string, hosts []string) bool {
	for _, h := range hosts {
		if strings.Contains(domain, h) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
