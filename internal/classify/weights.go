package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Score accumulates weighted evidence for each bucket.
type Score struct {
	Sprint  int `yaml:"sprint"`
	Session int `yaml:"session"`
	Journey int `yaml:"journey"`
}

func (s *Score) add(o Score) {
	s.Sprint += o.Sprint
	s.Session += o.Session
	s.Journey += o.Journey
}

// Max returns the highest of the three scores.
func (s Score) Max() int {
	m := s.Sprint
	if s.Session > m {
		m = s.Session
	}
	if s.Journey > m {
		m = s.Journey
	}
	return m
}

// DomainRule adds weight when any of Hosts is a substring of the URL host.
// URLContains, when set, must additionally appear in the full URL.
type DomainRule struct {
	Hosts       []string `yaml:"hosts"`
	URLContains string   `yaml:"url_contains,omitempty"`
	Add         Score    `yaml:"add"`
}

// KeywordRule adds weight when any of Words appears in the lowercased title.
type KeywordRule struct {
	Words []string `yaml:"words"`
	Add   Score    `yaml:"add"`
}

// LengthRule adds weight based on the title's word count. Zero bounds are
// open; a rule with MinWords 20 fires for any title of 20+ words.
type LengthRule struct {
	MinWords int   `yaml:"min_words,omitempty"`
	MaxWords int   `yaml:"max_words,omitempty"`
	Add      Score `yaml:"add"`
}

// BlogRule is the special-cased generic-blog heuristic: hosted-blog domains
// score by title length rather than a fixed weight.
type BlogRule struct {
	Hosts          []string `yaml:"hosts"`
	LongTitleChars int      `yaml:"long_title_chars"`
	LongTitleAdd   Score    `yaml:"long_title_add"`
	ShortTitleAdd  Score    `yaml:"short_title_add"`
	NoTitleAdd     Score    `yaml:"no_title_add"`
}

// Weights is the full heuristic tuning table. The resolution multipliers
// are empirical constants carried here so they can be overridden alongside
// the weight table.
type Weights struct {
	JourneyOverSprint float64 `yaml:"journey_over_sprint"`
	SessionOverSprint float64 `yaml:"session_over_sprint"`

	Domains  []DomainRule  `yaml:"domains"`
	Blog     BlogRule      `yaml:"blog"`
	Keywords []KeywordRule `yaml:"keywords"`
	Lengths  []LengthRule  `yaml:"lengths"`
}

// DefaultWeights returns the hand-tuned production table. Short-form
// platforms bias sprint, essay and newsletter platforms bias session,
// academic and book platforms bias journey; several domains contribute to
// two buckets to model ambiguity.
func DefaultWeights() Weights {
	return Weights{
		JourneyOverSprint: 1.2,
		SessionOverSprint: 1.3,

		Domains: []DomainRule{
			// Social media and quick content.
			{Hosts: []string{"twitter.com", "x.com"}, Add: Score{Sprint: 10}},
			{Hosts: []string{"linkedin.com"}, Add: Score{Sprint: 8}},
			{Hosts: []string{"reddit.com"}, Add: Score{Sprint: 6}},
			{Hosts: []string{"news.ycombinator.com", "hackernews"}, Add: Score{Sprint: 7}},
			{Hosts: []string{"producthunt.com"}, Add: Score{Sprint: 9}},

			// Video platforms.
			{Hosts: []string{"youtube.com", "youtu.be"}, Add: Score{Sprint: 8}},
			{Hosts: []string{"vimeo.com"}, Add: Score{Sprint: 6}},
			{Hosts: []string{"tiktok.com"}, Add: Score{Sprint: 10}},

			// News sites.
			{Hosts: []string{"cnn.com", "bbc.com", "reuters.com"}, Add: Score{Sprint: 6}},
			{Hosts: []string{"theguardian.com", "nytimes.com"}, Add: Score{Sprint: 5, Session: 2}},
			{Hosts: []string{"washingtonpost.com", "wsj.com"}, Add: Score{Sprint: 6}},

			// Tech news.
			{Hosts: []string{"techcrunch.com", "theverge.com"}, Add: Score{Sprint: 6}},
			{Hosts: []string{"arstechnica.com"}, Add: Score{Sprint: 5, Session: 3}},
			{Hosts: []string{"engadget.com"}, Add: Score{Sprint: 7}},

			// Newsletter platforms.
			{Hosts: []string{"substack.com"}, Add: Score{Session: 8, Journey: 1}},
			{Hosts: []string{"medium.com"}, Add: Score{Session: 7}},
			{Hosts: []string{"ghost.io"}, Add: Score{Session: 6}},
			{Hosts: []string{"beehiiv.com"}, Add: Score{Session: 6, Sprint: 1}},

			// Long-form.
			{Hosts: []string{"longform.org"}, Add: Score{Session: 7, Journey: 2}},
			{Hosts: []string{"newyorker.com", "theatlantic.com"}, Add: Score{Session: 8, Journey: 1}},
			{Hosts: []string{"wired.com", "smithsonianmag.com"}, Add: Score{Session: 6, Journey: 1}},

			// Academic and research.
			{Hosts: []string{"arxiv.org", "scholar.google.com"}, Add: Score{Journey: 10}},
			{Hosts: []string{"nature.com", "science.org"}, Add: Score{Journey: 9}},
			{Hosts: []string{"jstor.org", "researchgate.net"}, Add: Score{Journey: 8}},

			// Documentation and technical deep dives.
			{Hosts: []string{"docs.", "developer."}, Add: Score{Journey: 7, Session: 2}},
			{Hosts: []string{"github.com"}, URLContains: "/blob/", Add: Score{Journey: 6, Sprint: 1}},

			// Books and reading platforms.
			{Hosts: []string{"goodreads.com", "storygraph.com"}, Add: Score{Journey: 8}},
			{Hosts: []string{"amazon.com"}, URLContains: "/books/", Add: Score{Journey: 6, Session: 2}},
			{Hosts: []string{"gutenberg.org"}, Add: Score{Journey: 9}},
		},

		Blog: BlogRule{
			Hosts:          []string{"blog", "wordpress.com", "tumblr.com"},
			LongTitleChars: 80,
			LongTitleAdd:   Score{Session: 4},
			ShortTitleAdd:  Score{Sprint: 4},
			NoTitleAdd:     Score{Session: 3},
		},

		Keywords: []KeywordRule{
			{Words: []string{"book", "chapter", "guide", "manual", "handbook", "textbook", "ebook"},
				Add: Score{Journey: 7}},
			{Words: []string{"paper", "study", "research", "analysis", "journal"},
				Add: Score{Journey: 5, Session: 2}},
			{Words: []string{"quick", "brief", "summary", "news", "update", "tip", "hack", "trick"},
				Add: Score{Sprint: 6}},
			{Words: []string{"essay", "deep dive", "exploration", "investigation", "feature", "profile", "story"},
				Add: Score{Session: 5, Journey: 2}},
		},

		Lengths: []LengthRule{
			{MaxWords: 8, Add: Score{Sprint: 3}},
			{MinWords: 20, Add: Score{Journey: 4, Session: 1}},
			{MinWords: 30, Add: Score{Journey: 6, Session: 2}},
		},
	}
}

// LoadWeights reads a YAML override file on top of the defaults. An empty
// path returns the defaults unchanged.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("reading weights file: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parsing weights file: %w", err)
	}
	return w, nil
}
