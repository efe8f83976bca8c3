// Package estimate converts pages and words into expected reading minutes.
package estimate

import (
	"math"
	"regexp"
	"strings"

	"github.com/mstrand/infodiet/internal/model"
)

// Canonical conversion constants. Used both for default estimates and for
// remaining-time credit at completion.
const (
	MinutesPerPage = 2
	WordsPerMinute = 225
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// FromPages estimates reading minutes from a page count.
func FromPages(pages int) int {
	if pages <= 0 {
		return 0
	}
	return pages * MinutesPerPage
}

// FromWords estimates reading minutes from a word count.
func FromWords(words int) int {
	if words <= 0 {
		return 0
	}
	return int(math.Round(float64(words) / WordsPerMinute))
}

// WordCountFromHTML strips tags and counts whitespace-separated words.
func WordCountFromHTML(html string) int {
	if html == "" {
		return 0
	}
	text := tagPattern.ReplaceAllString(html, " ")
	return len(strings.Fields(text))
}

// Default returns the fallback estimate for a bucket when no page or word
// data is available.
func Default(ct model.ContentType) int {
	switch ct {
	case model.Sprint:
		return 3
	case model.Session:
		return 25
	case model.Journey:
		return 60
	}
	return 15
}

// Remaining estimates the minutes left to finish a page-tracked item.
func Remaining(currentPage, totalPages int) int {
	if totalPages <= 0 || currentPage >= totalPages {
		return 0
	}
	return (totalPages - currentPage) * MinutesPerPage
}

// ProgressPercent reports completion as a whole percentage, capped at 100.
// Items without a page total report 0.
func ProgressPercent(current, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(current) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}
