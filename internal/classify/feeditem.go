package classify

import (
	"strings"

	"github.com/mstrand/infodiet/internal/model"
)

// FeedItem classifies an RSS entry using its content body and the feed
// title. Newsletter-style feeds bucket purely by word count; otherwise
// title keywords are consulted before falling back to content length.
func FeedItem(title, content, feedTitle string) model.ContentType {
	contentLength := len(content)
	wordCount := len(strings.Fields(content))

	feedLower := strings.ToLower(feedTitle)
	if strings.Contains(feedLower, "newsletter") || strings.Contains(feedLower, "digest") {
		switch {
		case wordCount < 300:
			return model.Sprint
		case wordCount > 2000:
			return model.Journey
		default:
			return model.Session
		}
	}

	titleLower := strings.ToLower(title)
	if containsAny(titleLower, []string{"deep dive", "exploration", "analysis"}) {
		return model.Journey
	}
	if containsAny(titleLower, []string{"quick", "brief", "summary"}) {
		return model.Sprint
	}
	if containsAny(titleLower, []string{"essay", "article"}) {
		if wordCount > 2000 {
			return model.Journey
		}
		return model.Session
	}

	if contentLength < 500 || wordCount < 100 {
		return model.Sprint
	}
	if contentLength > 5000 || wordCount > 1500 {
		return model.Journey
	}
	return model.Session
}
