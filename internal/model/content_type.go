package model

// ContentType is the time-investment bucket of an item.
type ContentType string

const (
	// Sprint is a quick read, on the order of 2-5 minutes.
	Sprint ContentType = "SPRINT"
	// Session is a focused read, on the order of 15-45 minutes.
	Session ContentType = "SESSION"
	// Journey is deep exploration spanning hours or days.
	Journey ContentType = "JOURNEY"
)

// Valid reports whether ct is one of the three known buckets.
func (ct ContentType) Valid() bool {
	switch ct {
	case Sprint, Session, Journey:
		return true
	}
	return false
}

// Label returns a human-readable name for the bucket.
func (ct ContentType) Label() string {
	switch ct {
	case Sprint:
		return "Sprint"
	case Session:
		return "Session"
	case Journey:
		return "Journey"
	}
	return string(ct)
}

// Description returns the reader-facing explanation of the bucket.
func (ct ContentType) Description() string {
	switch ct {
	case Sprint:
		return "quick read (2-5 minutes)"
	case Session:
		return "focused read (15-45 minutes)"
	case Journey:
		return "deep read (hours/days)"
	}
	return string(ct)
}

// ParseContentType accepts a canonical bucket name or a legacy macro name.
// Unknown input reports false.
func ParseContentType(s string) (ContentType, bool) {
	switch s {
	case string(Sprint), string(Session), string(Journey):
		return ContentType(s), true
	case "SNACK":
		return Sprint, true
	case "MEAL":
		return Session, true
	case "TIME_TESTED":
		return Journey, true
	}
	return "", false
}

// FromMacro maps the legacy macro naming (SNACK/MEAL/TIME_TESTED) onto the
// canonical buckets. Unknown or empty input maps to Session, the universal
// default. Legacy names exist only at ingestion boundaries; core logic
// carries ContentType exclusively.
func FromMacro(macro string) ContentType {
	switch macro {
	case "SNACK":
		return Sprint
	case "MEAL":
		return Session
	case "TIME_TESTED":
		return Journey
	}
	return Session
}
