package classify

import (
	"math"
	"regexp"
	"strconv"
)

// Duration formats are tried in a fixed order; the first match wins.
var (
	hoursPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hour|hr|h)(?:s)?`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:min|minute)(?:s)?`)
	clockPattern   = regexp.MustCompile(`(\d+):(\d+)`)
)

// ParseDuration converts a free-text duration string ("1.5 hours", "45 min",
// "8:30") into whole minutes. ok is false when no supported format matches.
// Shared by every ingestion path; pure.
func ParseDuration(text string) (minutes int, ok bool) {
	if text == "" {
		return 0, false
	}

	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		hours, err := strconv.ParseFloat(m[1], 64)
		if err != nil || math.IsInf(hours, 0) || math.IsNaN(hours) {
			return 0, false
		}
		return int(math.Round(hours * 60)), true
	}

	if m := minutesPattern.FindStringSubmatch(text); m != nil {
		mins, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return mins, true
	}

	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hours, err1 := strconv.Atoi(m[1])
		mins, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return hours*60 + mins, true
	}

	return 0, false
}
