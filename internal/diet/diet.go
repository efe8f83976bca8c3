// Package diet computes reading-balance statistics over a lookback window
// and the rule-based "what to read next" suggestion. Pure functions of the
// item records handed in; windows share no state.
package diet

import (
	"math"
	"time"

	"github.com/mstrand/infodiet/internal/model"
)

// Record is the slice of an item the aggregator needs.
type Record struct {
	ContentType      model.ContentType
	Status           model.ItemStatus
	TimeSpentMinutes int
	CompletedAt      *time.Time
	LastReadAt       *time.Time
}

// Snapshot is the computed diet for one window. Percentages are rounded
// whole numbers and all zero when no time was recorded.
type Snapshot struct {
	WindowDays int `json:"windowDays"`

	SprintMinutes  int `json:"sprintMinutes"`
	SessionMinutes int `json:"sessionMinutes"`
	JourneyMinutes int `json:"journeyMinutes"`
	TotalMinutes   int `json:"totalMinutes"`

	SprintPercent  int `json:"sprintPercent"`
	SessionPercent int `json:"sessionPercent"`
	JourneyPercent int `json:"journeyPercent"`

	Suggested model.ContentType `json:"suggested"`
	Rationale string            `json:"rationale"`
}

// Compute aggregates records for a window of days ending at now. An item
// counts if it completed inside the window, or is still in progress with
// recorded time and activity inside the window.
func Compute(records []Record, windowDays int, now time.Time) Snapshot {
	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	snap := Snapshot{WindowDays: windowDays}
	for _, r := range records {
		if !inWindow(r, cutoff) {
			continue
		}
		switch r.ContentType {
		case model.Sprint:
			snap.SprintMinutes += r.TimeSpentMinutes
		case model.Session:
			snap.SessionMinutes += r.TimeSpentMinutes
		case model.Journey:
			snap.JourneyMinutes += r.TimeSpentMinutes
		}
	}

	snap.TotalMinutes = snap.SprintMinutes + snap.SessionMinutes + snap.JourneyMinutes
	if snap.TotalMinutes > 0 {
		snap.SprintPercent = percent(snap.SprintMinutes, snap.TotalMinutes)
		snap.SessionPercent = percent(snap.SessionMinutes, snap.TotalMinutes)
		snap.JourneyPercent = percent(snap.JourneyMinutes, snap.TotalMinutes)
	}

	snap.Suggested, snap.Rationale = Suggest(snap.SprintPercent, snap.SessionPercent, snap.JourneyPercent, snap.TotalMinutes)
	return snap
}

// ComputeAll computes each requested window independently.
func ComputeAll(records []Record, windows []int, now time.Time) []Snapshot {
	snaps := make([]Snapshot, 0, len(windows))
	for _, w := range windows {
		snaps = append(snaps, Compute(records, w, now))
	}
	return snaps
}

func inWindow(r Record, cutoff time.Time) bool {
	if r.Status == model.StatusDone {
		return r.CompletedAt != nil && !r.CompletedAt.Before(cutoff)
	}
	return r.TimeSpentMinutes > 0 && r.LastReadAt != nil && !r.LastReadAt.Before(cutoff)
}

func percent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Suggest applies the fixed decision table to the three percentages.
// The rules are evaluated top to bottom and the first match wins; the
// order is observable behavior and must not be rearranged.
func Suggest(sprintPct, sessionPct, journeyPct, totalMinutes int) (model.ContentType, string) {
	switch {
	case totalMinutes == 0:
		return model.Sprint, "Start with something quick."
	case sprintPct > 60:
		if journeyPct < 30 {
			return model.Journey, "You've been sprinting a lot. Time for something deeper."
		}
		return model.Session, "You've been sprinting a lot. Try a focused read."
	case sessionPct > 60 && journeyPct < 20:
		return model.Journey, "Plenty of focused reads lately. Make room for a journey."
	case journeyPct > 60:
		if sprintPct < 20 {
			return model.Sprint, "You've been deep in long reads. Grab a quick one for variety."
		}
		return model.Session, "You've been deep in long reads. Try a focused read."
	case sprintPct < 20:
		return model.Sprint, "Add some variety with a quick read."
	case sessionPct < 20:
		return model.Session, "Balance your diet with a focused read."
	case journeyPct < 20:
		return model.Journey, "Make room for something long-form."
	default:
		return model.Session, "Balanced — try a focused read."
	}
}
