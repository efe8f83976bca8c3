// Package ledger applies reading events to an item's cumulative progress
// state. All functions are pure: they validate, compute the next state on a
// copy, and leave persistence to the caller. The time accumulator only ever
// grows here; the explicit correction path is the single sanctioned way to
// reduce it, and it reports a signed delta so the storage layer can apply
// it as an atomic increment.
package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/mstrand/infodiet/internal/apperr"
	"github.com/mstrand/infodiet/internal/estimate"
	"github.com/mstrand/infodiet/internal/model"
)

// SessionEvent is one logged reading event. PagesRead is a relative delta;
// AbsolutePage, when non-nil, sets the position directly. Supplying both is
// a validation error.
type SessionEvent struct {
	MinutesSpent int
	PagesRead    int
	AbsolutePage *int
	At           time.Time
}

// Validate rejects out-of-range events before they reach the ledger. Values
// are never silently clamped.
func (ev SessionEvent) Validate(item model.Item) error {
	if ev.MinutesSpent < 0 {
		return apperr.NewValidationError("minutesSpent", "must not be negative")
	}
	if ev.PagesRead < 0 {
		return apperr.NewValidationError("pagesRead", "must not be negative")
	}
	if ev.AbsolutePage != nil && ev.PagesRead > 0 {
		return apperr.NewValidationError("pagesRead", "cannot combine relative and absolute page updates")
	}
	if ev.AbsolutePage != nil {
		if *ev.AbsolutePage < 0 {
			return apperr.NewValidationError("absolutePage", "must not be negative")
		}
		if item.TotalPages > 0 && *ev.AbsolutePage > item.TotalPages {
			return apperr.NewValidationError("absolutePage",
				fmt.Sprintf("exceeds total pages (%d)", item.TotalPages))
		}
	}
	if ev.PagesRead > 0 && item.TotalPages > 0 && item.CurrentPage+ev.PagesRead > item.TotalPages {
		return apperr.NewValidationError("pagesRead",
			fmt.Sprintf("would exceed total pages (%d)", item.TotalPages))
	}
	return nil
}

// Apply computes the item state after a session event. The accumulator
// increases by exactly MinutesSpent; a positive-minutes event moves a
// queued item to READING; the streak follows the calendar-day law.
func Apply(item model.Item, ev SessionEvent) (model.Item, error) {
	if err := ev.Validate(item); err != nil {
		return item, err
	}

	item.TimeSpentMinutes += ev.MinutesSpent

	if ev.AbsolutePage != nil {
		item.CurrentPage = *ev.AbsolutePage
	} else if ev.PagesRead > 0 {
		item.CurrentPage += ev.PagesRead
	}

	if ev.MinutesSpent > 0 && item.Status == model.StatusQueued {
		item.Status = model.StatusReading
	}

	item.ReadingStreak = NextStreak(item.LastReadAt, item.ReadingStreak, ev.At)
	at := ev.At
	item.LastReadAt = &at

	return item, nil
}

// NextStreak implements the consecutive-day counter: a second session on
// the same calendar day leaves the streak unchanged, the next day adds one,
// and any larger gap (or a first-ever session) resets to 1. Days truncate
// at local midnight.
func NextStreak(lastReadAt *time.Time, streak int, at time.Time) int {
	if lastReadAt == nil {
		return 1
	}

	prev := calendarDay(*lastReadAt)
	today := calendarDay(at)
	// Rounding keeps DST-shortened days counting as one day.
	gap := int(math.Round(today.Sub(prev).Hours() / 24))

	switch gap {
	case 0:
		if streak < 1 {
			return 1
		}
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CorrectTotalTime replaces the accumulator with a new absolute total and
// reports the signed delta the store must apply atomically. This is the
// only path that may reduce recorded time.
func CorrectTotalTime(item model.Item, newTotal int) (model.Item, int, error) {
	if newTotal < 0 {
		return item, 0, apperr.NewValidationError("totalMinutes", "must not be negative")
	}
	delta := newTotal - item.TimeSpentMinutes
	item.TimeSpentMinutes = newTotal
	return item, delta, nil
}

// MarkDone completes an item. A finished page-tracked item snaps to its
// final page and is credited the estimated remaining reading time; an
// unfinished one freezes its current page. Explicitly entered minutes are
// always added.
func MarkDone(item model.Item, explicitMinutes int, finished bool, at time.Time) (model.Item, error) {
	if explicitMinutes < 0 {
		return item, apperr.NewValidationError("minutesSpent", "must not be negative")
	}

	item.TimeSpentMinutes += explicitMinutes

	if finished && item.TotalPages > 0 {
		item.TimeSpentMinutes += estimate.Remaining(item.CurrentPage, item.TotalPages)
		item.CurrentPage = item.TotalPages
	}

	item.Status = model.StatusDone
	item.CompletedAt = &at
	item.CompletionMethod = model.CompletedManually
	return item, nil
}

// Start moves an item into active reading.
func Start(item model.Item) model.Item {
	item.Status = model.StatusReading
	return item
}

// Pause returns a reading item to the queue. Done items are terminal.
func Pause(item model.Item) (model.Item, error) {
	if item.Status == model.StatusDone {
		return item, apperr.NewValidationError("status", "item is already done")
	}
	item.Status = model.StatusQueued
	return item, nil
}
