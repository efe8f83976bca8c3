package diet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstrand/infodiet/internal/model"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

func doneRecord(ct model.ContentType, minutes int, completedAgo time.Duration) Record {
	return Record{
		ContentType:      ct,
		Status:           model.StatusDone,
		TimeSpentMinutes: minutes,
		CompletedAt:      tp(now.Add(-completedAgo)),
	}
}

func readingRecord(ct model.ContentType, minutes int, lastReadAgo time.Duration) Record {
	return Record{
		ContentType:      ct,
		Status:           model.StatusReading,
		TimeSpentMinutes: minutes,
		LastReadAt:       tp(now.Add(-lastReadAgo)),
	}
}

func TestCompute_PercentagesSumFromMinutes(t *testing.T) {
	records := []Record{
		doneRecord(model.Sprint, 30, 24*time.Hour),
		doneRecord(model.Session, 50, 48*time.Hour),
		readingRecord(model.Journey, 120, 12*time.Hour),
	}

	snap := Compute(records, 7, now)
	assert.Equal(t, 30, snap.SprintMinutes)
	assert.Equal(t, 50, snap.SessionMinutes)
	assert.Equal(t, 120, snap.JourneyMinutes)
	assert.Equal(t, 200, snap.TotalMinutes)
	assert.Equal(t, 15, snap.SprintPercent)
	assert.Equal(t, 25, snap.SessionPercent)
	assert.Equal(t, 60, snap.JourneyPercent)
}

func TestCompute_WindowMembership(t *testing.T) {
	records := []Record{
		// Completed outside the window: excluded.
		doneRecord(model.Sprint, 100, 10*24*time.Hour),
		// Completed inside: included.
		doneRecord(model.Session, 40, 2*24*time.Hour),
		// In progress, stale activity: excluded.
		readingRecord(model.Journey, 80, 9*24*time.Hour),
		// In progress, recent but no recorded time: excluded.
		{ContentType: model.Journey, Status: model.StatusReading, LastReadAt: tp(now.Add(-time.Hour))},
		// Queued with time somehow recorded but no activity stamp: excluded.
		{ContentType: model.Sprint, Status: model.StatusQueued, TimeSpentMinutes: 10},
	}

	snap := Compute(records, 7, now)
	assert.Equal(t, 40, snap.TotalMinutes)
	assert.Equal(t, 40, snap.SessionMinutes)
	assert.Zero(t, snap.SprintMinutes)
	assert.Zero(t, snap.JourneyMinutes)
}

func TestCompute_EmptyWindow(t *testing.T) {
	snap := Compute(nil, 7, now)
	assert.Zero(t, snap.TotalMinutes)
	assert.Zero(t, snap.SprintPercent)
	assert.Equal(t, model.Sprint, snap.Suggested)
}

func TestComputeAll_WindowsAreIndependent(t *testing.T) {
	records := []Record{
		doneRecord(model.Sprint, 60, 3*24*time.Hour),
		doneRecord(model.Journey, 90, 10*24*time.Hour),
	}

	snaps := ComputeAll(records, []int{7, 14, 21}, now)
	require.Len(t, snaps, 3)
	assert.Equal(t, 60, snaps[0].TotalMinutes)
	assert.Equal(t, 150, snaps[1].TotalMinutes)
	assert.Equal(t, 150, snaps[2].TotalMinutes)
}

func TestSuggest_DecisionTable(t *testing.T) {
	tests := []struct {
		name         string
		sprint       int
		session      int
		journey      int
		totalMinutes int
		want         model.ContentType
	}{
		{"no data", 0, 0, 0, 0, model.Sprint},
		{"sprint heavy low journey", 70, 20, 10, 100, model.Journey},
		{"sprint heavy enough journey", 65, 0, 35, 100, model.Session},
		{"session heavy low journey", 20, 65, 15, 100, model.Journey},
		{"journey heavy low sprint", 10, 25, 65, 100, model.Sprint},
		{"journey heavy enough sprint", 25, 10, 65, 100, model.Session},
		{"low sprint", 10, 50, 40, 100, model.Sprint},
		{"low session", 40, 10, 50, 100, model.Session},
		{"low journey", 45, 45, 10, 100, model.Journey},
		{"balanced", 33, 34, 33, 100, model.Session},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rationale := Suggest(tt.sprint, tt.session, tt.journey, tt.totalMinutes)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, rationale)
		})
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	first, r1 := Suggest(40, 35, 25, 500)
	second, r2 := Suggest(40, 35, 25, 500)
	assert.Equal(t, first, second)
	assert.Equal(t, r1, r2)
}
