package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOccursOn(t *testing.T) {
	// Monday 2024-09-02 09:00 UTC, one hour.
	start := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	once := Schedule{StartsAt: start, EndsAt: start.Add(time.Hour), Recurrence: RecurrenceNone}
	weekly := Schedule{StartsAt: start, EndsAt: start.Add(time.Hour), Recurrence: RecurrenceWeekly}

	_, _, ok := once.OccursOn(time.Date(2024, 9, 2, 15, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	_, _, ok = once.OccursOn(time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	occStart, occEnd, ok := weekly.OccursOn(time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 9, 16, 9, 0, 0, 0, time.UTC), occStart)
	assert.Equal(t, time.Date(2024, 9, 16, 10, 0, 0, 0, time.UTC), occEnd)

	_, _, ok = weekly.OccursOn(time.Date(2024, 9, 17, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok, "wrong weekday")
	_, _, ok = weekly.OccursOn(time.Date(2024, 8, 26, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok, "before first occurrence")
}

func TestMeetingOverlaps(t *testing.T) {
	start := time.Date(2024, 9, 2, 15, 0, 0, 0, time.UTC)
	m := Meeting{StartsAt: start, DurationMinutes: 30}
	assert.True(t, m.Overlaps(start.Add(15*time.Minute), start.Add(45*time.Minute)))
	assert.False(t, m.Overlaps(start.Add(30*time.Minute), start.Add(time.Hour)))
	assert.False(t, m.Overlaps(start.Add(-30*time.Minute), start))
}
