package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/domain/calendar"
)

func TestScheduleExpandsWeeklyEntries(t *testing.T) {
	h := newHarness(t)
	monday := time.Date(2030, 3, 4, 9, 0, 0, 0, time.UTC)

	weekly, err := h.schedules.Create(h.ctx, ScheduleInput{
		Title:      "Algebra",
		Location:   "Room 12",
		StartsAt:   monday,
		EndsAt:     monday.Add(time.Hour),
		Recurrence: calendar.RecurrenceWeekly,
	})
	require.NoError(t, err)
	_, err = h.schedules.Create(h.ctx, ScheduleInput{
		Title:    "Staff meeting",
		StartsAt: monday.AddDate(0, 0, 7).Add(4 * time.Hour),
		EndsAt:   monday.AddDate(0, 0, 7).Add(5 * time.Hour),
	})
	require.NoError(t, err)

	day, err := h.schedules.ForDay(h.ctx, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "Algebra", day[0].Title)
	assert.True(t, day[0].Recurring)
	assert.Equal(t, weekly.ID, day[0].ScheduleID)
	assert.True(t, day[0].StartsAt.Equal(monday.AddDate(0, 0, 7)))
	assert.Equal(t, "Staff meeting", day[1].Title)
	assert.False(t, day[1].Recurring)

	tuesday, err := h.schedules.ForDay(h.ctx, monday.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Empty(t, tuesday)

	before, err := h.schedules.ForDay(h.ctx, monday.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Empty(t, before)

	span, err := h.schedules.ListRange(h.ctx, monday.AddDate(0, 0, -3), monday.AddDate(0, 0, 16))
	require.NoError(t, err)
	assert.Len(t, span, 4)

	_, err = h.schedules.ListRange(h.ctx, monday, monday)
	requireAPIError(t, err, http.StatusBadRequest, "invalid_time_range")
	_, err = h.schedules.ListRange(h.ctx, monday, monday.AddDate(0, 3, 0))
	requireAPIError(t, err, http.StatusBadRequest, "invalid_time_range")
}
