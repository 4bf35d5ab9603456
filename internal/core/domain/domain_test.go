package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
)

func TestDefaultWorkingHoursAreValid(t *testing.T) {
	table := DefaultWorkingHours()

	require.NoError(t, table.Validate())
	assert.Len(t, table, 7)
	assert.False(t, table[time.Sunday].Available)
	assert.Equal(t, "10:00", table[time.Saturday].Start.String())
}

func TestWorkingHoursValidate(t *testing.T) {
	start := json_types.NewClock(9, 0)

	cases := []struct {
		name  string
		table WorkingHoursTable
	}{
		{"closed with hours", WorkingHoursTable{time.Monday: {Start: &start}}},
		{"open without end", WorkingHoursTable{time.Monday: {Start: &start, Available: true}}},
		{"start after end", WorkingHoursTable{time.Monday: OpenDay("17:00", "09:00")}},
		{"empty window", WorkingHoursTable{time.Monday: OpenDay("09:00", "09:00")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.table.Validate(), ErrInvalidWorkingHours)
		})
	}
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "monday", WeekdayName(time.Monday))
	assert.Equal(t, "sunday", WeekdayName(time.Sunday))
}

func TestBusyIntervalOverlapsIsHalfOpen(t *testing.T) {
	base := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	busy := BusyInterval{Start: base, End: base.Add(30 * time.Minute)}

	assert.False(t, busy.Overlaps(base.Add(-30*time.Minute), base), "ends exactly at busy start")
	assert.False(t, busy.Overlaps(base.Add(30*time.Minute), base.Add(60*time.Minute)), "starts exactly at busy end")
	assert.True(t, busy.Overlaps(base.Add(-15*time.Minute), base.Add(15*time.Minute)))
	assert.True(t, busy.Overlaps(base.Add(-time.Hour), base.Add(time.Hour)))
}

func TestErrorKinds(t *testing.T) {
	err := NewError(ErrMalformedEmail, "Invalid email format")
	wrapped := fmt.Errorf("booking: %w", err)

	assert.ErrorIs(t, wrapped, ErrMalformedEmail)
	assert.Equal(t, "Invalid email format", Message(wrapped))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}

func TestExternalErrorMatchesFetchFailure(t *testing.T) {
	cause := errors.New("401 Unauthorized")
	err := &ExternalError{Op: "scheduled_events", StatusCode: 401, Err: cause}

	assert.ErrorIs(t, err, ErrExternalFetchFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "401")
}

func TestAvailabilityResultHasSlotAt(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	result := AvailabilityResult{Slots: []Slot{{Start: start, End: start.Add(30 * time.Minute)}}}

	assert.True(t, result.HasSlotAt(json_types.NewClock(10, 0)))
	assert.False(t, result.HasSlotAt(json_types.NewClock(10, 15)))
}
