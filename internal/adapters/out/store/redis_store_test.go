package store

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

func TestCellKeysAlignToGrid(t *testing.T) {
	keys := cellKeys("2025-01-06", json_types.MustParseClock("09:00"), json_types.MustParseClock("09:30"), 15)
	assert.Equal(t, []string{
		"appointment-booking:cell:2025-01-06:09:00",
		"appointment-booking:cell:2025-01-06:09:15",
	}, keys)

	keys = cellKeys("2025-01-06", json_types.MustParseClock("09:05"), json_types.MustParseClock("09:35"), 15)
	assert.Equal(t, []string{
		"appointment-booking:cell:2025-01-06:09:00",
		"appointment-booking:cell:2025-01-06:09:15",
		"appointment-booking:cell:2025-01-06:09:30",
	}, keys)
}

func TestCellKeysOverlappingBookingsShareCell(t *testing.T) {
	a := cellKeys("2025-01-06", json_types.MustParseClock("10:00"), json_types.MustParseClock("10:45"), 15)
	b := cellKeys("2025-01-06", json_types.MustParseClock("10:30"), json_types.MustParseClock("11:00"), 15)
	assert.Contains(t, a, b[0])

	c := cellKeys("2025-01-06", json_types.MustParseClock("10:45"), json_types.MustParseClock("11:00"), 15)
	for _, key := range c {
		assert.NotContains(t, a, key)
	}
}

func TestNewRedisStoreRejectsBadCell(t *testing.T) {
	_, err := NewRedisStore(nil, 0, out.NopLogger())
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	s, err := NewRedisStore(client, 15, out.NopLogger())
	require.NoError(t, err)
	return s, server
}

func cellKey(clock string) string {
	return "appointment-booking:cell:2025-01-06:" + clock
}

func TestRedisStoreReserveConflictRollsBackCells(t *testing.T) {
	ctx := context.Background()
	s, server := newRedisStore(t)

	first := newBooking("09:30", 30)
	require.NoError(t, s.Reserve(ctx, first))

	// 09:00 and 09:15 are claimed before 09:30 collides.
	err := s.Reserve(ctx, newBooking("09:00", 45))
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.False(t, server.Exists(cellKey("09:00")))
	assert.False(t, server.Exists(cellKey("09:15")))

	holder, err := server.Get(cellKey("09:30"))
	require.NoError(t, err)
	assert.Equal(t, first.ID.String(), holder)

	assert.NoError(t, s.Reserve(ctx, newBooking("09:00", 30)))
	assert.NoError(t, s.Reserve(ctx, newBooking("10:00", 15)))
}

func TestRedisStoreCancelReleasesCells(t *testing.T) {
	ctx := context.Background()
	s, server := newRedisStore(t)

	booking := newBooking("11:00", 30)
	require.NoError(t, s.Reserve(ctx, booking))

	retired, err := s.Cancel(ctx, booking.ID, "feeling better", monday)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, retired.Status)
	assert.Equal(t, "feeling better", retired.CancellationReason)
	assert.False(t, server.Exists(cellKey("11:00")))
	assert.False(t, server.Exists(cellKey("11:15")))

	stored, err := s.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)

	_, err = s.Cancel(ctx, booking.ID, "", monday)
	assert.ErrorIs(t, err, domain.ErrBookingAlreadyCancelled)

	_, err = s.Cancel(ctx, uuid.New(), "", monday)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	assert.NoError(t, s.Reserve(ctx, newBooking("11:00", 30)))
}

func TestRedisStoreConcurrentCancelSingleWinner(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)

	booking := newBooking("12:00", 30)
	require.NoError(t, s.Reserve(ctx, booking))

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Cancel(ctx, booking.ID, "", monday)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrBookingAlreadyCancelled)
	}
	assert.Equal(t, 1, succeeded)
}

func TestRedisStoreListByDateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)

	late := newBooking("15:00", 45)
	late.Notes = "bring results"
	early := newBooking("09:00", 15)
	cancelled := newBooking("12:00", 30)
	require.NoError(t, s.Reserve(ctx, late))
	require.NoError(t, s.Reserve(ctx, early))
	require.NoError(t, s.Reserve(ctx, cancelled))
	_, err := s.Cancel(ctx, cancelled.ID, "", monday)
	require.NoError(t, err)

	bookings, err := s.ListByDate(ctx, monday)
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	assert.Equal(t, early.ID, bookings[0].ID)
	assert.Equal(t, late.ID, bookings[1].ID)
	assert.Equal(t, "2025-01-06", bookings[1].Date.String())
	assert.Equal(t, "15:00", bookings[1].StartTime.String())
	assert.Equal(t, "15:45", bookings[1].EndTime.String())
	assert.True(t, late.StartsAt.Equal(bookings[1].StartsAt))
	assert.True(t, late.EndsAt.Equal(bookings[1].EndsAt))
	assert.Equal(t, late.Patient, bookings[1].Patient)
	assert.Equal(t, "bring results", bookings[1].Notes)
	assert.Equal(t, domain.BookingStatusScheduled, bookings[1].Status)

	empty, err := s.ListByDate(ctx, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisStoreReplaceMovesIntoOverlappingSlot(t *testing.T) {
	ctx := context.Background()
	s, server := newRedisStore(t)

	old := newBooking("09:00", 30)
	require.NoError(t, s.Reserve(ctx, old))

	next := newBooking("09:15", 30)
	retired, err := s.Replace(ctx, old.ID, "rescheduled", monday, next)
	require.NoError(t, err)
	assert.Equal(t, old.ID, retired.ID)
	assert.Equal(t, "rescheduled", retired.CancellationReason)

	assert.False(t, server.Exists(cellKey("09:00")))
	for _, clock := range []string{"09:15", "09:30"} {
		holder, err := server.Get(cellKey(clock))
		require.NoError(t, err)
		assert.Equal(t, next.ID.String(), holder)
	}

	bookings, err := s.ListByDate(ctx, monday)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, next.ID, bookings[0].ID)

	stored, err := s.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)
}

func TestRedisStoreReplaceConflictKeepsOldBooking(t *testing.T) {
	ctx := context.Background()
	s, server := newRedisStore(t)

	old := newBooking("09:00", 30)
	other := newBooking("14:00", 30)
	require.NoError(t, s.Reserve(ctx, old))
	require.NoError(t, s.Reserve(ctx, other))

	next := newBooking("14:15", 30)
	_, err := s.Replace(ctx, old.ID, "rescheduled", monday, next)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

	kept, err := s.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusScheduled, kept.Status)

	holder, err := server.Get(cellKey("09:00"))
	require.NoError(t, err)
	assert.Equal(t, old.ID.String(), holder)
	assert.False(t, server.Exists(cellKey("14:30")))

	_, err = s.Get(ctx, next.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	_, err = s.Cancel(ctx, old.ID, "", monday)
	require.NoError(t, err)
	_, err = s.Replace(ctx, old.ID, "rescheduled", monday, newBooking("16:00", 15))
	assert.ErrorIs(t, err, domain.ErrBookingAlreadyCancelled)
}
