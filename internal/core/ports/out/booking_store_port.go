package out

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

type BookingStorePort interface {
	// Reserve atomically stores a scheduled booking unless its interval overlaps
	// another scheduled booking, in which case domain.ErrSlotUnavailable is returned.
	Reserve(ctx context.Context, booking domain.Booking) error
	Get(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	// Cancel moves a scheduled booking to cancelled and frees its interval.
	Cancel(ctx context.Context, bookingID uuid.UUID, reason string, at time.Time) (*domain.Booking, error)
	// Replace cancels the scheduled booking oldID with reason and stores next in
	// one step. next may overlap oldID but no other scheduled booking. On any
	// error neither booking changes. The retired booking is returned.
	Replace(ctx context.Context, oldID uuid.UUID, reason string, at time.Time, next domain.Booking) (*domain.Booking, error)
	// ListByDate returns the scheduled bookings of a calendar day.
	ListByDate(ctx context.Context, date time.Time) ([]domain.Booking, error)
}
