package in

import (
	"context"
	"time"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

type SlotUseCase interface {
	// Free slots of a single day
	GetAvailableSlots(ctx context.Context, date time.Time, appointmentTypeID string) (*domain.AvailabilityResult, error)

	// Same as GetAvailableSlots with one stored booking left out of the busy intervals
	GetAvailableSlotsIgnoring(ctx context.Context, date time.Time, appointmentTypeID string, ignoreBookingID string) (*domain.AvailabilityResult, error)

	// Days of the range that have at least one free slot
	GetAvailableSlotsRange(ctx context.Context, startDate, endDate time.Time, appointmentTypeID string) ([]domain.AvailabilityResult, error)

	GetNextAvailableSlot(ctx context.Context, appointmentTypeID string, from time.Time) (*domain.NextAvailableSlot, error)
}
