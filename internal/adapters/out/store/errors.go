package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

func slotTakenError(booking domain.Booking) error {
	return domain.NewError(domain.ErrSlotUnavailable, "Time slot %s is not available on %s", booking.StartTime, booking.Date)
}

func bookingNotFoundError(bookingID uuid.UUID) error {
	return domain.NewError(domain.ErrBookingNotFound, "Booking %s not found", bookingID)
}

func alreadyCancelledError(bookingID uuid.UUID) error {
	return domain.NewError(domain.ErrBookingAlreadyCancelled, "Booking %s is already cancelled", bookingID)
}

func isDomainError(err error) bool {
	var domainErr *domain.Error
	return errors.As(err, &domainErr)
}

func markCancelled(booking *domain.Booking, reason string, at time.Time) {
	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = &at
	booking.CancellationReason = reason
}
