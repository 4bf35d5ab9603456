package in

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

type BookingUseCase interface {
	CreateAppointment(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	CancelAppointment(ctx context.Context, bookingID string, reason string) (*domain.Cancellation, error)
	RescheduleAppointment(ctx context.Context, bookingID string, newDate string, newTime string) (*domain.Reschedule, error)
	GetBookingSummary(ctx context.Context, startDate, endDate time.Time) (*domain.BookingSummary, error)
}
