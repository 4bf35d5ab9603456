package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingRequest is the raw, string-typed booking input.
type BookingRequest struct {
	AppointmentTypeID string `json:"appointmentTypeId"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	PatientName       string `json:"patientName"`
	PatientEmail      string `json:"patientEmail"`
	PatientPhone      string `json:"patientPhone,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

type Patient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Booking struct {
	ID                  uuid.UUID        `json:"bookingId"`
	AppointmentTypeID   string           `json:"appointmentTypeId"`
	AppointmentTypeName string           `json:"type"`
	DurationMinutes     int              `json:"durationMinutes"`
	Date                json_types.Date  `json:"date"`
	StartTime           json_types.Clock `json:"startTime"`
	EndTime             json_types.Clock `json:"endTime"`
	StartsAt            time.Time        `json:"startsAt"`
	EndsAt              time.Time        `json:"endsAt"`
	Patient             Patient          `json:"patient"`
	Notes               string           `json:"notes"`
	Status              BookingStatus    `json:"status"`
	CreatedAt           time.Time        `json:"createdAt"`
	CancelledAt         *time.Time       `json:"cancelledAt,omitempty"`
	CancellationReason  string           `json:"cancellationReason,omitempty"`
}

func (b *Booking) Interval() BusyInterval {
	return BusyInterval{Start: b.StartsAt, End: b.EndsAt, BookingID: b.ID.String()}
}

func (b *Booking) IsScheduled() bool {
	return b.Status == BookingStatusScheduled
}

type Cancellation struct {
	BookingID          string `json:"bookingId"`
	CancellationReason string `json:"cancellationReason,omitempty"`
	Message            string `json:"message"`
}

type Reschedule struct {
	OldBookingID string           `json:"oldBookingId"`
	NewBookingID string           `json:"newBookingId"`
	NewDate      json_types.Date  `json:"newDate"`
	NewTime      json_types.Clock `json:"newTime"`
	Message      string           `json:"message"`
}

type BookingSummary struct {
	TotalAppointments int             `json:"totalAppointments"`
	ByType            map[string]int  `json:"byType"`
	Appointments      []CalendarEvent `json:"appointments"`
}

type BookingEventType string

const (
	BookingEventCreated     BookingEventType = "booking.created"
	BookingEventCancelled   BookingEventType = "booking.cancelled"
	BookingEventRescheduled BookingEventType = "booking.rescheduled"
)

// BookingEvent is published after a booking changes state.
type BookingEvent struct {
	Type       BookingEventType `json:"type"`
	BookingID  string           `json:"bookingId"`
	Booking    *Booking         `json:"booking,omitempty"`
	PreviousID string           `json:"previousBookingId,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}
