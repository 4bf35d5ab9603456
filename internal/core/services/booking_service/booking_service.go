package booking_service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/in"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
	"github.com/suchimauz/doctor-appointment-booking/internal/utils"
)

const summaryDefaultDays = 30

type TypeCatalog interface {
	Get(id string) (*domain.AppointmentType, bool)
}

// ScheduleReader is the part of the schedule service bookings depend on.
type ScheduleReader interface {
	Location() *time.Location
	GetExistingAppointments(ctx context.Context, startTime, endTime time.Time) ([]domain.CalendarEvent, error)
}

type BookingService struct {
	catalog   TypeCatalog
	slots     in.SlotUseCase
	schedule  ScheduleReader
	calendar  out.CalendarPort
	store     out.BookingStorePort
	publisher out.EventPublisherPort
	logger    out.LoggerPort
	now       func() time.Time
}

// NewBookingService wires the booking flow. publisher may be nil to disable
// booking events.
func NewBookingService(
	catalog TypeCatalog,
	slots in.SlotUseCase,
	schedule ScheduleReader,
	calendar out.CalendarPort,
	store out.BookingStorePort,
	publisher out.EventPublisherPort,
	logger out.LoggerPort,
) *BookingService {
	return &BookingService{
		catalog:   catalog,
		slots:     slots,
		schedule:  schedule,
		calendar:  calendar,
		store:     store,
		publisher: publisher,
		logger:    logger.WithModule("BookingService"),
		now:       time.Now,
	}
}

type validatedRequest struct {
	appointmentType *domain.AppointmentType
	date            time.Time
	clock           json_types.Clock
	patient         domain.Patient
	notes           string
}

// Validate checks a booking request and stops at the first violation.
func (s *BookingService) Validate(req domain.BookingRequest) error {
	_, err := s.validate(req)
	return err
}

func (s *BookingService) validate(req domain.BookingRequest) (*validatedRequest, error) {
	required := []struct {
		name  string
		value string
	}{
		{"appointment_type", req.AppointmentTypeID},
		{"date", req.Date},
		{"time", req.Time},
		{"patient_name", req.PatientName},
		{"patient_email", req.PatientEmail},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return nil, domain.NewError(domain.ErrMissingRequiredField, "Missing required field: %s", field.name)
		}
	}

	appointmentType, ok := s.catalog.Get(req.AppointmentTypeID)
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidAppointmentType, "Invalid appointment type: %s", req.AppointmentTypeID)
	}

	date, err := json_types.ParseDate(req.Date, s.schedule.Location())
	if err != nil {
		return nil, domain.NewError(domain.ErrMalformedDate, "Invalid date format. Use YYYY-MM-DD")
	}

	clock, err := json_types.ParseClock(req.Time)
	if err != nil {
		return nil, domain.NewError(domain.ErrMalformedTime, "Invalid time format. Use HH:MM")
	}

	// Only the presence of "@" is checked.
	if !strings.Contains(req.PatientEmail, "@") {
		return nil, domain.NewError(domain.ErrMalformedEmail, "Invalid email format")
	}

	return &validatedRequest{
		appointmentType: appointmentType,
		date:            date,
		clock:           clock,
		patient: domain.Patient{
			Name:  req.PatientName,
			Email: req.PatientEmail,
			Phone: req.PatientPhone,
		},
		notes: req.Notes,
	}, nil
}

// CheckSlotAvailability recomputes the day's slots and confirms one starts at clock.
// It does not reserve anything.
func (s *BookingService) CheckSlotAvailability(ctx context.Context, appointmentTypeID string, date time.Time, clock json_types.Clock) error {
	result, err := s.slots.GetAvailableSlots(ctx, date, appointmentTypeID)
	if err != nil {
		return err
	}
	return slotOffered(result, clock)
}

func slotOffered(result *domain.AvailabilityResult, clock json_types.Clock) error {
	if len(result.Slots) == 0 {
		return domain.NewError(domain.ErrSlotUnavailable, "No available slots on %s", result.Date)
	}
	if !result.HasSlotAt(clock) {
		return domain.NewError(domain.ErrSlotUnavailable, "Time slot %s is not available on %s", clock, result.Date)
	}
	return nil
}

func (s *BookingService) CreateAppointment(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	validated, err := s.validate(req)
	if err != nil {
		s.logger.Info("booking.create.invalid", out.LogFields{
			"appointmentTypeId": req.AppointmentTypeID,
			"date":              req.Date,
			"time":              req.Time,
			"error":             err.Error(),
		})
		return nil, err
	}

	booking, err := s.book(ctx, validated)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.BookingEvent{
		Type:       domain.BookingEventCreated,
		BookingID:  booking.ID.String(),
		Booking:    booking,
		OccurredAt: booking.CreatedAt,
	})

	return booking, nil
}

// book rechecks the slot and reserves it in the store. The store rejects a
// reservation that lost a race with a concurrent booking.
func (s *BookingService) book(ctx context.Context, validated *validatedRequest) (*domain.Booking, error) {
	appointmentType := validated.appointmentType

	if err := s.CheckSlotAvailability(ctx, appointmentType.ID, validated.date, validated.clock); err != nil {
		s.logUnavailable(validated, err)
		return nil, err
	}

	booking := s.newBooking(validated)
	if err := s.store.Reserve(ctx, booking); err != nil {
		s.logger.Warn("booking.create.reserve_failed", out.LogFields{
			"bookingId": booking.ID,
			"date":      booking.Date.String(),
			"time":      booking.StartTime.String(),
			"error":     err.Error(),
		})
		return nil, err
	}

	s.logger.Info("booking.create.success", out.LogFields{
		"bookingId":         booking.ID,
		"appointmentTypeId": booking.AppointmentTypeID,
		"date":              booking.Date.String(),
		"time":              booking.StartTime.String(),
	})

	return &booking, nil
}

func (s *BookingService) newBooking(validated *validatedRequest) domain.Booking {
	appointmentType := validated.appointmentType
	startsAt := validated.clock.On(validated.date)
	endsAt := startsAt.Add(time.Duration(appointmentType.DurationMinutes) * time.Minute)

	return domain.Booking{
		ID:                  uuid.New(),
		AppointmentTypeID:   appointmentType.ID,
		AppointmentTypeName: appointmentType.Name,
		DurationMinutes:     appointmentType.DurationMinutes,
		Date:                json_types.NewDate(validated.date),
		StartTime:           validated.clock,
		EndTime:             json_types.ClockOf(endsAt),
		StartsAt:            startsAt,
		EndsAt:              endsAt,
		Patient:             validated.patient,
		Notes:               validated.notes,
		Status:              domain.BookingStatusScheduled,
		CreatedAt:           s.now(),
	}
}

func (s *BookingService) logUnavailable(validated *validatedRequest, err error) {
	s.logger.Info("booking.create.unavailable", out.LogFields{
		"appointmentTypeId": validated.appointmentType.ID,
		"date":              validated.date.Format(json_types.DateLayout),
		"time":              validated.clock.String(),
		"error":             err.Error(),
	})
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	return s.store.Get(ctx, bookingID)
}

// CancelAppointment cancels a booking made through this service, or passes
// any other id on to the remote calendar.
func (s *BookingService) CancelAppointment(ctx context.Context, bookingID string, reason string) (*domain.Cancellation, error) {
	if strings.TrimSpace(bookingID) == "" {
		return nil, domain.NewError(domain.ErrMissingRequiredField, "Missing required field: booking_id")
	}

	cancellation := &domain.Cancellation{
		BookingID:          bookingID,
		CancellationReason: reason,
		Message:            "Appointment cancelled successfully",
	}

	if id, err := uuid.Parse(bookingID); err == nil {
		booking, err := s.store.Cancel(ctx, id, reason, s.now())
		switch {
		case err == nil:
			s.logger.Info("booking.cancel.success", out.LogFields{
				"bookingId": bookingID,
				"source":    "store",
			})
			s.publish(ctx, domain.BookingEvent{
				Type:       domain.BookingEventCancelled,
				BookingID:  bookingID,
				Booking:    booking,
				Reason:     reason,
				OccurredAt: *booking.CancelledAt,
			})
			return cancellation, nil
		case errors.Is(err, domain.ErrBookingAlreadyCancelled):
			return nil, err
		case !errors.Is(err, domain.ErrBookingNotFound):
			s.logger.Error("booking.cancel.store_failed", out.LogFields{
				"bookingId": bookingID,
				"error":     err.Error(),
			})
			return nil, domain.NewError(domain.ErrCancelFailed, "Failed to cancel appointment %s", bookingID)
		}
	}

	if err := s.calendar.CancelEvent(ctx, bookingID, reason); err != nil {
		s.logger.Error("booking.cancel.calendar_failed", out.LogFields{
			"bookingId": bookingID,
			"error":     err.Error(),
		})
		return nil, domain.NewError(domain.ErrCancelFailed, "Failed to cancel appointment %s", bookingID)
	}

	s.logger.Info("booking.cancel.success", out.LogFields{
		"bookingId": bookingID,
		"source":    "calendar",
	})
	s.publish(ctx, domain.BookingEvent{
		Type:       domain.BookingEventCancelled,
		BookingID:  bookingID,
		Reason:     reason,
		OccurredAt: s.now(),
	})

	return cancellation, nil
}

// RescheduleAppointment moves a stored booking to a new date and time. The new
// slot goes through the same checks as a fresh booking, with the old booking's
// own interval counted as free. The store swaps both bookings in one step, so a
// failure leaves the old booking scheduled.
func (s *BookingService) RescheduleAppointment(ctx context.Context, bookingID string, newDate string, newTime string) (*domain.Reschedule, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, domain.NewError(domain.ErrBookingNotFound, "Booking %s not found", bookingID)
	}

	old, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !old.IsScheduled() {
		return nil, domain.NewError(domain.ErrBookingAlreadyCancelled, "Booking %s is already cancelled", bookingID)
	}

	validated, err := s.validate(domain.BookingRequest{
		AppointmentTypeID: old.AppointmentTypeID,
		Date:              newDate,
		Time:              newTime,
		PatientName:       old.Patient.Name,
		PatientEmail:      old.Patient.Email,
		PatientPhone:      old.Patient.Phone,
		Notes:             old.Notes,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.slots.GetAvailableSlotsIgnoring(ctx, validated.date, old.AppointmentTypeID, old.ID.String())
	if err != nil {
		return nil, err
	}
	if err := slotOffered(result, validated.clock); err != nil {
		s.logUnavailable(validated, err)
		return nil, err
	}

	booking := s.newBooking(validated)
	retired, err := s.store.Replace(ctx, id, "rescheduled", s.now(), booking)
	if err != nil {
		s.logger.Warn("booking.reschedule.replace_failed", out.LogFields{
			"oldBookingId": bookingID,
			"newBookingId": booking.ID,
			"date":         booking.Date.String(),
			"time":         booking.StartTime.String(),
			"error":        err.Error(),
		})
		return nil, err
	}

	s.logger.Info("booking.reschedule.success", out.LogFields{
		"oldBookingId": bookingID,
		"newBookingId": booking.ID,
		"date":         booking.Date.String(),
		"time":         booking.StartTime.String(),
	})
	s.publish(ctx, domain.BookingEvent{
		Type:       domain.BookingEventRescheduled,
		BookingID:  booking.ID.String(),
		Booking:    &booking,
		PreviousID: retired.ID.String(),
		OccurredAt: booking.CreatedAt,
	})

	return &domain.Reschedule{
		OldBookingID: bookingID,
		NewBookingID: booking.ID.String(),
		NewDate:      booking.Date,
		NewTime:      booking.StartTime,
		Message:      "Appointment rescheduled successfully",
	}, nil
}

// GetBookingSummary groups the calendar appointments and stored bookings of a
// range by name. A zero startDate means now, a zero endDate 30 days after start.
func (s *BookingService) GetBookingSummary(ctx context.Context, startDate, endDate time.Time) (*domain.BookingSummary, error) {
	if startDate.IsZero() {
		startDate = s.now()
	}
	if endDate.IsZero() {
		endDate = startDate.AddDate(0, 0, summaryDefaultDays)
	}
	if endDate.Before(startDate) {
		return nil, domain.NewError(domain.ErrInvalidDateRange, "End date %s is before start date %s",
			endDate.Format(json_types.DateLayout), startDate.Format(json_types.DateLayout))
	}

	appointments, err := s.schedule.GetExistingAppointments(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	location := s.schedule.Location()
	for _, day := range utils.DaysInRange(startDate.In(location), endDate.In(location)) {
		bookings, err := s.store.ListByDate(ctx, day)
		if err != nil {
			return nil, err
		}
		for _, booking := range bookings {
			if booking.StartsAt.Before(startDate) || !booking.StartsAt.Before(endDate) {
				continue
			}
			appointments = append(appointments, domain.CalendarEvent{
				ID:        booking.ID.String(),
				Name:      booking.AppointmentTypeName,
				StartTime: booking.StartsAt,
				EndTime:   booking.EndsAt,
				Status:    domain.CalendarEventStatusActive,
			})
		}
	}

	summary := &domain.BookingSummary{
		TotalAppointments: len(appointments),
		ByType:            make(map[string]int),
		Appointments:      appointments,
	}
	for _, appointment := range appointments {
		name := appointment.Name
		if name == "" {
			name = "Unknown"
		}
		summary.ByType[name]++
	}

	return summary, nil
}

func (s *BookingService) publish(ctx context.Context, event domain.BookingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("booking.event.publish_failed", out.LogFields{
			"type":      event.Type,
			"bookingId": event.BookingID,
			"error":     err.Error(),
		})
	}
}
