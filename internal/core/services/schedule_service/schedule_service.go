package schedule_service

import (
	"context"
	"fmt"
	"time"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
	"github.com/suchimauz/doctor-appointment-booking/internal/utils"
)

// ScheduleService owns the weekly working hours and reads the doctor's
// commitments from the remote calendar and the booking store.
type ScheduleService struct {
	calendarPort out.CalendarPort
	storePort    out.BookingStorePort
	workingHours domain.WorkingHoursTable
	location     *time.Location
	logger       out.LoggerPort
}

// NewScheduleService validates the working hours table. storePort may be nil,
// in which case only calendar events count as busy.
func NewScheduleService(
	calendarPort out.CalendarPort,
	storePort out.BookingStorePort,
	workingHours domain.WorkingHoursTable,
	location *time.Location,
	logger out.LoggerPort,
) (*ScheduleService, error) {
	if err := workingHours.Validate(); err != nil {
		return nil, err
	}
	if location == nil {
		location = time.UTC
	}

	table := make(domain.WorkingHoursTable, len(workingHours))
	for weekday, day := range workingHours {
		table[weekday] = day
	}

	return &ScheduleService{
		calendarPort: calendarPort,
		storePort:    storePort,
		workingHours: table,
		location:     location,
		logger:       logger.WithModule("ScheduleService"),
	}, nil
}

func (s *ScheduleService) Location() *time.Location {
	return s.location
}

func (s *ScheduleService) WorkingHours() domain.WorkingHoursTable {
	table := make(domain.WorkingHoursTable, len(s.workingHours))
	for weekday, day := range s.workingHours {
		table[weekday] = day
	}
	return table
}

// WorkingDay returns the window of date's weekday in the clinic timezone and
// whether the doctor works that day.
func (s *ScheduleService) WorkingDay(date time.Time) (domain.WorkingDay, bool) {
	day, exists := s.workingHours[date.In(s.location).Weekday()]
	if !exists || !day.Available {
		return domain.WorkingDay{}, false
	}
	return day, true
}

func (s *ScheduleService) IsWorkingDay(date time.Time) bool {
	_, ok := s.WorkingDay(date)
	return ok
}

// StartOfDay returns midnight of date's calendar day in the clinic timezone.
func (s *ScheduleService) StartOfDay(date time.Time) time.Time {
	return utils.StartCurrentDay(date.In(s.location))
}

// GetExistingAppointments returns every calendar event between startTime and endTime.
// A calendar failure is logged in full and surfaces as ErrExternalFetchFailure
// with a generic message. It never reads as "no appointments".
func (s *ScheduleService) GetExistingAppointments(ctx context.Context, startTime, endTime time.Time) ([]domain.CalendarEvent, error) {
	events, err := s.calendarPort.GetScheduledEvents(ctx, startTime, endTime)
	if err != nil {
		s.logger.Error("schedule.appointments.fetch_failed", out.LogFields{
			"startTime": startTime,
			"endTime":   endTime,
			"error":     err.Error(),
		})
		return nil, domain.NewError(domain.ErrExternalFetchFailure, "Failed to fetch calendar events")
	}

	s.logger.Debug("schedule.appointments.fetched", out.LogFields{
		"startTime": startTime,
		"endTime":   endTime,
		"count":     len(events),
	})

	return events, nil
}

// GetBusyIntervals returns the half-open intervals the doctor is committed to on
// date's calendar day. Instants are converted into the clinic timezone.
func (s *ScheduleService) GetBusyIntervals(ctx context.Context, date time.Time) ([]domain.BusyInterval, error) {
	dayStart := s.StartOfDay(date)
	dayEnd := utils.StartNextDay(dayStart)

	events, err := s.GetExistingAppointments(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	busy := make([]domain.BusyInterval, 0, len(events))
	for _, event := range events {
		if event.Status != domain.CalendarEventStatusActive {
			continue
		}
		busy = append(busy, domain.BusyInterval{
			Start: event.StartTime.In(s.location),
			End:   event.EndTime.In(s.location),
		})
	}

	if s.storePort != nil {
		bookings, err := s.storePort.ListByDate(ctx, dayStart)
		if err != nil {
			s.logger.Error("schedule.bookings.fetch_failed", out.LogFields{
				"date":  dayStart.Format(json_types.DateLayout),
				"error": err.Error(),
			})
			return nil, fmt.Errorf("schedule.bookings.fetch_failed: %w", err)
		}
		for _, booking := range bookings {
			if !booking.IsScheduled() {
				continue
			}
			interval := booking.Interval()
			busy = append(busy, domain.BusyInterval{
				Start:     interval.Start.In(s.location),
				End:       interval.End.In(s.location),
				BookingID: interval.BookingID,
			})
		}
	}

	return busy, nil
}

func (s *ScheduleService) GetScheduleSummary(ctx context.Context, date time.Time) (*domain.ScheduleSummary, error) {
	dayStart := s.StartOfDay(date)

	appointments, err := s.GetExistingAppointments(ctx, dayStart, utils.StartNextDay(dayStart))
	if err != nil {
		return nil, err
	}

	workingDay, _ := s.WorkingDay(dayStart)

	return &domain.ScheduleSummary{
		Date:              json_types.NewDate(dayStart),
		DayOfWeek:         dayStart.Weekday().String(),
		WorkingHours:      workingDay,
		TotalAppointments: len(appointments),
		Appointments:      appointments,
	}, nil
}
