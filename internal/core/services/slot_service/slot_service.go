package slot_service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
	"github.com/suchimauz/doctor-appointment-booking/internal/utils"
)

const (
	DefaultIntervalMinutes = 15

	// NextSlotSearchDays is how far ahead GetNextAvailableSlot looks.
	NextSlotSearchDays = 30
)

// ScheduleSource is the part of the schedule service the engine reads.
type ScheduleSource interface {
	Location() *time.Location
	StartOfDay(date time.Time) time.Time
	WorkingDay(date time.Time) (domain.WorkingDay, bool)
	GetBusyIntervals(ctx context.Context, date time.Time) ([]domain.BusyInterval, error)
}

type TypeCatalog interface {
	Get(id string) (*domain.AppointmentType, bool)
}

type SlotService struct {
	schedule        ScheduleSource
	catalog         TypeCatalog
	intervalMinutes int
	workers         int
	logger          out.LoggerPort
	now             func() time.Time
}

func NewSlotService(
	schedule ScheduleSource,
	catalog TypeCatalog,
	intervalMinutes int,
	workers int,
	logger out.LoggerPort,
) (*SlotService, error) {
	if intervalMinutes <= 0 {
		return nil, domain.NewError(domain.ErrInvalidInterval, "Slot interval must be positive, got %d", intervalMinutes)
	}
	if workers < 1 {
		workers = 1
	}

	return &SlotService{
		schedule:        schedule,
		catalog:         catalog,
		intervalMinutes: intervalMinutes,
		workers:         workers,
		logger:          logger.WithModule("SlotService"),
		now:             time.Now,
	}, nil
}

// GenerateCandidateGrid returns every start workStart + k*interval on date's
// calendar day that is strictly before workEnd.
func GenerateCandidateGrid(workStart, workEnd json_types.Clock, date time.Time, intervalMinutes int) ([]time.Time, error) {
	if intervalMinutes <= 0 {
		return nil, domain.NewError(domain.ErrInvalidInterval, "Slot interval must be positive, got %d", intervalMinutes)
	}

	grid := make([]time.Time, 0)
	for clock := workStart; clock < workEnd; clock += json_types.Clock(intervalMinutes) {
		grid = append(grid, clock.On(date))
	}
	return grid, nil
}

// IsAvailable reports whether [start, start+duration) overlaps none of busy.
func IsAvailable(start time.Time, durationMinutes int, busy []domain.BusyInterval) bool {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	for _, interval := range busy {
		if interval.Overlaps(start, end) {
			return false
		}
	}
	return true
}

func withoutBooking(busy []domain.BusyInterval, bookingID string) []domain.BusyInterval {
	kept := make([]domain.BusyInterval, 0, len(busy))
	for _, interval := range busy {
		if interval.BookingID != bookingID {
			kept = append(kept, interval)
		}
	}
	return kept
}

func (s *SlotService) resolveType(appointmentTypeID string) (*domain.AppointmentType, error) {
	appointmentType, ok := s.catalog.Get(appointmentTypeID)
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidAppointmentType, "Invalid appointment type: %s", appointmentTypeID)
	}
	return appointmentType, nil
}

func (s *SlotService) GetAvailableSlots(ctx context.Context, date time.Time, appointmentTypeID string) (*domain.AvailabilityResult, error) {
	appointmentType, err := s.resolveType(appointmentTypeID)
	if err != nil {
		return nil, err
	}
	return s.availableSlots(ctx, s.schedule.StartOfDay(date), appointmentType, "")
}

// GetAvailableSlotsIgnoring computes the day as if the stored booking
// ignoreBookingID did not exist.
func (s *SlotService) GetAvailableSlotsIgnoring(ctx context.Context, date time.Time, appointmentTypeID string, ignoreBookingID string) (*domain.AvailabilityResult, error) {
	appointmentType, err := s.resolveType(appointmentTypeID)
	if err != nil {
		return nil, err
	}
	return s.availableSlots(ctx, s.schedule.StartOfDay(date), appointmentType, ignoreBookingID)
}

func (s *SlotService) availableSlots(ctx context.Context, day time.Time, appointmentType *domain.AppointmentType, ignoreBookingID string) (*domain.AvailabilityResult, error) {
	result := &domain.AvailabilityResult{
		Date:                json_types.NewDate(day),
		DayOfWeek:           day.Weekday().String(),
		AppointmentTypeID:   appointmentType.ID,
		AppointmentTypeName: appointmentType.Name,
		DurationMinutes:     appointmentType.DurationMinutes,
		Slots:               make([]domain.Slot, 0),
	}

	workingDay, ok := s.schedule.WorkingDay(day)
	if !ok {
		result.Message = "Not a working day"
		return result, nil
	}
	result.IsWorkingDay = true

	grid, err := GenerateCandidateGrid(*workingDay.Start, *workingDay.End, day, s.intervalMinutes)
	if err != nil {
		return nil, err
	}

	busy, err := s.schedule.GetBusyIntervals(ctx, day)
	if err != nil {
		s.logger.Error("slots.available.fetch_failed", out.LogFields{
			"date":              result.Date.String(),
			"appointmentTypeId": appointmentType.ID,
			"error":             err.Error(),
		})
		return nil, err
	}
	if ignoreBookingID != "" {
		busy = withoutBooking(busy, ignoreBookingID)
	}

	duration := time.Duration(appointmentType.DurationMinutes) * time.Minute
	closing := workingDay.End.On(day)
	for _, start := range grid {
		end := start.Add(duration)
		if end.After(closing) {
			continue
		}
		if !IsAvailable(start, appointmentType.DurationMinutes, busy) {
			continue
		}
		result.Slots = append(result.Slots, domain.Slot{Start: start, End: end})
	}
	result.TotalSlots = len(result.Slots)

	s.logger.Debug("slots.available.computed", out.LogFields{
		"date":              result.Date.String(),
		"appointmentTypeId": appointmentType.ID,
		"candidates":        len(grid),
		"busy":              len(busy),
		"slots":             result.TotalSlots,
	})

	return result, nil
}

// GetAvailableSlotsRange computes every day from startDate to endDate inclusive
// and returns, in calendar order, the days that have at least one slot.
func (s *SlotService) GetAvailableSlotsRange(ctx context.Context, startDate, endDate time.Time, appointmentTypeID string) ([]domain.AvailabilityResult, error) {
	appointmentType, err := s.resolveType(appointmentTypeID)
	if err != nil {
		return nil, err
	}

	first := s.schedule.StartOfDay(startDate)
	last := s.schedule.StartOfDay(endDate)
	if last.Before(first) {
		return nil, domain.NewError(domain.ErrInvalidDateRange, "End date %s is before start date %s",
			last.Format(json_types.DateLayout), first.Format(json_types.DateLayout))
	}

	days := utils.DaysInRange(first, last)
	results := make([]*domain.AvailabilityResult, len(days))
	errs := make([]error, len(days))

	var wg sync.WaitGroup
	workerPool := make(chan struct{}, s.workers)

	for i, day := range days {
		wg.Add(1)
		workerPool <- struct{}{}

		go func(i int, day time.Time) {
			defer func() {
				<-workerPool
				wg.Done()
			}()
			results[i], errs[i] = s.availableSlots(ctx, day, appointmentType, "")
		}(i, day)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	available := make([]domain.AvailabilityResult, 0)
	for _, result := range results {
		if len(result.Slots) > 0 {
			available = append(available, *result)
		}
	}

	s.logger.Debug("slots.range.computed", out.LogFields{
		"startDate":         first.Format(json_types.DateLayout),
		"endDate":           last.Format(json_types.DateLayout),
		"appointmentTypeId": appointmentType.ID,
		"days":              len(days),
		"availableDays":     len(available),
	})

	return available, nil
}

// GetNextAvailableSlot returns the earliest slot starting at or after from
// within NextSlotSearchDays days. A zero from means now.
func (s *SlotService) GetNextAvailableSlot(ctx context.Context, appointmentTypeID string, from time.Time) (*domain.NextAvailableSlot, error) {
	if from.IsZero() {
		from = s.now()
	}
	from = from.In(s.schedule.Location())

	days, err := s.GetAvailableSlotsRange(ctx, from, from.AddDate(0, 0, NextSlotSearchDays), appointmentTypeID)
	if err != nil {
		return nil, err
	}

	for _, day := range days {
		for _, slot := range day.Slots {
			if slot.Start.Before(from) {
				continue
			}
			date := day.Date
			found := slot
			return &domain.NextAvailableSlot{
				Found:               true,
				Date:                &date,
				Slot:                &found,
				AppointmentTypeName: day.AppointmentTypeName,
				DurationMinutes:     day.DurationMinutes,
			}, nil
		}
	}

	return &domain.NextAvailableSlot{
		Found:   false,
		Message: fmt.Sprintf("No available slots found in the next %d days for %s", NextSlotSearchDays, appointmentTypeID),
	}, nil
}
