package domain

import (
	"fmt"
	"time"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
)

// WorkingDay is the opening window of one weekday. Start and End are nil
// when the day is not available.
type WorkingDay struct {
	Start     *json_types.Clock `json:"start"`
	End       *json_types.Clock `json:"end"`
	Available bool              `json:"available"`
}

func OpenDay(start, end string) WorkingDay {
	s := json_types.MustParseClock(start)
	e := json_types.MustParseClock(end)
	return WorkingDay{Start: &s, End: &e, Available: true}
}

func ClosedDay() WorkingDay {
	return WorkingDay{}
}

// WorkingHoursTable maps every weekday to its working window.
type WorkingHoursTable map[time.Weekday]WorkingDay

func DefaultWorkingHours() WorkingHoursTable {
	return WorkingHoursTable{
		time.Monday:    OpenDay("09:00", "17:00"),
		time.Tuesday:   OpenDay("09:00", "17:00"),
		time.Wednesday: OpenDay("09:00", "17:00"),
		time.Thursday:  OpenDay("09:00", "17:00"),
		time.Friday:    OpenDay("09:00", "17:00"),
		time.Saturday:  OpenDay("10:00", "14:00"),
		time.Sunday:    ClosedDay(),
	}
}

func (t WorkingHoursTable) Validate() error {
	for weekday, day := range t {
		if !day.Available {
			if day.Start != nil || day.End != nil {
				return fmt.Errorf("%w: %s is closed but has hours set", ErrInvalidWorkingHours, weekday)
			}
			continue
		}
		if day.Start == nil || day.End == nil {
			return fmt.Errorf("%w: %s is open without start or end", ErrInvalidWorkingHours, weekday)
		}
		if *day.Start >= *day.End {
			return fmt.Errorf("%w: %s starts at %s but ends at %s", ErrInvalidWorkingHours, weekday, day.Start, day.End)
		}
	}
	return nil
}

// ToNamed keys the table by lower-case weekday name.
func (t WorkingHoursTable) ToNamed() map[string]WorkingDay {
	named := make(map[string]WorkingDay, len(t))
	for weekday, day := range t {
		named[WeekdayName(weekday)] = day
	}
	return named
}

func WeekdayName(weekday time.Weekday) string {
	name := weekday.String()
	return string(name[0]+'a'-'A') + name[1:]
}

type ScheduleSummary struct {
	Date              json_types.Date `json:"date"`
	DayOfWeek         string          `json:"dayOfWeek"`
	WorkingHours      WorkingDay      `json:"workingHours"`
	TotalAppointments int             `json:"totalAppointments"`
	Appointments      []CalendarEvent `json:"appointments"`
}
