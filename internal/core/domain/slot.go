package domain

import (
	"encoding/json"
	"time"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
)

// Slot is a bookable candidate with End = Start + duration.
type Slot struct {
	Start time.Time
	End   time.Time
}

func (s Slot) StartClock() json_types.Clock {
	return json_types.ClockOf(s.Start)
}

func (s Slot) EndClock() json_types.Clock {
	return json_types.ClockOf(s.End)
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		DateTime  string `json:"datetime"`
	}{
		StartTime: s.StartClock().String(),
		EndTime:   s.EndClock().String(),
		DateTime:  s.Start.Format(time.RFC3339),
	})
}

type AvailabilityResult struct {
	Date                json_types.Date `json:"date"`
	DayOfWeek           string          `json:"dayOfWeek"`
	AppointmentTypeID   string          `json:"appointmentTypeId"`
	AppointmentTypeName string          `json:"appointmentType"`
	DurationMinutes     int             `json:"duration"`
	Slots               []Slot          `json:"availableSlots"`
	TotalSlots          int             `json:"totalSlots"`
	IsWorkingDay        bool            `json:"isWorkingDay"`
	Message             string          `json:"message,omitempty"`
}

// HasSlotAt reports whether a slot starting at clock is in the result.
func (r *AvailabilityResult) HasSlotAt(clock json_types.Clock) bool {
	for _, slot := range r.Slots {
		if slot.StartClock() == clock {
			return true
		}
	}
	return false
}

type NextAvailableSlot struct {
	Found               bool             `json:"found"`
	Date                *json_types.Date `json:"date,omitempty"`
	Slot                *Slot            `json:"slot,omitempty"`
	AppointmentTypeName string           `json:"appointmentType,omitempty"`
	DurationMinutes     int              `json:"duration,omitempty"`
	Message             string           `json:"message,omitempty"`
}
