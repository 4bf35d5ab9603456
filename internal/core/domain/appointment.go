package domain

import "time"

type CalendarEventStatus string

const (
	CalendarEventStatusActive   CalendarEventStatus = "active"
	CalendarEventStatusCanceled CalendarEventStatus = "canceled"
)

// CalendarEvent is an appointment held by the remote calendar.
type CalendarEvent struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	StartTime time.Time           `json:"startTime"`
	EndTime   time.Time           `json:"endTime"`
	Status    CalendarEventStatus `json:"status"`
	Location  string              `json:"location,omitempty"`
}

// BusyInterval is a half-open [Start, End) range the doctor is committed to.
// BookingID is set when the interval comes from a locally stored booking.
type BusyInterval struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	BookingID string    `json:"bookingId,omitempty"`
}

func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}
