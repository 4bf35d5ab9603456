package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const ClockLayout = "15:04"

// Clock is a wall-clock time of day stored as minutes since midnight.
type Clock int

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses a 24-hour HH:MM string.
func ParseClock(str string) (Clock, error) {
	parsedTime, err := time.Parse(ClockLayout, str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse time: %v", err)
	}
	return NewClock(parsedTime.Hour(), parsedTime.Minute()), nil
}

// MustParseClock is for static tables only.
func MustParseClock(str string) Clock {
	c, err := ParseClock(str)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the wall-clock part of t in its own location.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// On combines the clock with the calendar day of date, in date's location.
func (c Clock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to parse time: %v", err)
	}
	parsed, err := ParseClock(str)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}
