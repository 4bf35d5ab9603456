package utils

import (
	"time"
)

// StartNextDay returns midnight of the day after t, keeping t's location.
func StartNextDay(t time.Time) time.Time {
	newDate := t.AddDate(0, 0, 1)
	return time.Date(newDate.Year(), newDate.Month(), newDate.Day(), 0, 0, 0, 0, newDate.Location())
}

func StartCurrentDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysInRange returns the midnight of every calendar day from start to end inclusive.
func DaysInRange(start, end time.Time) []time.Time {
	days := make([]time.Time, 0)
	last := StartCurrentDay(end.In(start.Location()))
	for day := StartCurrentDay(start); !day.After(last); day = StartNextDay(day) {
		days = append(days, day)
	}
	return days
}
