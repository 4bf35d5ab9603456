package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date and returns midnight in location.
func ParseDate(str string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	parsedDate, err := time.ParseInLocation(DateLayout, str, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date: %v", err)
	}
	return parsedDate, nil
}

// Date is a calendar date without a clock component.
type Date struct {
	Date time.Time
}

func NewDate(t time.Time) Date {
	return Date{Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

func (t Date) String() string {
	return t.Date.Format(DateLayout)
}

func (t *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to parse date: %v", err)
	}

	parsedDate, err := ParseDate(str, time.UTC)
	if err != nil {
		return err
	}

	*t = Date{Date: parsedDate}
	return nil
}

func (t Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format(DateLayout))
}
