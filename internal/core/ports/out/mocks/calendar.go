// Package mocks holds in-memory doubles of the out ports for tests.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

// Calendar serves a fixed event list. Events are filtered by start time the
// same way the remote calendar filters them.
type Calendar struct {
	mu        sync.Mutex
	events    []domain.CalendarEvent
	fetchErr  error
	cancelErr error
	calls     int
	cancelled map[string]string
}

func NewCalendar(events ...domain.CalendarEvent) *Calendar {
	return &Calendar{events: events, cancelled: make(map[string]string)}
}

func (c *Calendar) AddEvent(event domain.CalendarEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *Calendar) FailFetch(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchErr = err
}

func (c *Calendar) FailCancel(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelErr = err
}

func (c *Calendar) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Cancelled returns the reason an event was cancelled with.
func (c *Calendar) Cancelled(eventID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reason, ok := c.cancelled[eventID]
	return reason, ok
}

func (c *Calendar) GetScheduledEvents(_ context.Context, startTime, endTime time.Time) ([]domain.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}

	events := make([]domain.CalendarEvent, 0)
	for _, event := range c.events {
		if event.StartTime.Before(startTime) || !event.StartTime.Before(endTime) {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Calendar) CancelEvent(_ context.Context, eventID string, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelErr != nil {
		return c.cancelErr
	}
	c.cancelled[eventID] = reason
	return nil
}
