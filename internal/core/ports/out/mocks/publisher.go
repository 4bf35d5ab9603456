package mocks

import (
	"context"
	"sync"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

// Publisher records published booking events.
type Publisher struct {
	mu     sync.Mutex
	events []domain.BookingEvent
	err    error
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *Publisher) Events() []domain.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	events := make([]domain.BookingEvent, len(p.events))
	copy(events, p.events)
	return events
}

func (p *Publisher) Publish(_ context.Context, event domain.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}
