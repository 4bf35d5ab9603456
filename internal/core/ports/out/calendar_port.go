package out

import (
	"context"
	"time"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

// CalendarPort is the remote calendar holding the doctor's committed events.
// Implementations return *domain.ExternalError on transport or auth failures.
type CalendarPort interface {
	GetScheduledEvents(ctx context.Context, startTime, endTime time.Time) ([]domain.CalendarEvent, error)
	CancelEvent(ctx context.Context, eventID string, reason string) error
}
