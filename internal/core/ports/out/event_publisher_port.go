package out

import (
	"context"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

type EventPublisherPort interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
}
