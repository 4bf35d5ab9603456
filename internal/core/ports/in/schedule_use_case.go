package in

import (
	"context"
	"time"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

type ScheduleUseCase interface {
	WorkingHours() domain.WorkingHoursTable
	Location() *time.Location
	GetScheduleSummary(ctx context.Context, date time.Time) (*domain.ScheduleSummary, error)
}

type AppointmentTypeUseCase interface {
	Get(id string) (*domain.AppointmentType, bool)
	List() []domain.AppointmentType
	Summary() domain.AppointmentTypesSummary
	FilterByDuration(minDuration, maxDuration *int) []domain.AppointmentType
	Recommend(availableMinutes int) []domain.AppointmentTypeRecommendation
}
