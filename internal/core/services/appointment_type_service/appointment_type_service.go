package appointment_type_service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
)

// AppointmentTypeService is the read-only catalog of appointment types.
type AppointmentTypeService struct {
	types []domain.AppointmentType
	byID  map[string]int
}

// NewAppointmentTypeService validates the seed and freezes it. The seed must be
// non-empty with unique ids and positive durations.
func NewAppointmentTypeService(seed []domain.AppointmentType) (*AppointmentTypeService, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: no appointment types", domain.ErrInvalidCatalog)
	}

	types := make([]domain.AppointmentType, len(seed))
	copy(types, seed)

	byID := make(map[string]int, len(types))
	for i, t := range types {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: type #%d has no id", domain.ErrInvalidCatalog, i)
		}
		if _, exists := byID[t.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate id %q", domain.ErrInvalidCatalog, t.ID)
		}
		if t.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: %q has non-positive duration %d", domain.ErrInvalidCatalog, t.ID, t.DurationMinutes)
		}
		byID[t.ID] = i
	}

	return &AppointmentTypeService{types: types, byID: byID}, nil
}

func (s *AppointmentTypeService) Get(id string) (*domain.AppointmentType, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	t := s.types[i]
	return &t, true
}

func (s *AppointmentTypeService) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *AppointmentTypeService) Duration(id string) (int, bool) {
	t, ok := s.Get(id)
	if !ok {
		return 0, false
	}
	return t.DurationMinutes, true
}

// List returns the types in declaration order.
func (s *AppointmentTypeService) List() []domain.AppointmentType {
	types := make([]domain.AppointmentType, len(s.types))
	copy(types, s.types)
	return types
}

func (s *AppointmentTypeService) Summary() domain.AppointmentTypesSummary {
	types := s.List()
	summary := domain.AppointmentTypesSummary{
		TotalTypes:       len(types),
		ShortestDuration: types[0].DurationMinutes,
		LongestDuration:  types[0].DurationMinutes,
		Types:            types,
	}

	total := 0
	for _, t := range types {
		total += t.DurationMinutes
		if t.DurationMinutes < summary.ShortestDuration {
			summary.ShortestDuration = t.DurationMinutes
		}
		if t.DurationMinutes > summary.LongestDuration {
			summary.LongestDuration = t.DurationMinutes
		}
	}
	summary.AverageDuration = float64(total) / float64(len(types))

	return summary
}

// FilterByDuration keeps types whose duration lies in [minDuration, maxDuration].
// A nil bound leaves that side open.
func (s *AppointmentTypeService) FilterByDuration(minDuration, maxDuration *int) []domain.AppointmentType {
	filtered := make([]domain.AppointmentType, 0, len(s.types))
	for _, t := range s.types {
		if minDuration != nil && t.DurationMinutes < *minDuration {
			continue
		}
		if maxDuration != nil && t.DurationMinutes > *maxDuration {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// Recommend lists the types that fit into availableMinutes, longest first.
func (s *AppointmentTypeService) Recommend(availableMinutes int) []domain.AppointmentTypeRecommendation {
	recommendations := make([]domain.AppointmentTypeRecommendation, 0)
	for _, t := range s.types {
		if t.DurationMinutes <= availableMinutes {
			recommendations = append(recommendations, domain.AppointmentTypeRecommendation{
				Type:          t,
				Fits:          true,
				TimeRemaining: availableMinutes - t.DurationMinutes,
			})
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Type.DurationMinutes > recommendations[j].Type.DurationMinutes
	})

	return recommendations
}

// Table renders the catalog as a fixed-width text table.
func (s *AppointmentTypeService) Table() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %-15s %-50s\n", "Type", "Duration", "Description")
	b.WriteString(strings.Repeat("-", 95))
	for _, t := range s.types {
		fmt.Fprintf(&b, "\n%-30s %-15s %-50s", t.Name, fmt.Sprintf("%d minutes", t.DurationMinutes), t.Description)
	}
	return b.String()
}
