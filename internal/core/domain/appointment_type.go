package domain

type AppointmentType struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration"`
	Description     string `json:"description"`
}

// DefaultAppointmentTypes is the seed catalog, in declaration order.
func DefaultAppointmentTypes() []AppointmentType {
	return []AppointmentType{
		{
			ID:              "general_consultation",
			Name:            "General Consultation",
			DurationMinutes: 30,
			Description:     "Standard medical consultation",
		},
		{
			ID:              "follow_up",
			Name:            "Follow-up",
			DurationMinutes: 15,
			Description:     "Follow-up appointment for previous consultation",
		},
		{
			ID:              "physical_exam",
			Name:            "Physical Exam",
			DurationMinutes: 45,
			Description:     "Comprehensive physical examination",
		},
		{
			ID:              "specialist_consultation",
			Name:            "Specialist Consultation",
			DurationMinutes: 60,
			Description:     "Detailed consultation with specialist",
		},
	}
}

type AppointmentTypesSummary struct {
	TotalTypes       int               `json:"totalTypes"`
	ShortestDuration int               `json:"shortestDuration"`
	LongestDuration  int               `json:"longestDuration"`
	AverageDuration  float64           `json:"averageDuration"`
	Types            []AppointmentType `json:"types"`
}

type AppointmentTypeRecommendation struct {
	Type          AppointmentType `json:"type"`
	Fits          bool            `json:"fits"`
	TimeRemaining int             `json:"timeRemaining"`
}
