package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/doctor-appointment-booking/internal/adapters/out/store"
	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out/mocks"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/services/appointment_type_service"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/services/booking_service"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/services/schedule_service"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/services/slot_service"
)

type testServer struct {
	router   *gin.Engine
	calendar *mocks.Calendar
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := out.NopLogger()
	cfg := &config.Config{}
	cfg.App.Version = "test"
	cfg.Auth.BasicClients = []config.ConfigBasicClient{{Username: "clinic", Password: "s3cret"}}

	calendar := mocks.NewCalendar()
	bookings, err := store.NewMemoryStore(16, logger)
	require.NoError(t, err)
	schedule, err := schedule_service.NewScheduleService(calendar, bookings, domain.DefaultWorkingHours(), time.UTC, logger)
	require.NoError(t, err)
	catalog, err := appointment_type_service.NewAppointmentTypeService(domain.DefaultAppointmentTypes())
	require.NoError(t, err)
	slots, err := slot_service.NewSlotService(schedule, catalog, slot_service.DefaultIntervalMinutes, 2, logger)
	require.NoError(t, err)
	booking := booking_service.NewBookingService(catalog, slots, schedule, calendar, bookings, nil, logger)

	router := NewRouter(cfg, logger,
		NewAppointmentTypeController(catalog, logger),
		NewScheduleController(schedule, logger),
		NewSlotController(slots, time.UTC, logger),
		NewBookingController(booking, time.UTC, logger),
	)

	return &testServer{router: router, calendar: calendar}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("clinic", "s3cret")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func bookingBody(date, clock, email string) domain.BookingRequest {
	return domain.BookingRequest{
		AppointmentTypeID: "general_consultation",
		Date:              date,
		Time:              clock,
		PatientName:       "Jane Doe",
		PatientEmail:      email,
	}
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresBasicAuth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointment-types", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointment-types", nil)
	req.SetBasicAuth("clinic", "wrong")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppointmentTypeRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/api/v1/appointment-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, body["total"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/appointment-types?minDuration=30&maxDuration=45", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/appointment-types?minDuration=half", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodGet, "/api/v1/appointment-types/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 15, body["shortestDuration"])
	assert.EqualValues(t, 60, body["longestDuration"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/appointment-types/recommendations?availableMinutes=40", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["recommendations"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/appointment-types/recommendations", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/api/v1/schedule/working-hours", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UTC", body["timezone"])
	hours := body["workingHours"].(map[string]interface{})
	monday := hours["monday"].(map[string]interface{})
	assert.Equal(t, "09:00", monday["start"])
	sunday := hours["sunday"].(map[string]interface{})
	assert.Equal(t, false, sunday["available"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/schedule/summary?date=2025-01-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Monday", body["dayOfWeek"])
}

func TestSlotRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/api/v1/slots?date=2025-01-06&appointmentType=general_consultation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := body["availableSlots"].([]interface{})
	require.NotEmpty(t, slots)
	first := slots[0].(map[string]interface{})
	assert.Equal(t, "09:00", first["startTime"])
	assert.Equal(t, "09:30", first["endTime"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/slots?date=2025-01-12&appointmentType=general_consultation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["isWorkingDay"])
	assert.Equal(t, "Not a working day", body["message"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/slots?date=06-01-2025&appointmentType=general_consultation", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", body["error"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/slots?date=2025-01-06&appointmentType=dentistry", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid appointment type: dentistry", body["error"])
	assert.Equal(t, false, body["success"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/slots/range?startDate=2025-01-06&endDate=2025-01-12&appointmentType=follow_up", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 6, body["totalDays"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/slots/range?startDate=2025-01-06&endDate=2025-06-12&appointmentType=follow_up", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodGet, "/api/v1/slots/next?appointmentType=follow_up&from=2025-01-12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, "2025-01-13", body["date"])
}

func TestSlotRoutesCalendarFailure(t *testing.T) {
	s := newTestServer(t)
	s.calendar.FailFetch(&domain.ExternalError{Op: "fetch", StatusCode: 500, Err: errors.New("upstream body: token=secret")})

	rec, body := s.do(t, http.MethodGet, "/api/v1/slots?date=2025-01-06&appointmentType=follow_up", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to fetch calendar events", body["error"])
	assert.NotContains(t, rec.Body.String(), "token=secret")
}

func TestBookingLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("2025-01-06", "10:00", "jane@example.com"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Appointment booked successfully", body["message"])
	bookingID := body["bookingId"].(string)
	details := body["appointmentDetails"].(map[string]interface{})
	assert.Equal(t, "General Consultation", details["type"])
	assert.Equal(t, "10:30", details["endTime"])
	assert.Equal(t, "scheduled", details["status"])
	assert.Len(t, body["nextSteps"], 3)

	rec, body = s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("2025-01-06", "10:00", "john@example.com"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Time slot 10:00 is not available on 2025-01-06", body["error"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/bookings/"+bookingID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = s.do(t, http.MethodPost, "/api/v1/bookings/"+bookingID+"/reschedule", rescheduleRequest{NewDate: "2025-01-07", NewTime: "11:00"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bookingID, body["oldBookingId"])
	newID := body["newBookingId"].(string)
	assert.Equal(t, "2025-01-07", body["newDate"])
	assert.Equal(t, "11:00", body["newTime"])

	rec, body = s.do(t, http.MethodPost, "/api/v1/bookings/"+newID+"/cancel", cancelRequest{Reason: "travel"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "travel", body["cancellationReason"])

	rec, _ = s.do(t, http.MethodPost, "/api/v1/bookings/"+newID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = s.do(t, http.MethodGet, "/api/v1/bookings/summary?startDate=2025-01-06&endDate=2025-01-08", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["totalAppointments"])
}

func TestBookingValidationErrors(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("2025-01-06", "10:00", "not-an-email"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email format", body["error"])
	assert.Equal(t, 0, s.calendar.Calls())

	rec, body = s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("2025-01-06", "", "jane@example.com"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required field: time", body["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString("{"))
	req.SetBasicAuth("clinic", "s3cret")
	raw := httptest.NewRecorder()
	s.router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/bookings/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelCalendarEvent(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/v1/bookings/EVT-1/cancel", cancelRequest{Reason: "sick"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVT-1", body["bookingId"])

	s.calendar.FailCancel(&domain.ExternalError{Op: "cancel", StatusCode: 404, Err: errors.New("not found")})
	rec, _ = s.do(t, http.MethodPost, "/api/v1/bookings/EVT-2/cancel", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
