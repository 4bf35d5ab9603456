package calendly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

func newAdapter(serverURL string) *CalendlyAdapter {
	cfg := &config.Config{}
	cfg.Calendly.URL = serverURL
	cfg.Calendly.APIToken = "secret-token"
	cfg.Calendly.UserURI = "https://api.calendly.com/users/DOC"
	cfg.Calendly.Timeout = 2 * time.Second
	cfg.Calendly.RateLimitRPS = 100
	cfg.Calendly.RateLimitBurst = 100
	return NewCalendlyAdapter(cfg, out.NopLogger())
}

func TestGetScheduledEventsFollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/scheduled_events", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_token") == "" {
			assert.Equal(t, "https://api.calendly.com/users/DOC", r.URL.Query().Get("user"))
			assert.Equal(t, "2025-01-06T00:00:00Z", r.URL.Query().Get("min_start_time"))
			assert.Equal(t, "2025-01-07T00:00:00Z", r.URL.Query().Get("max_start_time"))
			assert.Equal(t, "active", r.URL.Query().Get("status"))
			fmt.Fprintf(w, `{
				"collection": [{
					"uri": "https://api.calendly.com/scheduled_events/EVT-1",
					"name": "Follow-up",
					"status": "active",
					"start_time": "2025-01-06T09:30:00.000000Z",
					"end_time": "2025-01-06T10:00:00.000000Z",
					"location": {"type": "physical", "location": "Room 4"}
				}],
				"pagination": {"count": 1, "next_page": "%s/scheduled_events?page_token=next"}
			}`, server.URL)
			return
		}
		fmt.Fprint(w, `{
			"collection": [{
				"uri": "https://api.calendly.com/scheduled_events/EVT-2",
				"name": "General Consultation",
				"status": "active",
				"start_time": "2025-01-06T14:00:00+01:00",
				"end_time": "2025-01-06T14:30:00+01:00"
			}],
			"pagination": {"count": 1, "next_page": null}
		}`)
	}))
	defer server.Close()

	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	events, err := newAdapter(server.URL).GetScheduledEvents(context.Background(), start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "EVT-1", events[0].ID)
	assert.Equal(t, "Follow-up", events[0].Name)
	assert.Equal(t, domain.CalendarEventStatusActive, events[0].Status)
	assert.Equal(t, "Room 4", events[0].Location)
	assert.True(t, events[0].StartTime.Equal(start.Add(9*time.Hour+30*time.Minute)))

	assert.Equal(t, "EVT-2", events[1].ID)
	assert.True(t, events[1].StartTime.Equal(start.Add(13*time.Hour)))
}

func TestGetScheduledEventsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"title":"Unauthenticated"}`)
	}))
	defer server.Close()

	_, err := newAdapter(server.URL).GetScheduledEvents(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalFetchFailure)

	var external *domain.ExternalError
	require.True(t, errors.As(err, &external))
	assert.Equal(t, http.StatusUnauthorized, external.StatusCode)
	assert.Equal(t, "fetch", external.Op)
}

func TestGetScheduledEventsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"collection": [`)
	}))
	defer server.Close()

	_, err := newAdapter(server.URL).GetScheduledEvents(context.Background(), time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrExternalFetchFailure)
}

func TestGetScheduledEventsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newAdapter(url).GetScheduledEvents(context.Background(), time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrExternalFetchFailure)
}

func TestCancelEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scheduled_events/EVT-9/cancellation", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"reason":"doctor unavailable"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"resource":{"canceled_by":"Doctor"}}`)
	}))
	defer server.Close()

	assert.NoError(t, newAdapter(server.URL).CancelEvent(context.Background(), "EVT-9", "doctor unavailable"))
}

func TestCancelEventFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := newAdapter(server.URL).CancelEvent(context.Background(), "EVT-9", "")
	assert.ErrorIs(t, err, domain.ErrExternalFetchFailure)
}

func TestEventID(t *testing.T) {
	assert.Equal(t, "ABC", eventID("https://api.calendly.com/scheduled_events/ABC"))
	assert.Equal(t, "ABC", eventID("https://api.calendly.com/scheduled_events/ABC/"))
	assert.Equal(t, "ABC", eventID("ABC"))
}
