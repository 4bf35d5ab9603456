package calendly

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
	"golang.org/x/time/rate"
)

const (
	pageSize = 100

	// maxPages bounds pagination for a single fetch.
	maxPages = 50
)

type CalendlyAdapter struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	token   string
	userURI string
	logger  out.LoggerPort
}

func NewCalendlyAdapter(cfg *config.Config, logger out.LoggerPort) *CalendlyAdapter {
	return &CalendlyAdapter{
		client:  &http.Client{Timeout: cfg.Calendly.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.Calendly.RateLimitRPS), cfg.Calendly.RateLimitBurst),
		baseURL: strings.TrimRight(cfg.Calendly.URL, "/"),
		token:   cfg.Calendly.APIToken,
		userURI: cfg.Calendly.UserURI,
		logger:  logger.WithModule("CalendlyAdapter"),
	}
}

type scheduledEventsResponse struct {
	Collection []scheduledEvent `json:"collection"`
	Pagination struct {
		Count    int     `json:"count"`
		NextPage *string `json:"next_page"`
	} `json:"pagination"`
}

type scheduledEvent struct {
	URI       string    `json:"uri"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Location  *struct {
		Type     string `json:"type"`
		Location string `json:"location"`
	} `json:"location"`
}

func (e scheduledEvent) toDomain() domain.CalendarEvent {
	event := domain.CalendarEvent{
		ID:        eventID(e.URI),
		Name:      e.Name,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Status:    domain.CalendarEventStatus(e.Status),
	}
	if e.Location != nil {
		event.Location = e.Location.Location
	}
	return event
}

// eventID returns the last path segment of an event URI.
func eventID(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func (a *CalendlyAdapter) GetScheduledEvents(ctx context.Context, startTime, endTime time.Time) ([]domain.CalendarEvent, error) {
	a.logger.Debug("calendly.scheduled_events.fetch", out.LogFields{
		"startTime": startTime,
		"endTime":   endTime,
	})

	params := nurl.Values{}
	params.Set("user", a.userURI)
	params.Set("min_start_time", startTime.UTC().Format(time.RFC3339))
	params.Set("max_start_time", endTime.UTC().Format(time.RFC3339))
	params.Set("status", string(domain.CalendarEventStatusActive))
	params.Set("count", fmt.Sprintf("%d", pageSize))

	url := fmt.Sprintf("%s/scheduled_events?%s", a.baseURL, params.Encode())
	events := make([]domain.CalendarEvent, 0)

	for page := 0; url != ""; page++ {
		if page == maxPages {
			a.logger.Warn("calendly.scheduled_events.page_limit", out.LogFields{
				"pages":  page,
				"events": len(events),
			})
			break
		}

		var response scheduledEventsResponse
		if err := a.do(ctx, "fetch", http.MethodGet, url, nil, &response); err != nil {
			a.logger.Error("calendly.scheduled_events.fetch_failed", out.LogFields{
				"page":  page,
				"error": err.Error(),
			})
			return nil, err
		}

		for _, event := range response.Collection {
			events = append(events, event.toDomain())
		}

		url = ""
		if response.Pagination.NextPage != nil {
			url = *response.Pagination.NextPage
		}
	}

	a.logger.Debug("calendly.scheduled_events.fetch_success", out.LogFields{
		"count": len(events),
	})

	return events, nil
}

func (a *CalendlyAdapter) CancelEvent(ctx context.Context, eventID string, reason string) error {
	a.logger.Info("calendly.event.cancel", out.LogFields{
		"eventId": eventID,
	})

	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}

	url := fmt.Sprintf("%s/scheduled_events/%s/cancellation", a.baseURL, nurl.PathEscape(eventID))
	if err := a.do(ctx, "cancel", http.MethodPost, url, body, nil); err != nil {
		a.logger.Error("calendly.event.cancel_failed", out.LogFields{
			"eventId": eventID,
			"error":   err.Error(),
		})
		return err
	}

	return nil
}

// do sends one rate-limited request. Every failure comes back as *domain.ExternalError.
func (a *CalendlyAdapter) do(ctx context.Context, op, method, url string, body interface{}, target interface{}) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return &domain.ExternalError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &domain.ExternalError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &domain.ExternalError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return &domain.ExternalError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.ExternalError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, strings.TrimSpace(string(detail))),
		}
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &domain.ExternalError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}
