package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
)

const (
	invalidDateMessage = "Invalid date format. Use YYYY-MM-DD"

	// maxRangeDays bounds range queries served over HTTP.
	maxRangeDays = 90
)

// queryDate parses a YYYY-MM-DD query parameter as midnight in location.
func queryDate(ctx *gin.Context, name string, location *time.Location) (time.Time, bool, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	date, err := json_types.ParseDate(raw, location)
	if err != nil {
		return time.Time{}, true, err
	}
	return date, true, nil
}

// queryInstant accepts either a YYYY-MM-DD date or an RFC 3339 timestamp.
func queryInstant(ctx *gin.Context, name string, location *time.Location) (time.Time, bool, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if instant, err := time.Parse(time.RFC3339, raw); err == nil {
		return instant.In(location), true, nil
	}
	return queryDate(ctx, name, location)
}

func queryInt(ctx *gin.Context, name string) (*int, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
