package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

var statusByKind = []struct {
	kind   error
	status int
}{
	{domain.ErrMissingRequiredField, http.StatusBadRequest},
	{domain.ErrInvalidAppointmentType, http.StatusBadRequest},
	{domain.ErrMalformedDate, http.StatusBadRequest},
	{domain.ErrMalformedTime, http.StatusBadRequest},
	{domain.ErrMalformedEmail, http.StatusBadRequest},
	{domain.ErrInvalidDateRange, http.StatusBadRequest},
	{domain.ErrInvalidInterval, http.StatusBadRequest},
	{domain.ErrBookingNotFound, http.StatusNotFound},
	{domain.ErrSlotUnavailable, http.StatusConflict},
	{domain.ErrBookingAlreadyCancelled, http.StatusConflict},
	{domain.ErrExternalFetchFailure, http.StatusBadGateway},
	{domain.ErrCancelFailed, http.StatusBadGateway},
}

func statusFor(err error) int {
	for _, entry := range statusByKind {
		if errors.Is(err, entry.kind) {
			return entry.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(ctx *gin.Context, logger out.LoggerPort, err error) {
	status := statusFor(err)
	message := domain.Message(err)

	if status == http.StatusInternalServerError {
		logger.Error("http.request.internal_error", out.LogFields{
			"path":  ctx.FullPath(),
			"error": err.Error(),
		})
		message = "Internal server error"
	}

	ctx.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

func badRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}
