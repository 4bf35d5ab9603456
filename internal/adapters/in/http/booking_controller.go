package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/in"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

var bookingNextSteps = []string{
	"Confirmation email will be sent to the patient",
	"Calendar invite will be sent",
	"Please arrive 10 minutes before appointment time",
}

type BookingController struct {
	useCase  in.BookingUseCase
	location *time.Location
	logger   out.LoggerPort
}

func NewBookingController(useCase in.BookingUseCase, location *time.Location, logger out.LoggerPort) *BookingController {
	return &BookingController{
		useCase:  useCase,
		location: location,
		logger:   logger.WithModule("BookingController"),
	}
}

func (c *BookingController) RegisterRoutes(api *gin.RouterGroup) {
	bookings := api.Group("/bookings")
	{
		bookings.POST("", c.create)
		bookings.GET("/summary", c.summary)
		bookings.GET("/:bookingId", c.get)
		bookings.POST("/:bookingId/cancel", c.cancel)
		bookings.POST("/:bookingId/reschedule", c.reschedule)
	}
}

type appointmentDetails struct {
	Type            string         `json:"type"`
	DurationMinutes int            `json:"duration"`
	Date            string         `json:"date"`
	StartTime       string         `json:"startTime"`
	EndTime         string         `json:"endTime"`
	Patient         domain.Patient `json:"patient"`
	Notes           string         `json:"notes"`
	Status          string         `json:"status"`
}

func detailsOf(booking *domain.Booking) appointmentDetails {
	return appointmentDetails{
		Type:            booking.AppointmentTypeName,
		DurationMinutes: booking.DurationMinutes,
		Date:            booking.Date.String(),
		StartTime:       booking.StartTime.String(),
		EndTime:         booking.EndTime.String(),
		Patient:         booking.Patient,
		Notes:           booking.Notes,
		Status:          string(booking.Status),
	}
}

func (c *BookingController) create(ctx *gin.Context) {
	var req domain.BookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	booking, err := c.useCase.CreateAppointment(ctx.Request.Context(), req)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":            true,
		"bookingId":          booking.ID,
		"appointmentDetails": detailsOf(booking),
		"message":            "Appointment booked successfully",
		"nextSteps":          bookingNextSteps,
	})
}

func (c *BookingController) get(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		writeError(ctx, c.logger, domain.NewError(domain.ErrBookingNotFound, "Booking %s not found", ctx.Param("bookingId")))
		return
	}

	booking, err := c.useCase.GetBooking(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":            true,
		"bookingId":          booking.ID,
		"appointmentDetails": detailsOf(booking),
	})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (c *BookingController) cancel(ctx *gin.Context) {
	var req cancelRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, "Invalid request body")
			return
		}
	}

	result, err := c.useCase.CancelAppointment(ctx.Request.Context(), ctx.Param("bookingId"), req.Reason)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":            true,
		"bookingId":          result.BookingID,
		"cancellationReason": result.CancellationReason,
		"message":            result.Message,
	})
}

type rescheduleRequest struct {
	NewDate string `json:"newDate"`
	NewTime string `json:"newTime"`
}

func (c *BookingController) reschedule(ctx *gin.Context) {
	var req rescheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	result, err := c.useCase.RescheduleAppointment(ctx.Request.Context(), ctx.Param("bookingId"), req.NewDate, req.NewTime)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":      true,
		"oldBookingId": result.OldBookingID,
		"newBookingId": result.NewBookingID,
		"newDate":      result.NewDate,
		"newTime":      result.NewTime,
		"message":      result.Message,
	})
}

func (c *BookingController) summary(ctx *gin.Context) {
	startDate, _, err := queryDate(ctx, "startDate", c.location)
	if err != nil {
		badRequest(ctx, invalidDateMessage)
		return
	}
	endDate, _, err := queryDate(ctx, "endDate", c.location)
	if err != nil {
		badRequest(ctx, invalidDateMessage)
		return
	}

	summary, err := c.useCase.GetBookingSummary(ctx.Request.Context(), startDate, endDate)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
