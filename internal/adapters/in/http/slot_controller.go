package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/in"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

type SlotController struct {
	useCase  in.SlotUseCase
	location *time.Location
	logger   out.LoggerPort
}

func NewSlotController(useCase in.SlotUseCase, location *time.Location, logger out.LoggerPort) *SlotController {
	return &SlotController{
		useCase:  useCase,
		location: location,
		logger:   logger.WithModule("SlotController"),
	}
}

func (c *SlotController) RegisterRoutes(api *gin.RouterGroup) {
	slots := api.Group("/slots")
	{
		slots.GET("", c.available)
		slots.GET("/range", c.availableRange)
		slots.GET("/next", c.next)
	}
}

func (c *SlotController) available(ctx *gin.Context) {
	appointmentType := ctx.Query("appointmentType")
	if appointmentType == "" {
		badRequest(ctx, "Missing required field: appointmentType")
		return
	}
	date, present, err := queryDate(ctx, "date", c.location)
	if err != nil || !present {
		badRequest(ctx, invalidDateMessage)
		return
	}

	result, err := c.useCase.GetAvailableSlots(ctx.Request.Context(), date, appointmentType)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *SlotController) availableRange(ctx *gin.Context) {
	appointmentType := ctx.Query("appointmentType")
	if appointmentType == "" {
		badRequest(ctx, "Missing required field: appointmentType")
		return
	}
	startDate, startPresent, err := queryDate(ctx, "startDate", c.location)
	if err != nil || !startPresent {
		badRequest(ctx, invalidDateMessage)
		return
	}
	endDate, endPresent, err := queryDate(ctx, "endDate", c.location)
	if err != nil || !endPresent {
		badRequest(ctx, invalidDateMessage)
		return
	}
	if endDate.Sub(startDate) > maxRangeDays*24*time.Hour {
		badRequest(ctx, fmt.Sprintf("Date range must not exceed %d days", maxRangeDays))
		return
	}

	results, err := c.useCase.GetAvailableSlotsRange(ctx.Request.Context(), startDate, endDate, appointmentType)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"startDate":     startDate.Format("2006-01-02"),
		"endDate":       endDate.Format("2006-01-02"),
		"availableDays": results,
		"totalDays":     len(results),
	})
}

func (c *SlotController) next(ctx *gin.Context) {
	appointmentType := ctx.Query("appointmentType")
	if appointmentType == "" {
		badRequest(ctx, "Missing required field: appointmentType")
		return
	}
	from, _, err := queryInstant(ctx, "from", c.location)
	if err != nil {
		badRequest(ctx, invalidDateMessage)
		return
	}

	result, err := c.useCase.GetNextAvailableSlot(ctx.Request.Context(), appointmentType, from)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}
