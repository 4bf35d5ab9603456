package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/in"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

type AppointmentTypeController struct {
	useCase in.AppointmentTypeUseCase
	logger  out.LoggerPort
}

func NewAppointmentTypeController(useCase in.AppointmentTypeUseCase, logger out.LoggerPort) *AppointmentTypeController {
	return &AppointmentTypeController{
		useCase: useCase,
		logger:  logger.WithModule("AppointmentTypeController"),
	}
}

func (c *AppointmentTypeController) RegisterRoutes(api *gin.RouterGroup) {
	types := api.Group("/appointment-types")
	{
		types.GET("", c.list)
		types.GET("/summary", c.summary)
		types.GET("/recommendations", c.recommendations)
	}
}

func (c *AppointmentTypeController) list(ctx *gin.Context) {
	minDuration, err := queryInt(ctx, "minDuration")
	if err != nil {
		badRequest(ctx, "minDuration must be an integer")
		return
	}
	maxDuration, err := queryInt(ctx, "maxDuration")
	if err != nil {
		badRequest(ctx, "maxDuration must be an integer")
		return
	}

	types := c.useCase.FilterByDuration(minDuration, maxDuration)
	ctx.JSON(http.StatusOK, gin.H{
		"appointmentTypes": types,
		"total":            len(types),
	})
}

func (c *AppointmentTypeController) summary(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.useCase.Summary())
}

func (c *AppointmentTypeController) recommendations(ctx *gin.Context) {
	available, err := queryInt(ctx, "availableMinutes")
	if err != nil || available == nil || *available < 0 {
		badRequest(ctx, "availableMinutes must be a non-negative integer")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"availableMinutes": *available,
		"recommendations":  c.useCase.Recommend(*available),
	})
}
