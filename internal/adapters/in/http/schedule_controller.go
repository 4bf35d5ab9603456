package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/in"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

type ScheduleController struct {
	useCase in.ScheduleUseCase
	logger  out.LoggerPort
	now     func() time.Time
}

func NewScheduleController(useCase in.ScheduleUseCase, logger out.LoggerPort) *ScheduleController {
	return &ScheduleController{
		useCase: useCase,
		logger:  logger.WithModule("ScheduleController"),
		now:     time.Now,
	}
}

func (c *ScheduleController) RegisterRoutes(api *gin.RouterGroup) {
	schedule := api.Group("/schedule")
	{
		schedule.GET("/working-hours", c.workingHours)
		schedule.GET("/summary", c.summary)
	}
}

func (c *ScheduleController) workingHours(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"timezone":     c.useCase.Location().String(),
		"workingHours": c.useCase.WorkingHours().ToNamed(),
	})
}

func (c *ScheduleController) summary(ctx *gin.Context) {
	date, present, err := queryDate(ctx, "date", c.useCase.Location())
	if err != nil {
		badRequest(ctx, invalidDateMessage)
		return
	}
	if !present {
		date = c.now()
	}

	summary, err := c.useCase.GetScheduleSummary(ctx.Request.Context(), date)
	if err != nil {
		writeError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
