package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

type Controller interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// NewRouter mounts every controller under /api/v1 behind basic auth.
// /health stays public.
func NewRouter(cfg *config.Config, logger out.LoggerPort, controllers ...Controller) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger.WithModule("HttpServer")))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.App.Version,
		})
	})

	api := router.Group("/api/v1")
	api.Use(basicAuth(cfg.Auth.BasicClients))
	for _, controller := range controllers {
		controller.RegisterRoutes(api)
	}

	return router
}

func requestLogger(logger out.LoggerPort) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		fields := out.LogFields{
			"method": ctx.Request.Method,
			"path":   ctx.FullPath(),
			"status": ctx.Writer.Status(),
		}
		if ctx.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("http.request.failed", fields)
			return
		}
		logger.Debug("http.request.completed", fields)
	}
}

func basicAuth(clients []config.ConfigBasicClient) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth || !knownClient(clients, username, password) {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx.Next()
	}
}

func knownClient(clients []config.ConfigBasicClient, username, password string) bool {
	matched := false
	for _, client := range clients {
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1
		if userOK && passOK {
			matched = true
		}
	}
	return matched
}
