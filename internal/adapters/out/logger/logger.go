package logger

import (
	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

// NewLogger picks the console logger for LOG_FORMAT=console and zap otherwise.
func NewLogger(cfg *config.Config) (out.LoggerPort, error) {
	if cfg.App.LogFormat == "console" {
		return NewConsoleLogger(cfg.App.Location, cfg.App.LogLevel), nil
	}

	zapLogger, err := NewZapLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		return nil, err
	}
	return zapLogger.WithFields(out.LogFields{"version": cfg.App.Version}), nil
}
