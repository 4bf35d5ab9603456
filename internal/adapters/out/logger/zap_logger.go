package logger

import (
	"errors"
	"sort"
	"syscall"

	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger writes one JSON record per event. The event name is the message.
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(level string, env config.Environment) (*ZapLogger, error) {
	var logLevel zapcore.Level
	switch ParseLevel(level) {
	case out.LogLevelDebug:
		logLevel = zap.DebugLevel
	case out.LogLevelWarn:
		logLevel = zap.WarnLevel
	case out.LogLevelError:
		logLevel = zap.ErrorLevel
	default:
		logLevel = zap.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "event",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(logLevel),
		Development:      env == config.EnvLocal || env == config.EnvDev,
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: logger}, nil
}

func NewZapLoggerFrom(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

func toZapFields(fields out.LogFields) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zapFields := make([]zap.Field, 0, len(fields))
	for _, k := range keys {
		zapFields = append(zapFields, zap.Any(k, fields[k]))
	}
	return zapFields
}

func (l *ZapLogger) WithFields(fields out.LogFields) out.LoggerPort {
	return &ZapLogger{logger: l.logger.With(toZapFields(fields)...)}
}

func (l *ZapLogger) WithModule(module string) out.LoggerPort {
	return &ZapLogger{logger: l.logger.Named(module)}
}

func (l *ZapLogger) Debug(event string, fields out.LogFields) {
	l.logger.Debug(event, toZapFields(fields)...)
}

func (l *ZapLogger) Info(event string, fields out.LogFields) {
	l.logger.Info(event, toZapFields(fields)...)
}

func (l *ZapLogger) Warn(event string, fields out.LogFields) {
	l.logger.Warn(event, toZapFields(fields)...)
}

func (l *ZapLogger) Error(event string, fields out.LogFields) {
	l.logger.Error(event, toZapFields(fields)...)
}

// Sync flushes buffered records. Console and pipe outputs cannot be fsynced;
// that error is not reported.
func (l *ZapLogger) Sync() error {
	err := l.logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
