package out

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

type LogFields map[string]interface{}

type LoggerPort interface {
	Debug(event string, fields LogFields)
	Info(event string, fields LogFields)
	Warn(event string, fields LogFields)
	Error(event string, fields LogFields)
	WithFields(fields LogFields) LoggerPort
	WithModule(module string) LoggerPort
}

type nopLogger struct{}

// NopLogger discards everything. Used by tests and CLI commands.
func NopLogger() LoggerPort { return nopLogger{} }

func (nopLogger) Debug(string, LogFields) {}
func (nopLogger) Info(string, LogFields) {}
func (nopLogger) Warn(string, LogFields) {}
func (nopLogger) Error(string, LogFields) {}
func (n nopLogger) WithFields(LogFields) LoggerPort { return n }
func (n nopLogger) WithModule(string) LoggerPort { return n }
