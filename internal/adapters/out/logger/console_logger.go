package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[37m"
)

var levelRank = map[out.LogLevel]int{
	out.LogLevelDebug: 0,
	out.LogLevelInfo:  1,
	out.LogLevelWarn:  2,
	out.LogLevelError: 3,
}

// ParseLevel maps a config value such as "debug" to a log level. Unknown
// values fall back to info.
func ParseLevel(level string) out.LogLevel {
	parsed := out.LogLevel(strings.ToUpper(strings.TrimSpace(level)))
	if _, ok := levelRank[parsed]; ok {
		return parsed
	}
	return out.LogLevelInfo
}

// ConsoleLogger prints colored, human-readable records. Used for local runs.
type ConsoleLogger struct {
	defaultFields out.LogFields
	module        string
	location      *time.Location
	minLevel      out.LogLevel
	writer        io.Writer
	mu            *sync.Mutex
}

func NewConsoleLogger(location *time.Location, level string) *ConsoleLogger {
	return newConsoleLogger(location, level, os.Stdout)
}

func newConsoleLogger(location *time.Location, level string, writer io.Writer) *ConsoleLogger {
	if location == nil {
		location = time.UTC
	}

	return &ConsoleLogger{
		defaultFields: make(out.LogFields),
		module:        "unknown",
		location:      location,
		minLevel:      ParseLevel(level),
		writer:        writer,
		mu:            &sync.Mutex{},
	}
}

func (l *ConsoleLogger) clone() *ConsoleLogger {
	c := *l
	c.defaultFields = make(out.LogFields, len(l.defaultFields))
	for k, v := range l.defaultFields {
		c.defaultFields[k] = v
	}
	return &c
}

func (l *ConsoleLogger) WithFields(fields out.LogFields) out.LoggerPort {
	c := l.clone()
	for k, v := range fields {
		c.defaultFields[k] = v
	}
	return c
}

func (l *ConsoleLogger) WithModule(module string) out.LoggerPort {
	c := l.clone()
	c.module = module
	return c
}

func (l *ConsoleLogger) Debug(event string, fields out.LogFields) {
	l.log(out.LogLevelDebug, event, fields)
}

func (l *ConsoleLogger) Info(event string, fields out.LogFields) {
	l.log(out.LogLevelInfo, event, fields)
}

func (l *ConsoleLogger) Warn(event string, fields out.LogFields) {
	l.log(out.LogLevelWarn, event, fields)
}

func (l *ConsoleLogger) Error(event string, fields out.LogFields) {
	l.log(out.LogLevelError, event, fields)
}

func (l *ConsoleLogger) log(level out.LogLevel, event string, fields out.LogFields) {
	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	merged := make(out.LogFields, len(l.defaultFields)+len(fields)+1)
	for k, v := range l.defaultFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	merged["event"] = event

	timestamp := time.Now().In(l.location).Format("2006-01-02 15:04:05.000")

	levelColor := colorGreen
	switch level {
	case out.LogLevelDebug:
		levelColor = colorGray
	case out.LogLevelWarn:
		levelColor = colorYellow
	case out.LogLevelError:
		levelColor = colorRed
	}

	body, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		body = []byte(fmt.Sprintf(`{"event": %q, "marshalError": %q}`, event, err.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.writer, "%s[%s]%s %s[%s]%s %s[%s]%s\n%s\n",
		colorGray, timestamp, colorReset,
		levelColor, level, colorReset,
		colorCyan, l.module, colorReset,
		string(body),
	)
}
