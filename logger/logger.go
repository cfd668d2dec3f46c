package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"mem0-debug-proxy/internal"

	"github.com/sirupsen/logrus"
)

// Level represents the severity level of a log message
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string level to Level enum
func ParseLevel(levelStr string) Level {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Component constants for consistent labeling
const (
	ComponentServer     = "server"
	ComponentConfig     = "configuration"
	ComponentDebugProxy = "llm_debug_proxy"
	ComponentUpstream   = "llm_upstream"
)

// Logger defines the interface for structured logging
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithComponent(component string) Logger
}

// LogrusLogger implements Logger on top of a logrus entry
type LogrusLogger struct {
	entry *logrus.Entry
}

// Log formats understood by NewWithOptions
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures a process logger
type Options struct {
	Level   Level
	Format  string
	LokiURL string
	Service string
}

// New creates a text logger writing to out at the given minimum level
func New(out io.Writer, level Level) Logger {
	l, _ := NewWithOptions(out, Options{Level: level})
	return l
}

// NewWithOptions creates a logger writing to out. When opts.LokiURL is set the
// returned hook also pushes every entry to Loki; it is nil otherwise.
func NewWithOptions(out io.Writer, opts Options) (Logger, *LokiHook) {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(opts.Level.logrusLevel())

	if strings.EqualFold(opts.Format, FormatJSON) {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		// Unquoted so payload dumps stay greppable as raw={"memory": []}
		l.SetFormatter(&logrus.TextFormatter{
			DisableQuote:    true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	var hook *LokiHook
	if opts.LokiURL != "" {
		service := opts.Service
		if service == "" {
			service = "mem0-debug-proxy"
		}
		hook = NewLokiHook(opts.LokiURL, service)
		l.AddHook(hook)
	}
	return NewFromLogrus(l), hook
}

// NewFromLogrus wraps an existing logrus logger
func NewFromLogrus(l *logrus.Logger) Logger {
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

var defaultLogger = New(os.Stderr, INFO)

// Default returns the process-wide stderr logger
func Default() Logger {
	return defaultLogger
}

// WithField adds a field to the logger context
func (l *LogrusLogger) WithField(key string, value interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}

// WithComponent sets the component for the logger
func (l *LogrusLogger) WithComponent(component string) Logger {
	return l.WithField("component", component)
}

// Debug logs a debug level message
func (l *LogrusLogger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Info logs an info level message
func (l *LogrusLogger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Warn logs a warning level message
func (l *LogrusLogger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Error logs an error level message
func (l *LogrusLogger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// ForRequest tags l with the request ID carried by ctx, if any
func ForRequest(ctx context.Context, l Logger) Logger {
	if l == nil {
		l = Default()
	}
	if requestID := internal.GetRequestID(ctx); requestID != "unknown" {
		return l.WithField("request_id", requestID)
	}
	return l
}

// noOpLogger discards everything
type noOpLogger struct{}

// NoOp returns a logger that drops all messages
func NoOp() Logger { return noOpLogger{} }

func (noOpLogger) Debug(format string, args ...interface{}) {}
func (noOpLogger) Info(format string, args ...interface{}) {}
func (noOpLogger) Warn(format string, args ...interface{}) {}
func (noOpLogger) Error(format string, args ...interface{}) {}
func (n noOpLogger) WithField(key string, value interface{}) Logger { return n }
func (n noOpLogger) WithComponent(component string) Logger { return n }

// MaskAPIKey masks an API key for safe logging
func MaskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", apiKey[:4], apiKey[len(apiKey)-4:])
}
