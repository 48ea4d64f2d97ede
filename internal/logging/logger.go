package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fadedpez/tucojack/internal/types"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var charmLevels = map[Level]log.Level{
	DEBUG: log.DebugLevel,
	INFO:  log.InfoLevel,
	WARN:  log.WarnLevel,
	ERROR: log.ErrorLevel,
}

// String returns the level name
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a name such as "debug" or "WARN" to a Level
func ParseLevel(name string) (Level, error) {
	for level, levelName := range levelNames {
		if strings.EqualFold(name, levelName) {
			return level, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", name)
}

// Logger represents our custom logger
// Format selects how log lines are encoded
type Format int

const (
	TextFormat Format = iota
	JSONFormat
)

var charmFormatters = map[Format]log.Formatter{
	TextFormat: log.TextFormatter,
	JSONFormat: log.JSONFormatter,
}

type Logger struct {
	base *log.Logger
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(level Level) *Logger {
	return New(os.Stdout, level, "")
}

// New creates a text logger writing to w with an optional prefix
func New(w io.Writer, level Level, prefix string) *Logger {
	return NewWithFormat(w, level, prefix, TextFormat)
}

// NewWithFormat creates a logger writing lines encoded as format
func NewWithFormat(w io.Writer, level Level, prefix string, format Format) *Logger {
	base := log.NewWithOptions(w, log.Options{
		Level:           charmLevels[level],
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		Formatter:       charmFormatters[format],
	})
	return &Logger{base: base}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard, ERROR, "")
}

// OpenFile returns a logger appending to path. An empty path discards all output.
// The caller closes the returned file.
func OpenFile(path string, level Level, format Format) (*Logger, io.Closer, error) {
	if path == "" {
		return Discard(), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewWithFormat(f, level, "", format), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// WithPrefix returns a child logger tagged with prefix, e.g. "[WALLET]"
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{base: l.base.WithPrefix(prefix)}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.base.Debugf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.base.Infof(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.base.Warnf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.base.Errorf(format, v...)
}

// LogError logs a GameError with appropriate context
func (l *Logger) LogError(err error) {
	var gameErr *types.GameError
	if types.As(err, &gameErr) {
		// Format error context
		context := []string{
			fmt.Sprintf("Code: %s", gameErr.Code),
			fmt.Sprintf("Message: %s", gameErr.Message),
		}
		if gameErr.Err != nil {
			context = append(context, fmt.Sprintf("Cause: %v", gameErr.Err))
		}

		l.Error("Game error occurred:\n\t%s", strings.Join(context, "\n\t"))
	} else {
		l.Error("Unexpected error: %v", err)
	}
}

// Default logger instance
var Default = NewLogger(INFO)
