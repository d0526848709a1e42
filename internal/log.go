package internal

import (
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Logger provides leveled logging to one or more sinks
type Logger struct {
	level LogLevel
	out   *log.Logger
}

// NewLogger creates a new logger with the specified level. With no sinks it writes to stderr.
func NewLogger(level LogLevel, sinks ...io.Writer) *Logger {
	var w io.Writer = os.Stderr
	switch len(sinks) {
	case 0:
	case 1:
		w = sinks[0]
	default:
		w = io.MultiWriter(sinks...)
	}
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewDiscardLogger is used by tests and library callers that want silence
func NewDiscardLogger() *Logger {
	return NewLogger(LogLevelError, io.Discard)
}

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE to a level; anything else is INFO.
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	}
	return LogLevelInfo
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LogLevelError {
		l.out.Printf("[ERROR] "+format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LogLevelWarn {
		l.out.Printf("[WARN] "+format, args...)
	}
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.out.Printf("[INFO] "+format, args...)
	}
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.out.Printf("[DEBUG] "+format, args...)
	}
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LogLevelTrace {
		l.out.Printf("[TRACE] "+format, args...)
	}
}
