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

// Logger provides leveled logging
type Logger struct {
	level LogLevel
	out   *log.Logger
}

// NewLogger creates a new logger with the specified level, writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// ParseLogLevel maps a LOG_LEVEL value to a LogLevel, defaulting to INFO
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
	default:
		return LogLevelInfo
	}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LogLevelError, "[ERROR] ", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LogLevelWarn, "[WARN] ", format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LogLevelInfo, "[INFO] ", format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LogLevelDebug, "[DEBUG] ", format, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	l.logf(LogLevelTrace, "[TRACE] ", format, args...)
}

func (l *Logger) logf(level LogLevel, prefix, format string, args ...interface{}) {
	if l == nil || l.level < level {
		return
	}
	l.out.Printf(prefix+format, args...)
}

// Discard is a logger that drops everything; handy in tests
var Discard = NewLoggerTo(io.Discard, LogLevelError)

// Global logger instance
var DefaultLogger = NewDefaultLogger()
