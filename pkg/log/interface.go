// Package log provides a structured logging facade for the library's
// machine learning operations.
//
// It defines a minimal Logger interface backed by zerolog, predefined
// attribute keys for consistent log analysis, and a buffer-backed test
// logger. It also bridges the pkg/errors warning system so that
// non-fatal warnings emit as structured log events.
package log

import (
	"context"
)

// Logger is the structured logging interface used across the library.
// Fields are alternating key/value pairs, slog style.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs a potentially problematic but non-fatal condition.
	Warn(msg string, fields ...any)

	// Error logs an error condition. If a field value is an error
	// carrying a stack trace it is rendered as a structured attribute.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It exists so tests can
// swap the zerolog-backed default for a capturing implementation.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers from this provider.
	SetLevel(level Level)
}
