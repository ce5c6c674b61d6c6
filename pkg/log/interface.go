// Package log provides structured logging for selgo feature-selection
// operations.
//
// The package defines a minimal, slog-compatible Logger interface so the
// backing implementation can be swapped without touching estimator code. The
// default provider is backed by zerolog.
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with log/slog
// conventions. Fields are alternating key-value pairs.
type Logger interface {
	// Debug logs detailed diagnostic information, usually disabled in
	// production.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic situations that do not stop the
	// operation.
	Warn(msg string, fields ...any)

	// Error logs error conditions. If the first field is an error it is
	// attached with stack trace information when available.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated on every
	// subsequent record.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip expensive field construction.
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

// ToLogLevel parses a level name ("debug", "info", "warn", "error") into a
// Level. Unknown names map to LevelInfo.
func ToLogLevel(level string) Level {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoggerProvider creates and configures loggers. It exists for dependency
// injection and testing with alternative backends.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers created by this provider.
	SetLevel(level Level)
}
