// Package ports defines the capabilities the bring-up core consumes from its
// surroundings. Logging is injected through Logger rather than wired to a
// concrete backend.
package ports

import (
	"context"
	"fmt"
	"strings"
)

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is for per-step tracing.
	LevelDebug Level = iota
	// LevelInfo is for run start and completion.
	LevelInfo
	// LevelWarn is for recoverable oddities.
	LevelWarn
	// LevelError is for rejected plans and failed steps.
	LevelError
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

// ParseLevel parses a level name case-insensitively ("warning" is accepted).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Field is a structured logging key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger is the structured logging capability handed to the orchestrator.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// With returns a Logger that adds fields to every entry.
	With(fields ...Field) Logger

	Level() Level
	SetLevel(level Level)
}

type loggerKey struct{}

// LoggerFromContext retrieves a Logger from the context, or nil.
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return logger
	}
	return nil
}

// ContextWithLogger returns a new context carrying the logger.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
