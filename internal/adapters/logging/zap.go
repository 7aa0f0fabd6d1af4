package logging

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/felixgeelhaar/bringup/internal/ports"
)

// ZapLogger adapts a zap.Logger to ports.Logger.
type ZapLogger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger creates a JSON zap logger writing to w.
func NewZapLogger(w io.Writer, level ports.Level) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	atom := zap.NewAtomicLevelAt(toZapLevel(level))
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), atom)

	return &ZapLogger{base: zap.New(core), level: atom}
}

// NewZapLoggerFrom wraps an existing zap logger whose level is controlled by atom.
func NewZapLoggerFrom(base *zap.Logger, atom zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{base: base, level: atom}
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	l.base.Debug(msg, toZapFields(fields)...)
}

// Info logs an informational message.
func (l *ZapLogger) Info(_ context.Context, msg string, fields ...ports.Field) {
	l.base.Info(msg, toZapFields(fields)...)
}

// Warn logs a warning message.
func (l *ZapLogger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	l.base.Warn(msg, toZapFields(fields)...)
}

// Error logs an error message.
func (l *ZapLogger) Error(_ context.Context, msg string, fields ...ports.Field) {
	l.base.Error(msg, toZapFields(fields)...)
}

// With returns a logger with fields attached to every entry.
func (l *ZapLogger) With(fields ...ports.Field) ports.Logger {
	return &ZapLogger{base: l.base.With(toZapFields(fields)...), level: l.level}
}

// Level returns the minimum log level.
func (l *ZapLogger) Level() ports.Level {
	return fromZapLevel(l.level.Level())
}

// SetLevel sets the minimum log level. Loggers derived via With share it.
func (l *ZapLogger) SetLevel(level ports.Level) {
	l.level.SetLevel(toZapLevel(level))
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

func toZapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}

func toZapLevel(level ports.Level) zapcore.Level {
	switch level {
	case ports.LevelDebug:
		return zapcore.DebugLevel
	case ports.LevelWarn:
		return zapcore.WarnLevel
	case ports.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) ports.Level {
	switch level {
	case zapcore.DebugLevel:
		return ports.LevelDebug
	case zapcore.InfoLevel:
		return ports.LevelInfo
	case zapcore.WarnLevel:
		return ports.LevelWarn
	default:
		return ports.LevelError
	}
}

var _ ports.Logger = (*ZapLogger)(nil)
