// Package logctx carries a zap logger through contexts.
//
// Unlike implementations that panic when no logger is attached, a missing
// logger degrades to a no-op one: the presence monitor must never interrupt
// its host, so logging has to be safe to call from any code path.
package logctx

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loggerKey holds the context key used for loggers.
type loggerKey struct{}

// WithLogger returns a new context derived from ctx that
// is associated with the given logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithFields returns a new context derived from ctx
// that has a logger that always logs the given fields.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Logger(ctx).With(fields...))
}

// Named returns a new context whose logger is named after the given
// subsystem, in the zap dot-separated convention.
func Named(ctx context.Context, name string) context.Context {
	return WithLogger(ctx, Logger(ctx).Named(name))
}

// Logger returns the logger associated with the given context. If the
// context carries no logger, a no-op logger is returned.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	logger, _ := ctx.Value(loggerKey{}).(*zap.Logger)
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func Debug(ctx context.Context, msg string, fields ...zapcore.Field) {
	loggerForCaller(ctx).Debug(msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...zapcore.Field) {
	loggerForCaller(ctx).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zapcore.Field) {
	loggerForCaller(ctx).Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zapcore.Field) {
	loggerForCaller(ctx).Error(msg, fields...)
}

func loggerForCaller(ctx context.Context) *zap.Logger {
	return Logger(ctx).WithOptions(zap.AddCaller(), zap.AddCallerSkip(1))
}
