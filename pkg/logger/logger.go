// Package logger wraps zap with a context-carried logger. Dashboard handlers and
// data relations log through the package-level helpers so that request scoped
// fields (request id, session, dashboard) follow the call chain.
package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DevelopmentEnvironment configures a human readable, debug level logger.
	DevelopmentEnvironment = "development"

	// ProductionEnvironment configures a JSON, info level logger.
	ProductionEnvironment = "production"

	// localContext is the dashboard context used on developer machines.
	localContext = "local"
)

// defaultLogger is used when no logger is found in context.
var defaultLogger = zap.NewNop() //nolint: gochecknoglobals

// Setup initializes the default logger for the given environment.
func Setup(environment string) {
	if environment == ProductionEnvironment {
		defaultLogger, _ = zap.NewProduction()

		return
	}

	defaultLogger, _ = zap.NewDevelopment()
}

// EnvironmentFor maps a dashboard context (local, dev, test, staging, prod) to
// a logger environment. Only the local context logs in development mode.
func EnvironmentFor(dashboardContext string) string {
	if dashboardContext == "" || dashboardContext == localContext {
		return DevelopmentEnvironment
	}

	return ProductionEnvironment
}

type key struct{}

// Get retrieves the logger stored in ctx, or the default logger.
func Get(ctx context.Context) *zap.Logger {
	if logger, _ := ctx.Value(key{}).(*zap.Logger); logger != nil {
		return logger
	}

	return defaultLogger
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, logger)
}

// WithFields returns a copy of ctx whose logger carries the given fields.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}

// IsDebug reports whether the logger in ctx is at debug level.
func IsDebug(ctx context.Context) bool {
	return Get(ctx).Level() == zap.DebugLevel
}

// Timed starts a timer for the named operation. Calling the returned func logs
// the elapsed time at info level.
//
//	defer logger.Timed(ctx, "summary_cards")()
func Timed(ctx context.Context, name string) func() {
	start := time.Now()

	return func() {
		Get(ctx).Info("timing",
			zap.String("operation", name),
			zap.Float64("elapsed_seconds", time.Since(start).Seconds()),
		)
	}
}

func Debug(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Debug(msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Error(msg, fields...)
}

func Fatal(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Fatal(msg, fields...)
}
