// Package logger is a thin slog wrapper: one process-wide logger, JSON in
// production, request-id aware when given a context.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// ContextKey types the context keys this package reads.
type ContextKey string

// RequestIDKey carries the request id assigned by the middleware.
const RequestIDKey ContextKey = "request_id"

var defaultLogger *slog.Logger

// Init sets the process logger at the given level. Production (ENV) gets
// JSON lines for ingestion, everything else gets readable text.
func Init(levelStr string) {
	opts := &slog.HandlerOptions{Level: parseLevel(levelStr)}

	var handler slog.Handler
	if os.Getenv("ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	if defaultLogger == nil {
		Init("info")
	}
	return defaultLogger
}

// withRequestID attaches the request id from ctx when present.
func withRequestID(ctx context.Context) *slog.Logger {
	l := get()
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		l = l.With("request_id", reqID)
	}
	return l
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// ErrorContext logs at error level with the request id from ctx.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	withRequestID(ctx).Error(msg, args...)
}

// WarnContext logs at warn level with the request id from ctx.
func WarnContext(ctx context.Context, msg string, args ...any) {
	withRequestID(ctx).Warn(msg, args...)
}
