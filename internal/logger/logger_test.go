package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	defaultLogger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	t.Cleanup(func() { defaultLogger = nil })
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLazyInit(t *testing.T) {
	defaultLogger = nil
	t.Cleanup(func() { defaultLogger = nil })

	// Logging before Init must not panic; get() falls back to info level.
	Info("cache registry built", "caches", 10)
	if defaultLogger == nil {
		t.Fatal("first log call should have initialized the logger")
	}
}

func TestLevelsReachOutput(t *testing.T) {
	buf := captureOutput(t)

	Debug("sweep removed entries", "cache", "response", "removed", 2)
	Info("server listening", "addr", ":8000")
	Warn("assistant retry", "attempt", 2)
	Error("db init failed", "error", "connection refused")

	out := buf.String()
	for _, want := range []string{"sweep removed entries", "server listening", "assistant retry", "db init failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestErrorContext_IncludesRequestID(t *testing.T) {
	buf := captureOutput(t)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req_7f3a")
	ErrorContext(ctx, "panic recovered", "path", "/api/posts")

	if !strings.Contains(buf.String(), "req_7f3a") {
		t.Error("request id from context should appear in the log line")
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Error("message missing from the log line")
	}
}

func TestErrorContext_NoRequestID(t *testing.T) {
	buf := captureOutput(t)

	ErrorContext(context.Background(), "shutdown error")
	if strings.Contains(buf.String(), "request_id") {
		t.Error("no request_id attribute expected without one in context")
	}
}
