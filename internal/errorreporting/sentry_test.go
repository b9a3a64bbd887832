package errorreporting

import (
	"errors"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestScrubPII(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:        "email in a chat error",
			input:       "assistant call failed for garry.cui@wellnest.io",
			contains:    []string{"assistant call failed for", "[REDACTED]"},
			notContains: []string{"garry.cui@wellnest.io"},
		},
		{
			name:        "bearer token",
			input:       "upstream rejected bearer abc123def456ghi789jkl",
			contains:    []string{"upstream rejected", "[REDACTED]"},
			notContains: []string{"abc123def456ghi789jkl"},
		},
		{
			name:        "api key assignment",
			input:       "api_key: sk_live_1234567890abcdef",
			contains:    []string{"[REDACTED]"},
			notContains: []string{"sk_live_1234567890abcdef"},
		},
		{
			name:        "client address",
			input:       "rate limited 10.0.0.17",
			contains:    []string{"rate limited", "[REDACTED]"},
			notContains: []string{"10.0.0.17"},
		},
		{
			name:     "clean message untouched",
			input:    "post cache invalidation took 3ms",
			contains: []string{"post cache invalidation took 3ms"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScrubPII(tt.input)
			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("scrubbed text should contain %q, got: %s", s, result)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(result, s) {
					t.Errorf("scrubbed text should not contain %q, got: %s", s, result)
				}
			}
		})
	}
}

func TestInit_NoDSNIsNoOp(t *testing.T) {
	if err := Init(Options{Environment: "test"}); err != nil {
		t.Errorf("Init without a DSN must not error: %v", err)
	}
	if IsSentryEnabled() {
		t.Error("reporting must stay off without a DSN")
	}
}

func TestInit_WithDSN(t *testing.T) {
	err := Init(Options{
		DSN:         "https://publickey@o0.ingest.sentry.io/0",
		Environment: "test",
		Release:     "v0.1.0",
		SampleRate:  1.0,
	})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !IsSentryEnabled() {
		t.Error("reporting should be on after a successful Init")
	}
	t.Cleanup(func() {
		enabled = false
		sentry.Flush(0)
	})
}

func TestBeforeSend_ScrubsEverything(t *testing.T) {
	event := &sentry.Event{
		Message: "sending reply to maria@wellnest.io failed",
		Exception: []sentry.Exception{
			{Value: "auth failed: bearer abc123def456ghi789jkl"},
		},
		Extra: map[string]interface{}{
			"recipient": "maria@wellnest.io",
		},
		Request: &sentry.Request{
			Headers: map[string]string{
				"Authorization": "Bearer secret-token",
				"X-User-ID":     "user_42",
				"User-Agent":    "wellnest-backend/0.1",
			},
			QueryString: "token=secret123",
		},
	}

	result := beforeSend(event, nil)

	if strings.Contains(result.Message, "maria@wellnest.io") {
		t.Error("email must be scrubbed from the message")
	}
	if strings.Contains(result.Exception[0].Value, "abc123def456ghi789jkl") {
		t.Error("token must be scrubbed from the exception")
	}
	if v, ok := result.Extra["recipient"].(string); ok && strings.Contains(v, "maria@wellnest.io") {
		t.Error("email must be scrubbed from extra data")
	}
	if result.Request.Headers["Authorization"] != "" {
		t.Error("Authorization header must be dropped")
	}
	if result.Request.Headers["X-User-ID"] != "" {
		t.Error("the identity header must be dropped")
	}
	if result.Request.Headers["User-Agent"] != "wellnest-backend/0.1" {
		t.Error("harmless headers must survive")
	}
	if result.Request.QueryString != "" {
		t.Error("query strings must be dropped")
	}
}

func TestCaptureError_NilSafe(t *testing.T) {
	CaptureError(nil)
	CaptureError(errors.New("db down"))
}
