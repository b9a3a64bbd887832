// Package errorreporting wraps Sentry. A wellness app's errors routinely
// carry user-entered text, so everything outbound passes through a PII
// scrubber first.
package errorreporting

import (
	"fmt"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"
)

var scrubbers = []*regexp.Regexp{
	// email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	// bearer tokens
	regexp.MustCompile(`bearer\s+[a-zA-Z0-9_-]{20,}`),
	// api keys, tokens, secrets in key=value form
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret)["\s:=]+[a-zA-Z0-9_-]{16,}`),
	// IP addresses
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
}

var enabled bool

// Options come from config; an empty DSN leaves reporting off.
type Options struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// Init configures the Sentry client. With no DSN it is a silent no-op so
// local development needs no Sentry account.
func Init(opts Options) error {
	if opts.DSN == "" {
		return nil
	}

	release := opts.Release
	if release == "" {
		release = "dev"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          release,
		TracesSampleRate: opts.SampleRate,
		BeforeSend:       beforeSend,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	enabled = true
	return nil
}

// IsSentryEnabled reports whether Init configured a real client.
func IsSentryEnabled() bool { return enabled }

// beforeSend scrubs PII from every outbound event and strips request data
// that could identify a user.
func beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	for i := range event.Exception {
		event.Exception[i].Value = ScrubPII(event.Exception[i].Value)
	}
	if event.Message != "" {
		event.Message = ScrubPII(event.Message)
	}
	for key, value := range event.Extra {
		if str, ok := value.(string); ok {
			event.Extra[key] = ScrubPII(str)
		}
	}

	if event.Request != nil {
		if event.Request.Headers != nil {
			delete(event.Request.Headers, "Authorization")
			delete(event.Request.Headers, "Cookie")
			delete(event.Request.Headers, "X-User-ID")
		}
		event.Request.QueryString = ""
	}

	return event
}

// ScrubPII redacts emails, tokens, keys and addresses from a string.
func ScrubPII(text string) string {
	for _, pattern := range scrubbers {
		text = pattern.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}

// CaptureError reports an error. Nil errors are ignored.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush blocks until buffered events are sent or the timeout passes.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
