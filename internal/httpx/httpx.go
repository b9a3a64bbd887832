// Package httpx wraps outbound HTTP with bounded retries. The assistant API
// is the only upstream this service talks to, so the policy is tuned for it:
// retry transport errors, 429 and 5xx, honor Retry-After, give up fast on
// everything else.
package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/garrycui/wellnest/internal/config"
	"github.com/garrycui/wellnest/internal/logger"
	"github.com/garrycui/wellnest/internal/metrics"
)

// RequestBuilder produces a fresh request per attempt. Bodies cannot be
// replayed from a spent reader, so the caller rebuilds instead of reusing.
type RequestBuilder func() (*http.Request, error)

// PreAttempt runs before every attempt; returning an error aborts the call.
// The assistant client uses it for rate limiting.
type PreAttempt func(ctx context.Context, attempt int) error

// DoWithRetry issues the request with up to HTTP_MAX_RETRIES attempts.
// Status-code failures on the last attempt return the response, not an
// error; the caller classifies it. Transport failures return the error.
func DoWithRetry(client *http.Client, build RequestBuilder, pre PreAttempt) (*http.Response, error) {
	cfg := config.Load()
	maxAttempts := cfg.HTTPMaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if pre != nil {
			if err := pre(context.Background(), attempt); err != nil {
				return nil, err
			}
		}
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			metrics.AIRequests.WithLabelValues("error").Inc()
			last := attempt == maxAttempts ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
			if last {
				return nil, err
			}
			metrics.AIHTTPRetries.Inc()
		} else {
			if !retryableStatus(resp.StatusCode) {
				metrics.AIRequests.WithLabelValues("success").Inc()
				return resp, nil
			}
			metrics.AIRequests.WithLabelValues("retry").Inc()
			if attempt == maxAttempts {
				return resp, nil
			}
			if wait, ok := retryAfter(resp); ok {
				resp.Body.Close()
				metrics.AIRetryAfterWaits.Observe(wait.Seconds())
				if cfg.LogHTTPRetries {
					logger.Debug("honoring Retry-After", "wait", wait, "url", req.URL.String())
				}
				time.Sleep(wait)
				continue
			}
			resp.Body.Close()
			metrics.AIHTTPRetries.Inc()
		}

		// Linear backoff with jitter.
		delay := cfg.HTTPRetryBase*time.Duration(attempt) + time.Duration(rand.Intn(200))*time.Millisecond
		if cfg.LogHTTPRetries {
			logger.Debug("retrying upstream call", "attempt", attempt, "backoff", delay)
		}
		time.Sleep(delay)
	}
	return nil, errors.New("exhausted retries")
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// retryAfter parses the Retry-After header, either delta-seconds or an HTTP
// date. A date already in the past reports no wait.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(ra); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(ra); err == nil {
		if delta := time.Until(at); delta > 0 {
			return delta, true
		}
	}
	return 0, false
}
