package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garrycui/wellnest/internal/config"
)

func retryConfig(t *testing.T, maxRetries, baseMS string) {
	t.Helper()
	t.Setenv("HTTP_MAX_RETRIES", maxRetries)
	t.Setenv("HTTP_RETRY_BASE_MS", baseMS)
	config.ResetForTest()
	t.Cleanup(config.ResetForTest)
	config.Load()
}

func chatBuilder(url string) RequestBuilder {
	return func() (*http.Request, error) {
		return http.NewRequestWithContext(context.Background(), http.MethodPost, url+"/v1/chat", nil)
	}
}

func TestDoWithRetry_FirstTrySuccess(t *testing.T) {
	retryConfig(t, "3", "1")

	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	resp, err := DoWithRetry(&http.Client{}, chatBuilder(ts.URL), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || attempts != 1 {
		t.Errorf("expected one clean attempt, got status=%d attempts=%d", resp.StatusCode, attempts)
	}
}

func TestDoWithRetry_RecoversFrom5xx(t *testing.T) {
	retryConfig(t, "3", "1")

	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	resp, err := DoWithRetry(&http.Client{}, chatBuilder(ts.URL), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected eventual 200, got %d", resp.StatusCode)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoWithRetry_ReturnsFinal5xxResponse(t *testing.T) {
	retryConfig(t, "2", "1")

	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	resp, err := DoWithRetry(&http.Client{}, chatBuilder(ts.URL), nil)
	if err != nil {
		t.Fatalf("status failures must come back as a response: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected the last 500 back, got %d", resp.StatusCode)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestDoWithRetry_NoRetryOn4xx(t *testing.T) {
	retryConfig(t, "3", "1")

	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	resp, err := DoWithRetry(&http.Client{}, chatBuilder(ts.URL), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if attempts != 1 {
		t.Errorf("auth failures must not be retried, got %d attempts", attempts)
	}
}

func TestDoWithRetry_HonorsRetryAfterSeconds(t *testing.T) {
	retryConfig(t, "2", "1")

	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	start := time.Now()
	resp, err := DoWithRetry(&http.Client{}, chatBuilder(ts.URL), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if time.Since(start) < 900*time.Millisecond {
		t.Errorf("expected to sit out the Retry-After window, waited %v", time.Since(start))
	}
}

func TestDoWithRetry_HonorsRetryAfterDate(t *testing.T) {
	retryConfig(t, "2", "1")

	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			at := time.Now().Add(100 * time.Millisecond).UTC().Format(http.TimeFormat)
			w.Header().Set("Retry-After", at)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	resp, err := DoWithRetry(&http.Client{}, chatBuilder(ts.URL), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if attempts != 2 {
		t.Errorf("expected retry after the date passed, got %d attempts", attempts)
	}
}

func TestDoWithRetry_ContextCanceledStops(t *testing.T) {
	retryConfig(t, "3", "100")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DoWithRetry(&http.Client{}, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/v1/chat", nil)
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDoWithRetry_BuilderError(t *testing.T) {
	retryConfig(t, "2", "1")

	boom := errors.New("bad request body")
	_, err := DoWithRetry(&http.Client{}, func() (*http.Request, error) {
		return nil, boom
	}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected the builder error back, got %v", err)
	}
}

func TestDoWithRetry_PreAttemptGates(t *testing.T) {
	retryConfig(t, "3", "1")

	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	var preCalls []int
	pre := func(ctx context.Context, attempt int) error {
		preCalls = append(preCalls, attempt)
		return nil
	}

	resp, err := DoWithRetry(&http.Client{}, chatBuilder(ts.URL), pre)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if len(preCalls) != 2 || preCalls[0] != 1 || preCalls[1] != 2 {
		t.Errorf("pre hook should run before every attempt, got %v", preCalls)
	}

	// A failing pre hook aborts the whole call.
	limited := errors.New("rate limited")
	_, err = DoWithRetry(&http.Client{}, chatBuilder(ts.URL), func(context.Context, int) error {
		return limited
	})
	if !errors.Is(err, limited) {
		t.Errorf("expected the pre hook error back, got %v", err)
	}
}

func TestRetryAfter_Parsing(t *testing.T) {
	mk := func(value string) *http.Response {
		h := http.Header{}
		if value != "" {
			h.Set("Retry-After", value)
		}
		return &http.Response{Header: h}
	}

	if _, ok := retryAfter(mk("")); ok {
		t.Error("missing header should report no wait")
	}
	if wait, ok := retryAfter(mk("2")); !ok || wait != 2*time.Second {
		t.Errorf("expected 2s, got %v (ok=%v)", wait, ok)
	}
	past := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	if _, ok := retryAfter(mk(past)); ok {
		t.Error("a date in the past should report no wait")
	}
}
