package aiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/garrycui/wellnest/internal/circuitbreaker"
	"github.com/garrycui/wellnest/internal/config"
	"github.com/garrycui/wellnest/internal/httpx"
	"github.com/garrycui/wellnest/internal/metrics"
	"github.com/garrycui/wellnest/internal/model"
	"github.com/garrycui/wellnest/internal/tracing"
)

// ErrUnavailable is returned when the circuit breaker has the assistant API
// marked as down.
var ErrUnavailable = circuitbreaker.ErrCircuitOpen

// Client calls the external assistant and recommendation API. All requests
// go through a shared token-bucket rate limiter, light retries with
// Retry-After support, and a circuit breaker so a struggling upstream does
// not take chat handling down with it.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	baseURL    string
	apiKey     string
	userAgent  string
}

// NewClient builds a client from config.
func NewClient() *Client {
	cfg := config.Load()
	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.AIRPS), cfg.AIBurstSize),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "aiapi",
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
		}),
		baseURL:   cfg.AIBaseURL,
		apiKey:    cfg.AIAPIKey,
		userAgent: cfg.UserAgent,
	}
}

type chatRequest struct {
	Messages []chatTurn `json:"messages"`
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Content string `json:"content"`
}

type recommendRequest struct {
	UserID      string          `json:"user_id"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	Assessment  json.RawMessage `json:"assessment,omitempty"`
}

type recommendResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// Chat sends the conversation so far and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, messages []model.ChatMessage) (string, error) {
	turns := make([]chatTurn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, chatTurn{Role: m.Role, Content: m.Content})
	}

	var out chatResponse
	if err := c.post(ctx, "chat", "/v1/chat", chatRequest{Messages: turns}, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// Recommend returns personalized content suggestions for the user, based on
// their stored preferences and latest assessment.
func (c *Client) Recommend(ctx context.Context, user model.User, assessment *model.Assessment) ([]model.Recommendation, error) {
	req := recommendRequest{
		UserID:      user.ID,
		Preferences: user.Preferences,
	}
	if assessment != nil {
		req.Assessment = assessment.Answers
	}

	var out recommendResponse
	if err := c.post(ctx, "recommend", "/v1/recommendations", req, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// post runs one operation through the breaker, limiter and retry wrapper.
func (c *Client) post(ctx context.Context, operation, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	ctx, span := tracing.StartSpan(ctx, "aiapi."+operation)
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.AIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	return c.breaker.Call(func() error {
		build := func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			if c.userAgent != "" {
				req.Header.Set("User-Agent", c.userAgent)
			}
			return req, nil
		}
		pre := func(ctx context.Context, attempt int) error {
			// Only count a wait when the limiter actually makes us pause.
			res := c.limiter.Reserve()
			if !res.OK() {
				return fmt.Errorf("rate limiter cannot satisfy request")
			}
			delay := res.Delay()
			if delay == 0 {
				return nil
			}
			metrics.AIRateLimitWaits.Inc()
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				res.Cancel()
				return ctx.Err()
			}
		}

		resp, err := httpx.DoWithRetry(c.httpClient, build, pre)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return ClassifyError(resp)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s response: %w", operation, err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		return nil
	})
}
