// Package circuitbreaker guards the assistant API client: once the upstream
// fails repeatedly the breaker opens and chat degrades immediately instead of
// stacking up doomed requests.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/garrycui/wellnest/internal/metrics"
)

// ErrCircuitOpen is returned without invoking the wrapped call while the
// breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of the breaker. Closed passes calls through, Open rejects them,
// HalfOpen lets probes through after the cool-down.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config tunes one breaker. Zero fields get conservative defaults.
type Config struct {
	Name             string
	FailureThreshold int           // consecutive failures that open the breaker
	SuccessThreshold int           // half-open successes needed to close again
	Timeout          time.Duration // cool-down before probing
}

// CircuitBreaker tracks consecutive outcomes of a guarded call.
type CircuitBreaker struct {
	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time

	name             string
	failureThreshold int
	successThreshold int
	timeout          time.Duration
}

// New builds a closed breaker.
func New(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(float64(StateClosed))

	return &CircuitBreaker{
		state:            StateClosed,
		name:             cfg.Name,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		timeout:          cfg.Timeout,
	}
}

// Call runs fn unless the breaker is open. fn's error both propagates to the
// caller and counts against the breaker.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}

	if err := fn(); err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

// GetState reports the current state.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// allow decides whether a call may proceed, moving Open to HalfOpen once the
// cool-down has passed.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.openedAt) <= cb.timeout {
			return false
		}
		cb.transition(StateHalfOpen)
	}
	return true
}

func (cb *CircuitBreaker) onFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.successes = 0
	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.trip()
		}
	case StateHalfOpen:
		// A failed probe reopens immediately.
		cb.trip()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.failures = 0
			cb.successes = 0
			cb.transition(StateClosed)
		}
	}
}

// trip opens the breaker. Callers hold the lock.
func (cb *CircuitBreaker) trip() {
	cb.failures = 0
	cb.openedAt = time.Now()
	metrics.CircuitBreakerTrips.WithLabelValues(cb.name).Inc()
	cb.transition(StateOpen)
}

// transition records a state change. Callers hold the lock.
func (cb *CircuitBreaker) transition(next State) {
	cb.state = next
	if next == StateHalfOpen {
		cb.successes = 0
	}
	metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(float64(next))
}
