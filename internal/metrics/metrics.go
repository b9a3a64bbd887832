package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry cache metrics, labeled by cache family name
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of entries removed by cache sweeps",
		},
		[]string{"cache"},
	)

	CacheItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_items",
			Help: "Current number of entries per cache",
		},
		[]string{"cache"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Total number of targeted cache invalidations",
		},
		[]string{"cache", "scope"}, // scope: detail, listing, userview
	)

	// Assistant/recommendation API client metrics
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_http_requests_total",
			Help: "Total number of HTTP requests made to the assistant API",
		},
		[]string{"status"}, // status: success, retry, error
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Duration of assistant API operations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"}, // operation: chat, recommend
	)

	AIHTTPRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_http_retries_total",
			Help: "Total number of assistant API request retries",
		},
	)

	AIRetryAfterWaits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ai_retry_after_wait_seconds",
			Help:    "Duration of Retry-After waits in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	AIRateLimitWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_rate_limit_waits_total",
			Help: "Total number of times the client waited for the local rate limit",
		},
	)

	ResponseCacheServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_responses_served_from_cache_total",
			Help: "Chat responses answered from the response cache instead of the assistant API",
		},
	)

	// HTTP server metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Database operation metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	DBOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_operation_errors_total",
			Help: "Total number of database operation errors",
		},
		[]string{"operation"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"component"},
	)

	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_trips_total",
			Help: "Total number of circuit breaker trips",
		},
		[]string{"component"},
	)

	// Websocket event feed metrics
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)

	WebsocketEventsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_events_sent_total",
			Help: "Total number of forum events broadcast to websocket clients",
		},
	)
)
