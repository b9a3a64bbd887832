package config

import (
	"os"
	"strings"
	"time"

	"github.com/garrycui/wellnest/internal/utils"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	UserAgent      string
	HTTPMaxRetries int
	HTTPRetryBase  time.Duration
	HTTPTimeout    time.Duration
	LogHTTPRetries bool

	DBStatementTimeout time.Duration

	// Assistant/recommendation API
	AIBaseURL   string
	AIAPIKey    string
	AIRPS       float64 // requests per second to the assistant API
	AIBurstSize int

	// Per-family cache TTLs. Mutable families (sessions, responses) run
	// short; near-static families (tutorials) run long.
	ForumCacheTTL      time.Duration
	PostCacheTTL       time.Duration
	TutorialCacheTTL   time.Duration
	SessionCacheTTL    time.Duration
	ResponseCacheTTL   time.Duration
	UserCacheTTL       time.Duration
	AssessmentCacheTTL time.Duration
	UserViewCacheTTL   time.Duration

	// Response cache size bound
	ResponseCacheMax   int
	ResponseCacheEvict int

	// Rendered payload cache (API layer)
	PayloadCacheMB      int
	PayloadCacheEntries int
	PayloadCacheTTL     time.Duration

	// Admin API token for gating admin endpoints (Bearer token)
	AdminAPIToken string

	// Security settings
	RateLimitGlobal      float64  // requests per second globally
	RateLimitGlobalBurst int      // burst size for global rate limit
	RateLimitPerIP       float64  // requests per second per IP
	RateLimitPerIPBurst  int      // burst size for per-IP rate limit
	CORSAllowedOrigins   []string // allowed CORS origins
	EnableRateLimit      bool     // enable rate limiting middleware

	// Observability settings
	LogLevel          string  // log level: debug, info, warn, error
	OTELEnabled       bool    // enable OpenTelemetry tracing
	OTELEndpoint      string  // OpenTelemetry collector endpoint
	OTELSampleRate    float64 // trace sampling rate (0.0 to 1.0)
	SentryDSN         string  // Sentry DSN for error reporting
	SentryEnvironment string  // Sentry environment (dev, staging, production)
	SentryRelease     string  // Sentry release version
	SentrySampleRate  float64 // Sentry error sampling rate (0.0 to 1.0)
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	ua := os.Getenv("WELLNEST_USER_AGENT")
	if strings.TrimSpace(ua) == "" {
		ua = "wellnest-backend/0.1"
	}
	cached = &Config{
		UserAgent:          ua,
		HTTPMaxRetries:     utils.GetEnvAsInt("HTTP_MAX_RETRIES", 3),
		HTTPRetryBase:      utils.GetEnvAsDurationMS("HTTP_RETRY_BASE_MS", 300),
		HTTPTimeout:        utils.GetEnvAsDurationMS("HTTP_TIMEOUT_MS", 15000),
		LogHTTPRetries:     utils.GetEnvAsBool("LOG_HTTP_RETRIES", false),
		DBStatementTimeout: utils.GetEnvAsDurationMS("DB_STATEMENT_TIMEOUT_MS", 25000),

		AIBaseURL:   strings.TrimSpace(os.Getenv("AI_API_BASE_URL")),
		AIAPIKey:    strings.TrimSpace(os.Getenv("AI_API_KEY")),
		AIRPS:       utils.GetEnvAsFloat("AI_RPS", 2.0),
		AIBurstSize: utils.GetEnvAsInt("AI_BURST_SIZE", 1),

		// TTL defaults mirror how mutable each family is.
		ForumCacheTTL:      utils.GetEnvAsDurationMS("FORUM_CACHE_TTL_MS", 120000),
		PostCacheTTL:       utils.GetEnvAsDurationMS("POST_CACHE_TTL_MS", 120000),
		TutorialCacheTTL:   utils.GetEnvAsDurationMS("TUTORIAL_CACHE_TTL_MS", 1800000),
		SessionCacheTTL:    utils.GetEnvAsDurationMS("SESSION_CACHE_TTL_MS", 30000),
		ResponseCacheTTL:   utils.GetEnvAsDurationMS("RESPONSE_CACHE_TTL_MS", 600000),
		UserCacheTTL:       utils.GetEnvAsDurationMS("USER_CACHE_TTL_MS", 300000),
		AssessmentCacheTTL: utils.GetEnvAsDurationMS("ASSESSMENT_CACHE_TTL_MS", 600000),
		UserViewCacheTTL:   utils.GetEnvAsDurationMS("USER_VIEW_CACHE_TTL_MS", 300000),

		ResponseCacheMax:   utils.GetEnvAsInt("RESPONSE_CACHE_MAX_ENTRIES", 500),
		ResponseCacheEvict: utils.GetEnvAsInt("RESPONSE_CACHE_EVICT_BATCH", 100),

		PayloadCacheMB:      utils.GetEnvAsInt("PAYLOAD_CACHE_MB", 32),
		PayloadCacheEntries: utils.GetEnvAsInt("PAYLOAD_CACHE_ENTRIES", 2000),
		PayloadCacheTTL:     utils.GetEnvAsDurationMS("PAYLOAD_CACHE_TTL_MS", 30000),

		AdminAPIToken: strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN")),

		// Security settings with sensible defaults
		RateLimitGlobal:      utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL", 100.0),
		RateLimitGlobalBurst: utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitPerIP:       utils.GetEnvAsFloat("RATE_LIMIT_PER_IP", 10.0),
		RateLimitPerIPBurst:  utils.GetEnvAsInt("RATE_LIMIT_PER_IP_BURST", 20),
		EnableRateLimit:      utils.GetEnvAsBool("ENABLE_RATE_LIMIT", true),

		// Observability settings
		LogLevel:          strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		SentryDSN:         strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		SentryEnvironment: strings.TrimSpace(os.Getenv("SENTRY_ENVIRONMENT")),
		SentryRelease:     strings.TrimSpace(os.Getenv("SENTRY_RELEASE")),
		SentrySampleRate:  utils.GetEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
	}
	if cached.LogLevel == "" {
		cached.LogLevel = "info"
	}
	if cached.SentryEnvironment == "" {
		if env := os.Getenv("ENV"); env != "" {
			cached.SentryEnvironment = env
		} else {
			cached.SentryEnvironment = "development"
		}
	}

	// Parse CORS allowed origins
	corsOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if corsOrigins == "" {
		// Default to common development origins
		cached.CORSAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	} else {
		cached.CORSAllowedOrigins = strings.Split(corsOrigins, ",")
		for i := range cached.CORSAllowedOrigins {
			cached.CORSAllowedOrigins[i] = strings.TrimSpace(cached.CORSAllowedOrigins[i])
		}
	}

	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }
