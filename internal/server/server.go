// Package server assembles the Wellnest API: database, assistant client,
// cache registry, stores, router and middleware chain.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/garrycui/wellnest/internal/aiapi"
	"github.com/garrycui/wellnest/internal/api"
	"github.com/garrycui/wellnest/internal/api/handlers"
	"github.com/garrycui/wellnest/internal/cache"
	"github.com/garrycui/wellnest/internal/config"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/logger"
	"github.com/garrycui/wellnest/internal/metrics"
	"github.com/garrycui/wellnest/internal/middleware"
	"github.com/garrycui/wellnest/internal/store"
)

// statsInterval is how often cache statistics are published to Prometheus.
const statsInterval = 15 * time.Second

// Server owns the long-lived pieces of the process.
type Server struct {
	cfg         *config.Config
	queries     *db.Queries
	caches      *store.Caches
	payloads    *cache.PayloadCache
	hub         *handlers.Hub
	collector   *metrics.Collector
	rateLimiter *middleware.RateLimiter
	httpServer  *http.Server
}

// New builds the server from config and an initialized db layer.
func New(queries *db.Queries, addr string) (*Server, error) {
	cfg := config.Load()

	caches := store.NewCaches(cfg)
	payloads, err := cache.NewPayloadCache(int64(cfg.PayloadCacheMB), int64(cfg.PayloadCacheEntries), cfg.PayloadCacheTTL)
	if err != nil {
		return nil, err
	}

	ai := aiapi.NewClient()
	hub := handlers.NewHub()

	router := api.NewRouter(api.Stores{
		Forum:     store.NewForumStore(queries, caches),
		Tutorials: store.NewTutorialStore(queries, caches),
		Chat:      store.NewChatStore(queries, ai, caches),
		Users:     store.NewUserStore(queries, ai, caches),
		Caches:    caches,
		Payloads:  payloads,
	}, hub)

	s := &Server{
		cfg:       cfg,
		queries:   queries,
		caches:    caches,
		payloads:  payloads,
		hub:       hub,
		collector: metrics.NewCollector(caches.Snapshots, statsInterval),
	}

	var handler http.Handler = router
	handler = middleware.Compress(middleware.ETag(handler))
	handler = middleware.ValidateRequestBody(handler)
	if cfg.EnableRateLimit {
		s.rateLimiter = middleware.NewRateLimiter(
			cfg.RateLimitGlobal, cfg.RateLimitGlobalBurst,
			cfg.RateLimitPerIP, cfg.RateLimitPerIPBurst,
		)
		handler = s.rateLimiter.Limit(handler)
	}
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORSAllowedOrigins
	handler = middleware.CORS(corsConfig)(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.RecoverWithSentry(handler)
	handler = middleware.RequestID(handler)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Start launches the event hub, the stats collector and the HTTP listener.
// It blocks until the listener stops.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)
	go s.collector.Start(ctx)

	logger.Info("Server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.collector.Stop()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.payloads.Close()
	return err
}
