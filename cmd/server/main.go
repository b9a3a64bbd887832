package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/garrycui/wellnest/internal/config"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/errorreporting"
	"github.com/garrycui/wellnest/internal/logger"
	"github.com/garrycui/wellnest/internal/server"
	"github.com/garrycui/wellnest/internal/tracing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, falling back to system env")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	if err := errorreporting.Init(errorreporting.Options{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     cfg.SentryRelease,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		logger.Warn("Sentry init failed", "error", err)
	}
	defer errorreporting.Flush(2 * time.Second)

	shutdownTracing, err := tracing.Init(tracing.Options{
		Enabled:    cfg.OTELEnabled,
		Service:    "wellnest",
		Endpoint:   cfg.OTELEndpoint,
		SampleRate: cfg.OTELSampleRate,
	})
	if err != nil {
		logger.Warn("Tracing init failed", "error", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Error("DATABASE_URL not set")
		os.Exit(1)
	}
	queries, err := db.Init(dbURL)
	if err != nil {
		logger.Error("DB init failed", "error", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	srv, err := server.New(queries, ":"+port)
	if err != nil {
		logger.Error("Server init failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown error", "error", err)
		}
	}
}
