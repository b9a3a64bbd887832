// Package tracing wires OpenTelemetry with an OTLP/HTTP exporter. Spans are
// placed around cache producer fetches and assistant API calls, which is
// where this service actually spends its time.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// Options configures the exporter. They come from config rather than being
// read from the environment here, so tests and callers see one source of
// truth.
type Options struct {
	Enabled    bool
	Service    string
	Version    string
	Endpoint   string  // host:port of the OTLP/HTTP collector
	SampleRate float64 // 0.0 to 1.0
}

// Init sets up the tracer provider and returns a shutdown function. When
// tracing is disabled the shutdown function is a no-op and spans come from
// the global no-op tracer.
func Init(opts Options) (func(context.Context) error, error) {
	if !opts.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	ctx := context.Background()

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}
	// WithEndpoint wants "host:port"; the scheme is implied by WithInsecure.
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.Service),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(opts.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(opts.Service)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// StartSpan starts a span on the service tracer. Before Init (or with
// tracing disabled) it falls back to the global no-op tracer, so call sites
// never need to guard.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tracer == nil {
		return otel.Tracer("noop").Start(ctx, name, opts...)
	}
	return tracer.Start(ctx, name, opts...)
}
