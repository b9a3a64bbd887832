package tracing

import (
	"context"
	"testing"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(Options{Enabled: false, Service: "wellnest"})
	if err != nil {
		t.Fatalf("disabled tracing must not error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown must not error: %v", err)
	}
}

func TestInit_Enabled(t *testing.T) {
	// The exporter connects lazily, so pointing at a dead port still
	// initializes cleanly.
	shutdown, err := Init(Options{
		Enabled:    true,
		Service:    "wellnest",
		Endpoint:   "localhost:14318",
		SampleRate: 0.5,
	})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() { tracer = nil }()

	if err := shutdown(context.Background()); err != nil {
		t.Logf("shutdown error without a collector: %v", err)
	}
}

func TestStartSpan_BeforeInit(t *testing.T) {
	tracer = nil

	ctx, span := StartSpan(context.Background(), "cache.producer")
	if ctx == nil || span == nil {
		t.Fatal("StartSpan must work before Init")
	}
	span.End()
}

func TestStartSpan_NestsUnderParent(t *testing.T) {
	tracer = nil

	ctx, parent := StartSpan(context.Background(), "forum.list_posts")
	defer parent.End()

	childCtx, child := StartSpan(ctx, "aiapi.chat")
	if childCtx == nil || child == nil {
		t.Fatal("expected a child span")
	}
	child.End()
}
