package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garrycui/wellnest/internal/cache"
)

func TestCachePayload(t *testing.T) {
	pc, err := cache.NewPayloadCache(1, 100, time.Minute)
	if err != nil {
		t.Fatalf("failed to create payload cache: %v", err)
	}
	defer pc.Close()

	calls := 0
	handler := CachePayload(pc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tutorials":[]}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tutorials?category=sleep", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, httptest.NewRequest(http.MethodGet, "/api/tutorials?category=sleep", nil))
	if rr2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr2.Code)
	}
	if rr2.Header().Get("X-Payload-Cache") != "hit" {
		t.Error("expected second response served from payload cache")
	}
	if rr2.Body.String() != `{"tutorials":[]}` {
		t.Errorf("unexpected cached body: %s", rr2.Body.String())
	}
	if calls != 1 {
		t.Errorf("expected 1 handler call, got %d", calls)
	}

	// A different query string misses.
	rr3 := httptest.NewRecorder()
	handler.ServeHTTP(rr3, httptest.NewRequest(http.MethodGet, "/api/tutorials?category=focus", nil))
	if calls != 2 {
		t.Errorf("expected distinct URIs to have distinct slots, got %d calls", calls)
	}
}

func TestCachePayload_SkipsErrors(t *testing.T) {
	pc, err := cache.NewPayloadCache(1, 100, time.Minute)
	if err != nil {
		t.Fatalf("failed to create payload cache: %v", err)
	}
	defer pc.Close()

	calls := 0
	handler := CachePayload(pc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tutorials/missing", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	}
	if calls != 2 {
		t.Errorf("error responses must not be cached, got %d calls", calls)
	}
}
