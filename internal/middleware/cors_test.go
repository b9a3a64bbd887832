package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func corsHandler(cfg *CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_AllowedOriginEchoed(t *testing.T) {
	handler := corsHandler(&CORSConfig{
		AllowedOrigins: []string{"https://app.wellnest.io"},
	})

	req := httptest.NewRequest("GET", "/v1/forum/posts", nil)
	req.Header.Set("Origin", "https://app.wellnest.io")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.wellnest.io" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin so caches keep origins apart", got)
	}
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	handler := corsHandler(&CORSConfig{
		AllowedOrigins: []string{"https://app.wellnest.io"},
	})

	req := httptest.NewRequest("GET", "/v1/forum/posts", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin must not be allowed, got %q", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("request itself still reaches the handler, got %d", w.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := corsHandler(&CORSConfig{
		AllowedOrigins: []string{"https://app.wellnest.io"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "X-User-ID"},
		MaxAge:         600,
	})

	req := httptest.NewRequest("OPTIONS", "/v1/forum/posts", nil)
	req.Header.Set("Origin", "https://app.wellnest.io")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight should answer 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "DELETE") {
		t.Errorf("Allow-Methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-User-ID") {
		t.Errorf("Allow-Headers = %q, must include X-User-ID", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Max-Age = %q", got)
	}
}

func TestCORS_WildcardSubdomain(t *testing.T) {
	handler := corsHandler(&CORSConfig{
		AllowedOrigins: []string{"*.wellnest.io"},
	})

	cases := []struct {
		origin  string
		allowed bool
	}{
		{"https://staging.wellnest.io", true},
		{"https://app.wellnest.io", true},
		{"https://wellnest.io.evil.example", false},
		{"https://notwellnest.io", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/v1/tutorials", nil)
		req.Header.Set("Origin", tc.origin)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		got := w.Header().Get("Access-Control-Allow-Origin") != ""
		if got != tc.allowed {
			t.Errorf("origin %q: allowed=%v, want %v", tc.origin, got, tc.allowed)
		}
	}
}

func TestCORS_Credentials(t *testing.T) {
	handler := corsHandler(&CORSConfig{
		AllowedOrigins:   []string{"https://app.wellnest.io"},
		AllowCredentials: true,
	})

	req := httptest.NewRequest("GET", "/v1/users/u1/preferences", nil)
	req.Header.Set("Origin", "https://app.wellnest.io")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}

func TestCORS_ExposedHeadersOnActualRequests(t *testing.T) {
	handler := corsHandler(nil) // default config

	req := httptest.NewRequest("GET", "/v1/forum/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	exposed := w.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"X-Request-ID", "X-Payload-Cache"} {
		if !strings.Contains(exposed, h) {
			t.Errorf("Expose-Headers %q missing %s", exposed, h)
		}
	}
}

func TestOriginAllowed(t *testing.T) {
	if !originAllowed("https://anything.example", []string{"*"}) {
		t.Error("* must match every origin")
	}
	if originAllowed("https://app.wellnest.io", nil) {
		t.Error("empty allow list must match nothing")
	}
}
