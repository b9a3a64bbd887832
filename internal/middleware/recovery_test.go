package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecover_PassesThroughHealthyHandler(t *testing.T) {
	handler := RecoverWithSentry(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRecover_PanicBecomesJSONError(t *testing.T) {
	handler := RecoverWithSentry(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("mood store exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/mood", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("panic response must be JSON: %v (body %q)", err, w.Body.String())
	}
	if body.Error.Code != "SYSTEM_INTERNAL" {
		t.Errorf("expected SYSTEM_INTERNAL code, got %q", body.Error.Code)
	}
}

func TestRecover_ErrorValuePanic(t *testing.T) {
	handler := RecoverWithSentry(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("nil pointer in recommendations"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/users/u1/recommendations", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
