// Package handlers contains the HTTP handlers for the Wellnest API. Handlers
// are thin: they parse and validate the request, call a store, and encode the
// result. All caching and invalidation lives in the stores.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/garrycui/wellnest/internal/apierr"
)

// userIDHeader carries the authenticated user id, set by the gateway in
// front of this service.
const userIDHeader = "X-User-ID"

// viewerID returns the requesting user's id, or "" for anonymous reads.
func viewerID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}

// requireUser returns the requesting user's id, writing a 401 when absent.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := viewerID(r)
	if id == "" {
		apierr.WriteErrorWithContext(w, r, apierr.AuthMissing(""))
		return "", false
	}
	return id, true
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidJSON())
		return false
	}
	return true
}
