package handlers

import (
	"net/http"
	"strings"

	"github.com/garrycui/wellnest/internal/apierr"
	"github.com/garrycui/wellnest/internal/config"
	"github.com/garrycui/wellnest/internal/store"
)

// CacheAdminHandler exposes registry cache administration endpoints.
type CacheAdminHandler struct {
	caches *store.Caches
}

// NewCacheAdminHandler creates a new cache admin handler.
func NewCacheAdminHandler(caches *store.Caches) *CacheAdminHandler {
	return &CacheAdminHandler{caches: caches}
}

// authorized checks the admin bearer token. A server with no token
// configured refuses all admin calls.
func (h *CacheAdminHandler) authorized(r *http.Request) bool {
	token := config.Load().AdminAPIToken
	if token == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ") == token
}

// InvalidateCache clears every registry cache.
// POST /api/admin/cache/invalidate
func (h *CacheAdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		apierr.WriteErrorWithContext(w, r, apierr.AuthForbidden(""))
		return
	}

	h.caches.ClearAll()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "All caches invalidated",
	})
}

// GetCacheStats returns per-cache statistics.
// GET /api/admin/cache/stats
func (h *CacheAdminHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		apierr.WriteErrorWithContext(w, r, apierr.AuthForbidden(""))
		return
	}

	snapshots := h.caches.Snapshots()
	out := make(map[string]map[string]interface{}, len(snapshots))
	for name, snap := range snapshots {
		out[name] = map[string]interface{}{
			"hits":      snap.Hits,
			"misses":    snap.Misses,
			"evictions": snap.Evictions,
			"items":     snap.Items,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
