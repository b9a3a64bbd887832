package api

import (
	"bytes"
	"net/http"

	"github.com/garrycui/wellnest/internal/cache"
)

// payloadRecorder buffers a response so it can be stored after serving.
type payloadRecorder struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (w *payloadRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *payloadRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// CachePayload serves rendered JSON for global, viewer-independent GET
// routes (the tutorial catalog) straight from the payload cache, skipping
// the handler and re-encoding entirely on a hit. Keyed by the full request
// URI, so every cursor/search combination has its own slot and ristretto's
// size bound decides what stays hot.
func CachePayload(pc *cache.PayloadCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := r.URL.RequestURI()
			if data, ok := pc.Get(key); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Payload-Cache", "hit")
				w.WriteHeader(http.StatusOK)
				w.Write(data)
				return
			}

			rec := &payloadRecorder{ResponseWriter: w, buf: &bytes.Buffer{}, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK {
				pc.Set(key, rec.buf.Bytes(), 0)
			}
		})
	}
}
