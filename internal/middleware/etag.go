package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"
)

const (
	// etagCacheTTL defines how long clients should cache responses with ETags
	etagCacheTTL = 30 * time.Second
	// etagStaleWhileRevalidate defines how long clients can use stale content while revalidating
	etagStaleWhileRevalidate = 120 * time.Second
)

// etagResponseWriter captures the response body to generate an ETag.
type etagResponseWriter struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (w *etagResponseWriter) WriteHeader(status int) {
	w.status = status
}

func (w *etagResponseWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

// ETag returns a middleware that adds ETag support to successful GET
// responses. The tag is derived from the response body, so a listing served
// from cache produces the same tag until its entry is invalidated, and
// clients holding a matching If-None-Match get 304 Not Modified.
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bytes.Buffer{}
		etw := &etagResponseWriter{
			ResponseWriter: w,
			buf:            buf,
			status:         http.StatusOK,
		}

		next.ServeHTTP(etw, r)

		// Only tag successful responses; errors pass through untagged.
		if etw.status != http.StatusOK {
			w.WriteHeader(etw.status)
			w.Write(buf.Bytes())
			return
		}

		hash := sha256.Sum256(buf.Bytes())
		etag := fmt.Sprintf(`"%x"`, hash[:16])

		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d",
			int(etagCacheTTL.Seconds()), int(etagStaleWhileRevalidate.Seconds())))

		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.WriteHeader(etw.status)
		w.Write(buf.Bytes())
	})
}
