package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/garrycui/wellnest/internal/apierr"
	"github.com/garrycui/wellnest/internal/errorreporting"
	"github.com/garrycui/wellnest/internal/logger"
)

// RecoverWithSentry turns a handler panic into a JSON 500 instead of a
// dropped connection, and reports it when Sentry is configured.
func RecoverWithSentry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.ErrorContext(r.Context(), "panic recovered",
				"error", rec,
				"stack", string(debug.Stack()),
				"method", r.Method,
				"path", r.URL.Path,
			)

			if errorreporting.IsSentryEnabled() {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.Scope().SetLevel(sentry.LevelError)
				if err, ok := rec.(error); ok {
					hub.CaptureException(err)
				} else {
					hub.CaptureMessage(errorreporting.ScrubPII(fmt.Sprint(rec)))
				}
			}

			apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("internal server error"))
		}()

		next.ServeHTTP(w, r)
	})
}
