package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Logging writes a debug line per request with its headers. It is meant
// for development; production relies on MetricsMiddleware's summary.
func Logging(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debugw("→ request",
				"method", r.Method,
				"url", r.URL.String(),
				"headers", r.Header,
				"request_id", RequestIDFromContext(r.Context()),
			)

			lw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(lw, r)

			logger.Debugw("← response",
				"status", lw.statusCode,
				"status_text", http.StatusText(lw.statusCode),
				"duration", time.Since(start).String(),
			)
		})
	}
}
