package middleware

import (
	"net/http"
	"time"

	"github.com/cloo-solutions/docchat/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics records request counts and latencies for Prometheus. The path label
// is the chi route pattern, so /documents/{id} stays one series no matter how
// many IDs are requested.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveRequest(routeLabel(r), status, time.Since(start))
	})
}

// routeLabel resolves the matched route pattern, known only after routing has
// run. Unmatched requests collapse into a single series.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
