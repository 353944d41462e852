package middleware

import (
	"net/http"

	"github.com/cloo-solutions/docchat/internal/api"
)

// MaxBodyBytes rejects oversized request bodies. A declared Content-Length
// over the limit fails immediately; chunked bodies are cut off by
// MaxBytesReader once they cross it.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
