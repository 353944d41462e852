// Package server wires the HTTP surface together.
package server

import (
	"net/http"

	"github.com/cloo-solutions/docchat/internal/api"
	"github.com/cloo-solutions/docchat/internal/api/handlers"
	"github.com/cloo-solutions/docchat/internal/api/middleware"
	"github.com/cloo-solutions/docchat/internal/metrics"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	AuthValidator   middleware.AuthValidator
	IngestHandler   *handlers.IngestHandler
	ChatHandler     *handlers.ChatHandler
	DocumentHandler *handlers.DocumentHandler
	UploadHandler   *handlers.UploadHandler
	AuthHandler     *handlers.AuthHandler

	// RateLimitPerSecond of 0 disables rate limiting (tests).
	RateLimitPerSecond float64
	RateLimitBurst     int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	if cfg.RateLimitPerSecond > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = int(cfg.RateLimitPerSecond)
		}
		limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSecond), burst)
		r.Use(middleware.RateLimit(limiter))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Post("/ingest", cfg.IngestHandler.Ingest)
		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
		})

		r.Post("/uploads/init", cfg.UploadHandler.InitUpload)

		r.Route("/keys", func(r chi.Router) {
			r.Post("/", cfg.AuthHandler.CreateAPIKey)
			r.Get("/", cfg.AuthHandler.ListAPIKeys)
			r.Delete("/{id}", cfg.AuthHandler.RevokeAPIKey)
		})
	})

	return r
}
