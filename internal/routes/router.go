package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"versions/relay/internal/api"
	"versions/relay/internal/logging"
	"versions/relay/internal/middleware"
)

// RegisterRoutes builds the relay router. gatherer backs /metrics; pass
// prometheus.DefaultGatherer in production.
func RegisterRoutes(deps *api.Dependencies, gatherer prometheus.Gatherer, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	if !deps.Config.IsProduction() {
		r.Use(middleware.Logging(logging.Named("http")))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// health check and metrics sit outside the rate limit
	r.Get("/healthCheck", api.HealthCheckHandler(deps, upSince))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewIPRateLimiter(deps.Config.Limits.RequestsPerSecond, deps.Config.Limits.Burst)
	RegisterAPIRoutes(r, handlers, limiter)

	logging.Info("Router initialized", "production", deps.Config.IsProduction())
	return r
}
