// internal/api/router.go
package api

import (
	"net/http"

	"crm-insights/internal/api/handlers"
	"crm-insights/internal/api/middleware"
	"crm-insights/internal/common/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Service        string
	Version        string
	AllowedOrigins []string
	Asker          handlers.Asker
	Sessions       middleware.SessionLookup
	Checks         map[string]handlers.Check
	Logger         logger.Logger
}

// NewRouter creates the HTTP router with all routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Telemetry)
	r.Use(middleware.AccessLog(cfg.Logger))
	// Without configured origins no cross-origin request is allowed.
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	health := handlers.NewHealthHandler(cfg.Service, cfg.Version, cfg.Checks)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	insights := handlers.NewInsightHandler(cfg.Asker, cfg.Logger)
	r.Route("/api/ai/insights", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Sessions, cfg.Logger))
		r.Post("/ask", insights.Ask)
	})

	return r
}
