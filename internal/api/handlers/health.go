// internal/api/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"crm-insights/internal/api/middleware"
)

// Check probes one dependency for readiness.
type Check func(ctx context.Context) error

type HealthHandler struct {
	service string
	version string
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthHandler(service, version string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}

// Ready runs every check and reports 503 when any fails.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	middleware.WriteJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": results,
	})
}
