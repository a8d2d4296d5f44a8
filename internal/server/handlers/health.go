package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse is the health probe's body.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthHandler reports liveness plus the durable store's reachability.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if h.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Health.Ping(ctx); err != nil {
			checks["store"] = "unhealthy"
			healthy = false
		} else {
			checks["store"] = "healthy"
		}
	}

	status := http.StatusOK
	body := HealthResponse{Status: "healthy", Version: h.Version, Checks: checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		body.Status = "unhealthy"
	}
	h.writeJSON(w, status, body)
}

// VersionHandler returns build information.
func (h *Handler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"service": "notelink",
		"version": h.Version,
	})
}
