// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// HealthStatus defines the interface for liveness reporting.
type HealthStatus interface {
	ModelLoaded() bool
	ModelName() string
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	status HealthStatus
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(status HealthStatus) *HealthHandler {
	return &HealthHandler{status: status}
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelName   string `json:"model_name"`
}

// HandleHealth handles GET /health requests. It reports liveness
// immediately; it never triggers a model load.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		ModelLoaded: h.status.ModelLoaded(),
		ModelName:   h.status.ModelName(),
	})
}
