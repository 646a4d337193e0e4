// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ShutdownHandler handles graceful shutdown requests.
type ShutdownHandler struct {
	trigger func()
}

// NewShutdownHandler creates a new shutdown handler. trigger initiates
// process shutdown; it runs after the acknowledgement is written so the
// caller always receives a response.
func NewShutdownHandler(trigger func()) *ShutdownHandler {
	return &ShutdownHandler{trigger: trigger}
}

type shutdownResponse struct {
	Status string `json:"status"`
}

// HandleShutdown handles POST /shutdown requests.
func (h *ShutdownHandler) HandleShutdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, shutdownResponse{Status: "shutting_down"})
	if h.trigger != nil {
		go h.trigger()
	}
}
