// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/stats"
)

// StatsProvider defines the interface for getting usage statistics.
type StatsProvider interface {
	StatsSnapshot() stats.Snapshot
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.StatsSnapshot())
}
