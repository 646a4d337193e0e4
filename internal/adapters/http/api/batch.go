// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
)

// BatchDependencies defines the interface for batch scoring.
type BatchDependencies interface {
	BatchEvaluate(ctx context.Context, pairs []model.TranslationPair, batchSize int, useGPU bool) (model.BatchResult, error)
}

// BatchHandler handles batch evaluation requests.
type BatchHandler struct {
	deps BatchDependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps BatchDependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

// batchEvaluateRequest mirrors the wire schema for POST /batch_evaluate.
type batchEvaluateRequest struct {
	Pairs     []pairRequest `json:"pairs"`
	BatchSize int           `json:"batch_size"`
	UseGPU    bool          `json:"use_gpu"`
}

type batchEvaluateResponse struct {
	AverageScore float64           `json:"average_score"`
	TotalPairs   int               `json:"total_pairs"`
	Results      []model.BatchItem `json:"results"`
	Summary      string            `json:"summary"`
}

// HandleBatchEvaluate handles POST /batch_evaluate requests.
func (h *BatchHandler) HandleBatchEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch_evaluate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	pairs := make([]model.TranslationPair, len(req.Pairs))
	for i, p := range req.Pairs {
		if err := p.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("pair %d: %w", i, err)))
			return
		}
		pairs[i] = p.toPair()
	}

	result, err := h.deps.BatchEvaluate(r.Context(), pairs, req.BatchSize, req.UseGPU)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	items := result.Results
	if items == nil {
		items = []model.BatchItem{}
	}
	writeJSON(w, http.StatusOK, batchEvaluateResponse{
		AverageScore: result.AverageScore,
		TotalPairs:   result.TotalPairs,
		Results:      items,
		Summary:      result.Summary,
	})
}
