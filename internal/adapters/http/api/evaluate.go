// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
)

// EvaluateDependencies defines the interface for single-pair scoring.
type EvaluateDependencies interface {
	Evaluate(ctx context.Context, pair model.TranslationPair, useGPU bool) (model.EvaluationResult, error)
}

// EvaluateHandler handles single-pair evaluation requests.
type EvaluateHandler struct {
	deps EvaluateDependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps EvaluateDependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

// evaluateRequest mirrors the wire schema for POST /evaluate.
type evaluateRequest struct {
	pairRequest
	UseGPU bool `json:"use_gpu"`
}

type evaluateResponse struct {
	Score   float64           `json:"score"`
	Errors  []model.ErrorSpan `json:"errors"`
	Summary string            `json:"summary"`
}

// HandleEvaluate handles POST /evaluate requests.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.Evaluate(r.Context(), req.toPair(), req.UseGPU)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []model.ErrorSpan{}
	}
	writeJSON(w, http.StatusOK, evaluateResponse{
		Score:   result.Score,
		Errors:  errs,
		Summary: result.Summary,
	})
}
