// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
)

// DetectErrorsDependencies defines the interface for error detection.
type DetectErrorsDependencies interface {
	DetectErrors(ctx context.Context, pair model.TranslationPair, minSeverity model.Severity, useGPU bool) (eval.ErrorReport, error)
}

// DetectErrorsHandler handles error detection requests.
type DetectErrorsHandler struct {
	deps DetectErrorsDependencies
}

// NewDetectErrorsHandler creates a new detect errors handler.
func NewDetectErrorsHandler(deps DetectErrorsDependencies) *DetectErrorsHandler {
	return &DetectErrorsHandler{deps: deps}
}

// detectErrorsRequest mirrors the wire schema for POST /detect_errors.
type detectErrorsRequest struct {
	pairRequest
	MinSeverity string `json:"min_severity"`
	UseGPU      bool   `json:"use_gpu"`
}

// spanWithSuggestion carries a reserved suggestion slot alongside each
// span. Always null today; kept so clients can depend on the key.
type spanWithSuggestion struct {
	Suggestion *string `json:"suggestion"`
	model.ErrorSpan
}

type detectErrorsResponse struct {
	TotalErrors      int                  `json:"total_errors"`
	ErrorsBySeverity map[string]int       `json:"errors_by_severity"`
	Errors           []spanWithSuggestion `json:"errors"`
}

// HandleDetectErrors handles POST /detect_errors requests.
func (h *DetectErrorsHandler) HandleDetectErrors(w http.ResponseWriter, r *http.Request) {
	const op = "api.detect_errors"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req detectErrorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	report, err := h.deps.DetectErrors(r.Context(), req.toPair(), parseSeverity(req.MinSeverity), req.UseGPU)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	spans := make([]spanWithSuggestion, len(report.Errors))
	for i, span := range report.Errors {
		spans[i] = spanWithSuggestion{ErrorSpan: span}
	}
	writeJSON(w, http.StatusOK, detectErrorsResponse{
		TotalErrors: len(report.Errors),
		ErrorsBySeverity: map[string]int{
			string(model.SeverityMinor):    report.Counts[model.SeverityMinor],
			string(model.SeverityMajor):    report.Counts[model.SeverityMajor],
			string(model.SeverityCritical): report.Counts[model.SeverityCritical],
		},
		Errors: spans,
	})
}

// parseSeverity maps the wire value onto a severity tier. Empty and
// unrecognized values mean no filtering, which the minor tier expresses.
func parseSeverity(raw string) model.Severity {
	switch raw {
	case string(model.SeverityMajor):
		return model.SeverityMajor
	case string(model.SeverityCritical):
		return model.SeverityCritical
	default:
		return model.SeverityMinor
	}
}
