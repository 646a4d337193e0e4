// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/stats"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/validate"
	"github.com/shuji-bonji/xcomet-mcp-server/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Evaluate scores a single translation pair.
	Evaluate(ctx context.Context, pair model.TranslationPair, useGPU bool) (model.EvaluationResult, error)

	// DetectErrors reports error spans at or above the given severity.
	DetectErrors(ctx context.Context, pair model.TranslationPair, minSeverity model.Severity, useGPU bool) (eval.ErrorReport, error)

	// BatchEvaluate scores a list of pairs and aggregates the outcome.
	BatchEvaluate(ctx context.Context, pairs []model.TranslationPair, batchSize int, useGPU bool) (model.BatchResult, error)

	// Read operations expose model and usage state.
	ModelLoaded() bool
	ModelName() string
	StatsSnapshot() stats.Snapshot
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	evaluateHandler     *EvaluateHandler
	detectErrorsHandler *DetectErrorsHandler
	batchHandler        *BatchHandler
	shutdownHandler     *ShutdownHandler
}

// NewServer creates a new API server with all handlers. shutdown is
// invoked after a successful POST /shutdown response is written.
func NewServer(deps Dependencies, shutdown func()) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(deps),
		statsHandler:        NewStatsHandler(deps),
		evaluateHandler:     NewEvaluateHandler(deps),
		detectErrorsHandler: NewDetectErrorsHandler(deps),
		batchHandler:        NewBatchHandler(deps),
		shutdownHandler:     NewShutdownHandler(shutdown),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))
	mux.HandleFunc("/detect_errors", MetricsMiddleware(s.detectErrorsHandler.HandleDetectErrors, "detect_errors"))
	mux.HandleFunc("/batch_evaluate", MetricsMiddleware(s.batchHandler.HandleBatchEvaluate, "batch_evaluate"))
	mux.HandleFunc("/shutdown", MetricsMiddleware(s.shutdownHandler.HandleShutdown, "shutdown"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// pairRequest is the wire shape of one source/translation pair.
type pairRequest struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
	Reference   string `json:"reference"`
}

func (p pairRequest) validate() error {
	switch {
	case strings.TrimSpace(p.Source) == "":
		return errors.New("missing source")
	case strings.TrimSpace(p.Translation) == "":
		return errors.New("missing translation")
	}
	return nil
}

func (p pairRequest) toPair() model.TranslationPair {
	return model.TranslationPair{
		Source:      p.Source,
		Translation: p.Translation,
		Reference:   p.Reference,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service-layer failures onto HTTP statuses:
// validation problems become 400, everything else 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var reqErr *validate.RequiresReferenceError
	if errors.As(err, &reqErr) {
		writeError(w, http.StatusBadRequest, "reference_required", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}
