// Package stats keeps the process-wide evaluation counters exposed by
// GET /stats. Counters only move forward; derived fields (uptime,
// averages) are computed at read time, never stored.
package stats

import (
	"sync"
	"time"
)

// Endpoint discriminates which API consumed a scoring call. The stats
// contract names one counter per endpoint; callers key off the exact
// field names, so these must stay distinct.
type Endpoint string

// Recorded endpoints.
const (
	EndpointEvaluate     Endpoint = "evaluate"
	EndpointDetectErrors Endpoint = "detect_errors"
	EndpointBatch        Endpoint = "batch"
)

// Recorder accumulates counters under a coarse lock. Updates are rare
// relative to inference latency, so contention is a non-issue.
type Recorder struct {
	mu sync.Mutex

	start             time.Time
	modelLoadMS       *int64
	evaluateCalls     int64
	detectErrorsCalls int64
	batchCalls        int64
	totalPairs        int64
	totalInferenceMS  int64
}

// NewRecorder creates a recorder with start set to now. start is fixed
// for the process lifetime.
func NewRecorder(now time.Time) *Recorder {
	return &Recorder{start: now}
}

// Record registers one successful scoring call: the endpoint counter
// moves by one, total pairs by pairs, inference time by elapsedMS.
// Failed or rejected requests are never recorded.
func (r *Recorder) Record(endpoint Endpoint, pairs int, elapsedMS int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch endpoint {
	case EndpointEvaluate:
		r.evaluateCalls++
	case EndpointDetectErrors:
		r.detectErrorsCalls++
	case EndpointBatch:
		r.batchCalls++
	}
	r.totalPairs += int64(pairs)
	r.totalInferenceMS += elapsedMS
}

// SetModelLoadTime records the load latency. Written once, by the call
// that actually constructed the model; later writes are ignored.
func (r *Recorder) SetModelLoadTime(ms int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.modelLoadMS == nil {
		r.modelLoadMS = &ms
	}
}

// Snapshot is the wire shape of GET /stats. Nullable fields use
// pointers so "absent" serializes as null rather than zero.
type Snapshot struct {
	UptimeSeconds        int64  `json:"uptime_seconds"`
	ModelLoaded          bool   `json:"model_loaded"`
	ModelLoadTimeMS      *int64 `json:"model_load_time_ms"`
	EvaluateAPICount     int64  `json:"evaluate_api_count"`
	DetectErrorsAPICount int64  `json:"detect_errors_api_count"`
	BatchAPICount        int64  `json:"batch_api_count"`
	TotalPairsEvaluated  int64  `json:"total_pairs_evaluated"`
	TotalInferenceTimeMS int64  `json:"total_inference_time_ms"`
	AvgInferenceTimeMS   *int64 `json:"avg_inference_time_ms"`
}

// Snapshot computes the derived read-only view at time now.
func (r *Recorder) Snapshot(now time.Time, modelLoaded bool) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		UptimeSeconds:        int64(now.Sub(r.start).Round(time.Second).Seconds()),
		ModelLoaded:          modelLoaded,
		EvaluateAPICount:     r.evaluateCalls,
		DetectErrorsAPICount: r.detectErrorsCalls,
		BatchAPICount:        r.batchCalls,
		TotalPairsEvaluated:  r.totalPairs,
		TotalInferenceTimeMS: r.totalInferenceMS,
	}
	if r.modelLoadMS != nil {
		ms := *r.modelLoadMS
		s.ModelLoadTimeMS = &ms
	}
	if calls := r.evaluateCalls + r.detectErrorsCalls + r.batchCalls; calls > 0 {
		avg := r.totalInferenceMS / calls
		s.AvgInferenceTimeMS = &avg
	}
	return s
}
