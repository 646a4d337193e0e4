package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
)

// Default simulated engine configuration constants.
const (
	defaultSimMinLatency = 80 * time.Millisecond
	defaultSimMaxLatency = 150 * time.Millisecond
	defaultSimSeed       = 42
)

// SimulatedOption applies a configuration option to the Simulated engine.
type SimulatedOption func(*Simulated)

// WithLatencyRange sets the simulated inference latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) SimulatedOption {
	return func(s *Simulated) {
		if minLatency > 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// Simulated is a deterministic stand-in engine for development and
// tests: scores are derived from a hash of the pair contents, so the
// same input always yields the same score, and low-scoring pairs carry
// synthetic error spans so the extraction path stays exercised.
type Simulated struct {
	name       string
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated engine serving the given model name.
func NewSimulated(name string, opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		name:       name,
		minLatency: defaultSimMinLatency,
		maxLatency: defaultSimMaxLatency,
		rng:        rand.New(rand.NewSource(defaultSimSeed)), //nolint:gosec // deterministic seed for reproducible latency
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the model identifier this engine serves.
func (s *Simulated) Name() string { return s.name }

// Predict scores every pair deterministically after one simulated
// latency pause per call.
func (s *Simulated) Predict(ctx context.Context, pairs []model.TranslationPair, _ int, _ bool) (*eval.Output, error) {
	s.mu.Lock()
	latency := s.minLatency + time.Duration(s.rng.Int63n(int64(s.maxLatency-s.minLatency)))
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
	}

	out := &eval.Output{
		Scores:   make([]float64, len(pairs)),
		Metadata: make([]map[string]any, len(pairs)),
	}
	for i, pair := range pairs {
		score := hashScore(pair)
		out.Scores[i] = score
		out.Metadata[i] = map[string]any{
			"error_spans": syntheticSpans(pair.Translation, score),
		}
	}
	return out, nil
}

// Close releases nothing; the simulated engine holds no resources.
func (s *Simulated) Close() error { return nil }

// hashScore maps pair contents onto [0,1) via FNV-1a.
func hashScore(pair model.TranslationPair) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(pair.Source))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(pair.Translation))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(pair.Reference))
	return float64(h.Sum64()%10000) / 10000
}

// syntheticSpans marks the first word of low-scoring translations so
// the span pipeline sees realistic shapes. Scores at or above the good
// threshold produce no spans.
func syntheticSpans(translation string, score float64) []any {
	if score >= model.GoodThreshold || translation == "" {
		return []any{}
	}

	severity := model.SeverityMinor
	switch {
	case score < 0.3:
		severity = model.SeverityCritical
	case score < 0.5:
		severity = model.SeverityMajor
	}

	end := strings.IndexRune(translation, ' ')
	if end < 0 {
		end = len([]rune(translation))
	} else {
		end = len([]rune(translation[:end]))
	}
	runes := []rune(translation)
	return []any{
		map[string]any{
			"text":     string(runes[:end]),
			"start":    0,
			"end":      end,
			"severity": string(severity),
		},
	}
}
