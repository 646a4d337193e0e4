// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/adapters/cache"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/adapters/engine"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/stats"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/validate"
	"github.com/shuji-bonji/xcomet-mcp-server/pkg/logger"
	"github.com/shuji-bonji/xcomet-mcp-server/pkg/metrics"
)

// Service implements the API dependencies for the evaluation server.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader   *engine.Loader
	recorder *stats.Recorder
	results  *cache.Cache

	// Configuration
	modelName        string
	factory          engine.Factory
	defaultBatchSize int
	cacheSize        int
	// Simulated engine latency bounds, used by the default factory.
	latencyMin time.Duration
	latencyMax time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelName sets the model identifier to serve.
func WithModelName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.modelName = name
		}
	}
}

// WithEngineFactory sets the backend constructor used on first load.
func WithEngineFactory(factory engine.Factory) Option {
	return func(s *Service) {
		if factory != nil {
			s.factory = factory
		}
	}
}

// WithDefaultBatchSize sets the chunk size used when a batch request
// does not specify one.
func WithDefaultBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.defaultBatchSize = size
		}
	}
}

// WithCacheSize sets the result cache capacity. Zero disables caching.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLatencyRange sets the simulated engine's latency bounds.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency > 0 && maxLatency > minLatency {
			s.latencyMin = minLatency
			s.latencyMax = maxLatency
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelName:        "Unbabel/XCOMET-XL",
		defaultBatchSize: 8,
		cacheSize:        1024,
		latencyMin:       80 * time.Millisecond,
		latencyMax:       150 * time.Millisecond,
		logger:           nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components. The model itself is not
// loaded here; construction happens on first use or via Preload.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting evaluation service", logger.String("model", s.modelName))

	if s.factory == nil {
		name := s.modelName
		latMin, latMax := s.latencyMin, s.latencyMax
		s.factory = func(context.Context) (engine.Engine, error) {
			return engine.NewSimulated(name, engine.WithLatencyRange(latMin, latMax)), nil
		}
	}

	s.recorder = stats.NewRecorder(time.Now())
	s.results = cache.New(cache.WithMaxSize(s.cacheSize))
	s.loader = engine.NewLoader(s.modelName, s.factory,
		engine.WithOnLoad(func(loadTimeMS int64) {
			s.recorder.SetModelLoadTime(loadTimeMS)
			metrics.SetModelLoadTime(loadTimeMS)
			metrics.SetModelLoaded(true)
			s.logger.Info(context.Background(), "model loaded",
				logger.String("model", s.modelName),
				logger.Int("loadTimeMS", int(loadTimeMS)),
			)
		}),
	)
	metrics.SetModelLoaded(false)

	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.Int("defaultBatchSize", s.defaultBatchSize),
		logger.Int("cacheSize", s.cacheSize),
	)

	return nil
}

// Stop gracefully shuts down the service and releases the engine.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping evaluation service")

	if s.loader != nil {
		if err := s.loader.Close(); err != nil {
			s.logger.Warn(context.Background(), "engine close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "evaluation service stopped")
}

// Preload forces model construction. Used at startup when the operator
// prefers paying the load cost before serving traffic.
func (s *Service) Preload(ctx context.Context) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	_, err := s.loader.Get(ctx)
	return err
}

// Evaluate scores a single translation pair.
func (s *Service) Evaluate(ctx context.Context, pair model.TranslationPair, useGPU bool) (model.EvaluationResult, error) {
	if !s.isStarted() {
		return model.EvaluationResult{}, ErrNotStarted
	}
	if err := validate.Pair(s.modelName, pair); err != nil {
		return model.EvaluationResult{}, err
	}

	start := time.Now()
	result, err := s.scorePair(ctx, pair, useGPU)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		metrics.RecordInferenceError()
		return model.EvaluationResult{}, err
	}

	s.recorder.Record(stats.EndpointEvaluate, 1, elapsed)
	metrics.RecordInference(string(stats.EndpointEvaluate), 1, float64(elapsed))
	return result, nil
}

// DetectErrors scores a single pair and reports its error spans at or
// above the given severity. The per-severity counts cover the full
// span set, so callers see the distribution even when filtering.
func (s *Service) DetectErrors(ctx context.Context, pair model.TranslationPair, minSeverity model.Severity, useGPU bool) (eval.ErrorReport, error) {
	if !s.isStarted() {
		return eval.ErrorReport{}, ErrNotStarted
	}
	if err := validate.Pair(s.modelName, pair); err != nil {
		return eval.ErrorReport{}, err
	}

	start := time.Now()
	result, err := s.scorePair(ctx, pair, useGPU)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		metrics.RecordInferenceError()
		return eval.ErrorReport{}, err
	}

	filtered, counts := eval.FilterBySeverity(result.Errors, minSeverity)

	// Error detection reuses the pair already counted by scoring
	// endpoints, so it contributes time but no pairs.
	s.recorder.Record(stats.EndpointDetectErrors, 0, elapsed)
	metrics.RecordInference(string(stats.EndpointDetectErrors), 0, float64(elapsed))
	return eval.ErrorReport{Errors: filtered, Counts: counts}, nil
}

// BatchEvaluate scores a list of pairs and aggregates the outcome.
// An empty batch returns immediately without touching the model or
// the usage counters.
func (s *Service) BatchEvaluate(ctx context.Context, pairs []model.TranslationPair, batchSize int, useGPU bool) (model.BatchResult, error) {
	if !s.isStarted() {
		return model.BatchResult{}, ErrNotStarted
	}
	if len(pairs) == 0 {
		return eval.Aggregate(nil, 0), nil
	}
	if err := validate.Batch(s.modelName, pairs); err != nil {
		return model.BatchResult{}, err
	}
	if batchSize <= 0 {
		batchSize = s.defaultBatchSize
	}

	start := time.Now()
	handle, err := s.loader.Get(ctx)
	if err != nil {
		metrics.RecordInferenceError()
		return model.BatchResult{}, err
	}
	out, err := handle.Predict(ctx, pairs, batchSize, useGPU)
	if err != nil {
		metrics.RecordInferenceError()
		return model.BatchResult{}, fmt.Errorf("batch predict: %w", err)
	}

	results := make([]model.EvaluationResult, len(pairs))
	for i := range pairs {
		results[i], err = eval.Extract(out, i)
		if err != nil {
			metrics.RecordInferenceError()
			return model.BatchResult{}, err
		}
	}
	elapsed := time.Since(start).Milliseconds()

	s.recorder.Record(stats.EndpointBatch, len(pairs), elapsed)
	metrics.RecordInference(string(stats.EndpointBatch), len(pairs), float64(elapsed))
	return eval.Aggregate(results, len(pairs)), nil
}

// scorePair serves a single pair through the result cache, loading the
// model on first miss.
func (s *Service) scorePair(ctx context.Context, pair model.TranslationPair, useGPU bool) (model.EvaluationResult, error) {
	key := cache.Key{Model: s.modelName, Pair: pair}
	if result, ok := s.results.Get(ctx, key); ok {
		return result, nil
	}

	handle, err := s.loader.Get(ctx)
	if err != nil {
		return model.EvaluationResult{}, err
	}
	out, err := handle.Predict(ctx, []model.TranslationPair{pair}, 1, useGPU)
	if err != nil {
		return model.EvaluationResult{}, fmt.Errorf("predict: %w", err)
	}
	result, err := eval.Extract(out, 0)
	if err != nil {
		return model.EvaluationResult{}, err
	}

	s.results.Put(ctx, key, result)
	metrics.UpdateCacheSize(s.results.Size())
	return result, nil
}

// ModelLoaded reports whether the model is resident in memory.
func (s *Service) ModelLoaded() bool {
	if !s.isStarted() {
		return false
	}
	return s.loader.Loaded()
}

// ModelName returns the configured model identifier.
func (s *Service) ModelName() string {
	return s.modelName
}

// StatsSnapshot returns the usage counters accumulated since Start.
func (s *Service) StatsSnapshot() stats.Snapshot {
	if !s.isStarted() {
		return stats.Snapshot{}
	}
	return s.recorder.Snapshot(time.Now(), s.loader.Loaded())
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
