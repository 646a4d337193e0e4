package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/validate"
)

// Handle is the process-wide view of a loaded model. Created once by
// the Loader and never mutated afterwards; all requests share it
// read-only.
type Handle struct {
	// Name is the configured model identifier.
	Name string

	// RequiresReference is derived from Name at load time.
	RequiresReference bool

	// LoadTimeMS is the wall time the construction took.
	LoadTimeMS int64

	engine Engine
}

// Predict delegates to the underlying engine.
func (h *Handle) Predict(ctx context.Context, pairs []model.TranslationPair, batchSize int, useGPU bool) (*eval.Output, error) {
	return h.engine.Predict(ctx, pairs, batchSize, useGPU)
}

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithOnLoad registers a hook invoked exactly once, by the call that
// performs the actual construction, with the measured load time.
func WithOnLoad(fn func(loadTimeMS int64)) LoaderOption {
	return func(l *Loader) {
		if fn != nil {
			l.onLoad = fn
		}
	}
}

// Loader constructs the engine at most once, on first use. A failed
// construction is not cached; a later call retries. The mutex is held
// across construction so racing first callers observe exactly one
// underlying build.
type Loader struct {
	mu        sync.Mutex
	modelName string
	factory   Factory
	handle    *Handle
	onLoad    func(int64)
}

// NewLoader creates a loader for the named model.
func NewLoader(modelName string, factory Factory, opts ...LoaderOption) *Loader {
	l := &Loader{
		modelName: modelName,
		factory:   factory,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the cached handle, constructing it on the first call.
func (l *Loader) Get(ctx context.Context) (*Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle != nil {
		return l.handle, nil
	}

	start := time.Now()
	eng, err := l.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", l.modelName, errors.Join(ErrModelUnavailable, err))
	}
	loadMS := time.Since(start).Milliseconds()

	l.handle = &Handle{
		Name:              l.modelName,
		RequiresReference: validate.RequiresReference(l.modelName),
		LoadTimeMS:        loadMS,
		engine:            eng,
	}
	if l.onLoad != nil {
		l.onLoad(loadMS)
	}
	return l.handle, nil
}

// Loaded reports whether the handle has been constructed.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle != nil
}

// ModelName returns the configured model identifier, available before
// the model is loaded.
func (l *Loader) ModelName() string {
	return l.modelName
}

// Close releases the engine if it was ever constructed.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == nil {
		return nil
	}
	return l.handle.engine.Close()
}
