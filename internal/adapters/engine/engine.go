// Package engine provides the scoring capability behind the evaluation
// service: the opaque prediction contract, the lazy once-only loader,
// and the concrete ONNX and simulated backends.
package engine

import (
	"context"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
)

// Engine is the opaque scoring capability. Predict scores pairs in
// input order and returns one score (and optional metadata document)
// per pair. batchSize caps how many pairs are scored back to back on
// one session; useGPU is a placement hint an implementation may ignore.
type Engine interface {
	// Name returns the model identifier this engine serves.
	Name() string

	// Predict runs inference, honoring ctx for cancellation between
	// pairs. An in-flight forward pass is not interruptible.
	Predict(ctx context.Context, pairs []model.TranslationPair, batchSize int, useGPU bool) (*eval.Output, error)

	// Close releases backend resources.
	Close() error
}

// Factory constructs an engine. Invoked at most once per successful
// load by the Loader; a failing factory may be retried on a later call.
type Factory func(ctx context.Context) (Engine, error)
