package engine

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes the ONNX Runtime environment once per process.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Number of error-tag classes emitted per translation token:
// ok, minor, major, critical.
const tagClasses = 4

// Session wraps one ONNX Runtime session over the exported quality
// estimation checkpoint. One forward pass scores one encoded pair.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates an ONNX session from a checkpoint file.
func NewSession(checkpointPath string) (*Session, error) {
	if _, err := os.Stat(checkpointPath); err != nil {
		return nil, fmt.Errorf("checkpoint file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }()

	// Input/output names from model inspection of the exported checkpoint.
	inputNames := []string{"input_ids", "attention_mask"}
	outputNames := []string{"score", "tags"}

	session, err := ort.NewDynamicAdvancedSession(
		checkpointPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Infer runs one forward pass. It returns the sentence-level score and
// the flat per-token tag logits (seqLen * tagClasses entries).
func (s *Session) Infer(ctx context.Context, inputIDs, attentionMask []int64) (float64, []float32, error) {
	// Check context before the expensive pass; the pass itself is not
	// interruptible.
	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, nil, fmt.Errorf("session is closed")
	}

	batchSize := int64(1)
	seqLen := int64(len(inputIDs))

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(batchSize, seqLen), inputIDs)
	if err != nil {
		return 0, nil, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	defer func() { _ = inputIDsTensor.Destroy() }()

	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(batchSize, seqLen), attentionMask)
	if err != nil {
		return 0, nil, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	defer func() { _ = attentionMaskTensor.Destroy() }()

	inputs := []ort.Value{inputIDsTensor, attentionMaskTensor}
	outputs := []ort.Value{nil, nil}

	if err := s.session.Run(inputs, outputs); err != nil {
		return 0, nil, fmt.Errorf("running inference: %w", err)
	}
	for _, out := range outputs {
		if out == nil {
			return 0, nil, fmt.Errorf("no output produced")
		}
	}
	defer func() {
		for _, out := range outputs {
			_ = out.Destroy()
		}
	}()

	scoreTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return 0, nil, fmt.Errorf("unexpected score tensor type")
	}
	scoreData := scoreTensor.GetData()
	if len(scoreData) == 0 {
		return 0, nil, fmt.Errorf("empty score tensor")
	}

	tagsTensor, ok := outputs[1].(*ort.Tensor[float32])
	if !ok {
		return 0, nil, fmt.Errorf("unexpected tags tensor type")
	}
	tags := make([]float32, seqLen*tagClasses)
	tagData := tagsTensor.GetData()
	if int64(len(tagData)) < seqLen*tagClasses {
		return 0, nil, fmt.Errorf("tags tensor too short: %d", len(tagData))
	}
	copy(tags, tagData[:seqLen*tagClasses])

	return float64(scoreData[0]), tags, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
