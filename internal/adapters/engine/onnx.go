package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
)

const defaultPredictBatchSize = 8

// Severity per tag class; class 0 is "ok" and produces no span.
var classSeverity = [tagClasses]model.Severity{
	"", model.SeverityMinor, model.SeverityMajor, model.SeverityCritical,
}

// ONNX scores pairs with an exported quality estimation checkpoint run
// through ONNX Runtime. The sentence score comes from the regression
// head; error spans are decoded from the per-token tag head.
type ONNX struct {
	name string
	tok  *Tokenizer
	pool *Pool
}

// NewONNX resolves the model artifacts into dir and builds a session
// pool of the given size.
func NewONNX(ctx context.Context, name, dir string, sessions int) (*ONNX, error) {
	paths, err := ResolveModel(ctx, name, dir)
	if err != nil {
		return nil, fmt.Errorf("resolving model %q: %w", name, err)
	}

	tok, err := NewTokenizer(paths.Vocab)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}

	pool, err := NewPool(paths.Checkpoint, sessions)
	if err != nil {
		return nil, fmt.Errorf("building session pool: %w", err)
	}

	return &ONNX{name: name, tok: tok, pool: pool}, nil
}

// Name returns the model identifier this engine serves.
func (m *ONNX) Name() string { return m.name }

// Predict scores pairs in input order. Pairs are split into chunks of
// batchSize; each chunk borrows one session, and chunks run
// concurrently up to the pool size. The useGPU hint is ignored: session
// placement is fixed at construction.
func (m *ONNX) Predict(ctx context.Context, pairs []model.TranslationPair, batchSize int, _ bool) (*eval.Output, error) {
	if batchSize <= 0 {
		batchSize = defaultPredictBatchSize
	}

	out := &eval.Output{
		Scores:   make([]float64, len(pairs)),
		Metadata: make([]map[string]any, len(pairs)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.pool.Size())
	for start := 0; start < len(pairs); start += batchSize {
		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		g.Go(func() error {
			sess, err := m.pool.Acquire(gctx)
			if err != nil {
				return err
			}
			defer m.pool.Release(sess)

			for i := start; i < end; i++ {
				score, spans, err := m.scoreOne(gctx, sess, pairs[i])
				if err != nil {
					return fmt.Errorf("pair %d: %w", i, err)
				}
				out.Scores[i] = score
				out.Metadata[i] = map[string]any{"error_spans": spansToMetadata(spans)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	return out, nil
}

// Close releases the session pool.
func (m *ONNX) Close() error { return m.pool.Close() }

// scoreOne encodes one pair, runs a forward pass, and decodes the tag
// logits over the translation segment into severity spans.
func (m *ONNX) scoreOne(ctx context.Context, sess *Session, pair model.TranslationPair) (float64, []model.ErrorSpan, error) {
	ids, mtStart, mtTokens := m.encodePair(pair)
	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}

	score, tags, err := sess.Infer(ctx, ids, mask)
	if err != nil {
		return 0, nil, err
	}

	spans := decodeSpans(pair.Translation, tags, mtStart, mtTokens)
	return score, spans, nil
}

// encodePair builds the joint input sequence
// <s> src </s> </s> mt </s> [</s> ref </s>] and reports where the
// translation tokens sit so tag logits can be mapped back.
func (m *ONNX) encodePair(pair model.TranslationPair) (ids []int64, mtStart int, mtTokens []Token) {
	src := m.tok.Encode(pair.Source)
	mt := m.tok.Encode(pair.Translation)

	ids = append(ids, int64(m.tok.BOS()))
	for _, t := range src {
		ids = append(ids, int64(t.ID))
	}
	ids = append(ids, int64(m.tok.EOS()), int64(m.tok.EOS()))

	mtStart = len(ids)
	for _, t := range mt {
		ids = append(ids, int64(t.ID))
	}
	ids = append(ids, int64(m.tok.EOS()))

	if pair.HasReference() {
		ids = append(ids, int64(m.tok.EOS()))
		for _, t := range m.tok.Encode(pair.Reference) {
			ids = append(ids, int64(t.ID))
		}
		ids = append(ids, int64(m.tok.EOS()))
	}
	return ids, mtStart, mt
}

// decodeSpans merges consecutive non-ok translation tokens into spans.
// A run's severity is the worst class it contains.
func decodeSpans(translation string, tags []float32, mtStart int, mtTokens []Token) []model.ErrorSpan {
	runes := []rune(translation)
	spans := []model.ErrorSpan{}

	var current *model.ErrorSpan
	worst := 0
	for j, tok := range mtTokens {
		pos := mtStart + j
		class := argmax(tags[pos*tagClasses : pos*tagClasses+tagClasses])
		if class == 0 {
			if current != nil {
				current.Severity = classSeverity[worst]
				spans = append(spans, *current)
				current = nil
			}
			continue
		}
		if current == nil {
			current = &model.ErrorSpan{Start: tok.Start, End: tok.End}
			worst = class
		} else {
			current.End = tok.End
			if class > worst {
				worst = class
			}
		}
	}
	if current != nil {
		current.Severity = classSeverity[worst]
		spans = append(spans, *current)
	}

	for i := range spans {
		spans[i].Text = string(runes[spans[i].Start:spans[i].End])
	}
	return spans
}

func argmax(logits []float32) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}

// spansToMetadata renders spans as the loosely-typed document shape the
// extractor consumes.
func spansToMetadata(spans []model.ErrorSpan) []any {
	out := make([]any, len(spans))
	for i, s := range spans {
		out[i] = map[string]any{
			"text":     s.Text,
			"start":    s.Start,
			"end":      s.End,
			"severity": string(s.Severity),
		}
	}
	return out
}
