// Package eval normalizes raw model output into evaluation results and
// computes derived views over them (severity filtering, batch aggregation).
package eval

import (
	"fmt"
	"math"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
)

// Output is the raw shape produced by a scoring engine: one score per
// input pair plus optional, loosely-structured per-pair metadata. The
// metadata schema is best-effort; readers must apply per-field defaults
// instead of assuming a fixed shape.
type Output struct {
	Scores   []float64
	Metadata []map[string]any
}

// Extract converts the raw output for one pair into a normalized
// EvaluationResult. The base score is mandatory: a missing index or a
// non-finite value fails with ErrMalformedOutput. Error spans are
// optional and degrade field by field (empty text, zero offsets, minor
// severity) when absent.
func Extract(out *Output, index int) (model.EvaluationResult, error) {
	if out == nil || index < 0 || index >= len(out.Scores) {
		return model.EvaluationResult{}, fmt.Errorf("score at index %d: %w", index, ErrMalformedOutput)
	}
	score := out.Scores[index]
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return model.EvaluationResult{}, fmt.Errorf("score at index %d is not finite: %w", index, ErrMalformedOutput)
	}

	spans := extractSpans(out.Metadata, index)
	label := model.LabelForScore(score)

	return model.EvaluationResult{
		Score:   score,
		Errors:  spans,
		Label:   label,
		Summary: model.ResultSummary(label, score, len(spans)),
	}, nil
}

// extractSpans reads metadata[index]["error_spans"] tolerantly. Anything
// that does not look like a span collection yields an empty list.
func extractSpans(metadata []map[string]any, index int) []model.ErrorSpan {
	spans := []model.ErrorSpan{}
	if index >= len(metadata) || metadata[index] == nil {
		return spans
	}
	raw, ok := metadata[index]["error_spans"].([]any)
	if !ok {
		return spans
	}
	for _, item := range raw {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		spans = append(spans, model.ErrorSpan{
			Text:     asString(fields["text"], ""),
			Start:    asInt(fields["start"], 0),
			End:      asInt(fields["end"], 0),
			Severity: model.Severity(asString(fields["severity"], string(model.SeverityMinor))),
		})
	}
	return spans
}

func asString(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

// asInt accepts the numeric shapes a JSON-ish document may carry.
func asInt(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return fallback
	}
}
