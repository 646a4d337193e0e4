// Package model contains domain models passed between layers.
package model

import "fmt"

// Severity classifies how damaging an error span is. The tiers are
// totally ordered: minor < major < critical.
type Severity string

// Known severity tiers.
const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Order maps a severity to its position in the total order. An
// unrecognized severity is treated as minor; the upstream model's
// annotation schema is best-effort, so this is a fallback, not an error.
func (s Severity) Order() int {
	switch s {
	case SeverityMajor:
		return 1
	case SeverityCritical:
		return 2
	default:
		return 0
	}
}

// TranslationPair is one unit of evaluation work. Reference is optional
// unless the configured model mandates it.
type TranslationPair struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
	Reference   string `json:"reference,omitempty"`
}

// HasReference reports whether a human reference translation was supplied.
func (p TranslationPair) HasReference() bool {
	return p.Reference != ""
}

// ErrorSpan is a localized quality defect inside Translation. Start and
// End are character offsets into the translation text.
type ErrorSpan struct {
	Text     string   `json:"text"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Severity Severity `json:"severity"`
}

// QualityLabel is the coarse four-tier classification derived from a score.
type QualityLabel string

// Quality tiers.
const (
	QualityExcellent QualityLabel = "Excellent"
	QualityGood      QualityLabel = "Good"
	QualityFair      QualityLabel = "Fair"
	QualityPoor      QualityLabel = "Poor"
)

// Label thresholds. These are a compatibility contract with existing
// callers and must not drift with the model.
const (
	ExcellentThreshold = 0.9
	GoodThreshold      = 0.7
	FairThreshold      = 0.5
)

// LabelForScore maps a score onto its quality tier.
func LabelForScore(score float64) QualityLabel {
	switch {
	case score >= ExcellentThreshold:
		return QualityExcellent
	case score >= GoodThreshold:
		return QualityGood
	case score >= FairThreshold:
		return QualityFair
	default:
		return QualityPoor
	}
}

// EvaluationResult is the normalized outcome of scoring one pair.
// Immutable once built.
type EvaluationResult struct {
	Score   float64
	Errors  []ErrorSpan
	Label   QualityLabel
	Summary string
}

// HasCritical reports whether any span is critical.
func (r EvaluationResult) HasCritical() bool {
	for _, e := range r.Errors {
		if e.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// BatchItem is one per-pair entry of a batch result, index-aligned with
// the input pairs.
type BatchItem struct {
	Index             int         `json:"index"`
	Score             float64     `json:"score"`
	Errors            []ErrorSpan `json:"errors"`
	ErrorCount        int         `json:"error_count"`
	HasCriticalErrors bool        `json:"has_critical_errors"`
}

// BatchResult aggregates a whole batch. Results always has one item per
// input pair; AverageScore is 0 for an empty batch.
type BatchResult struct {
	AverageScore  float64
	TotalPairs    int
	Results       []BatchItem
	GoodCount     int
	CriticalCount int
	Summary       string
}

// EmptyBatchSummary is returned for a zero-pair request, which never
// reaches the model.
const EmptyBatchSummary = "No pairs to evaluate."

// ResultSummary renders the one-line summary for a single evaluation.
func ResultSummary(label QualityLabel, score float64, errorCount int) string {
	return fmt.Sprintf("%s quality (score: %.3f) with %d error(s) detected.", label, score, errorCount)
}

// BatchSummary renders the one-line summary for a batch evaluation.
func BatchSummary(totalPairs int, averageScore float64, goodCount, criticalCount int) string {
	return fmt.Sprintf("Evaluated %d pairs. Average score: %.3f. %d good quality, %d with critical errors.",
		totalPairs, averageScore, goodCount, criticalCount)
}
