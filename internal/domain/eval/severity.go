package eval

import "github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"

// SeverityCounts is the per-tier breakdown of a span set. All three
// tiers are always present so clients can rely on the keys.
type SeverityCounts map[model.Severity]int

// ErrorReport is the outcome of an error detection pass: the spans at
// or above the requested severity, plus per-severity counts over the
// full span set before filtering.
type ErrorReport struct {
	Errors []model.ErrorSpan
	Counts SeverityCounts
}

// FilterBySeverity keeps the spans whose severity is at or above min
// and, independently of the threshold, counts every original span per
// tier. Callers use the full breakdown alongside the filtered list, so
// the counts deliberately ignore the filter. Spans with an unrecognized
// severity sort into the minor tier.
func FilterBySeverity(spans []model.ErrorSpan, min model.Severity) ([]model.ErrorSpan, SeverityCounts) {
	counts := SeverityCounts{
		model.SeverityMinor:    0,
		model.SeverityMajor:    0,
		model.SeverityCritical: 0,
	}

	threshold := min.Order()
	filtered := []model.ErrorSpan{}
	for _, span := range spans {
		counts[tierFor(span.Severity)]++
		if span.Severity.Order() >= threshold {
			filtered = append(filtered, span)
		}
	}
	return filtered, counts
}

// tierFor collapses unknown severities onto the minor bucket so the
// breakdown always sums to the original span count.
func tierFor(s model.Severity) model.Severity {
	switch s.Order() {
	case 2:
		return model.SeverityCritical
	case 1:
		return model.SeverityMajor
	default:
		return model.SeverityMinor
	}
}
