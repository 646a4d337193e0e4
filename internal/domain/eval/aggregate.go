package eval

import "github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"

// Aggregate computes batch statistics over index-aligned evaluation
// results. GoodCount uses the same threshold family as the "Good"
// quality label; CriticalCount counts results carrying at least one
// critical span. An empty result set yields the zero batch with its
// fixed summary and never consults the scores.
func Aggregate(results []model.EvaluationResult, pairCount int) model.BatchResult {
	if len(results) == 0 {
		return model.BatchResult{
			Results: []model.BatchItem{},
			Summary: model.EmptyBatchSummary,
		}
	}

	items := make([]model.BatchItem, len(results))
	var total float64
	var good, critical int
	for i, r := range results {
		hasCritical := r.HasCritical()
		items[i] = model.BatchItem{
			Index:             i,
			Score:             r.Score,
			Errors:            r.Errors,
			ErrorCount:        len(r.Errors),
			HasCriticalErrors: hasCritical,
		}
		total += r.Score
		if r.Score >= model.GoodThreshold {
			good++
		}
		if hasCritical {
			critical++
		}
	}

	average := total / float64(len(results))
	return model.BatchResult{
		AverageScore:  average,
		TotalPairs:    pairCount,
		Results:       items,
		GoodCount:     good,
		CriticalCount: critical,
		Summary:       model.BatchSummary(pairCount, average, good, critical),
	}
}
