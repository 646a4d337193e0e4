// Package validate enforces caller-facing request policy against the
// configured model's capabilities, before any inference cost is paid.
package validate

import (
	"fmt"
	"strings"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
)

// referenceRequired lists the model identifiers whose quality estimation
// is undefined without a human reference translation. Matching is a
// case-insensitive substring test so vendor-prefixed names
// ("Unbabel/wmt22-comet-da") match too.
var referenceRequired = []string{
	"wmt22-comet-da",
	"wmt21-comet-da",
	"wmt20-comet-da",
}

// RequiresReference reports whether modelName mandates a reference.
func RequiresReference(modelName string) bool {
	name := strings.ToLower(modelName)
	for _, r := range referenceRequired {
		if strings.Contains(name, r) {
			return true
		}
	}
	return false
}

// RequiresReferenceError is the explicit rejection for requests that
// omit a reference against a reference-mandatory model. MissingPairs is
// zero for single-pair requests and the offending count for batches.
type RequiresReferenceError struct {
	Model        string
	MissingPairs int
}

func (e *RequiresReferenceError) Error() string {
	if e.MissingPairs > 0 {
		return fmt.Sprintf("Model %q requires reference translations. %d pairs are missing reference.", e.Model, e.MissingPairs)
	}
	return fmt.Sprintf("Model %q requires a reference translation.", e.Model)
}

// Pair checks a single evaluation request against the model policy.
func Pair(modelName string, p model.TranslationPair) error {
	if RequiresReference(modelName) && !p.HasReference() {
		return &RequiresReferenceError{Model: modelName}
	}
	return nil
}

// Batch checks every pair of a batch request. The returned error names
// how many pairs lack a reference so the caller can locate the problem.
func Batch(modelName string, pairs []model.TranslationPair) error {
	if !RequiresReference(modelName) {
		return nil
	}
	missing := 0
	for _, p := range pairs {
		if !p.HasReference() {
			missing++
		}
	}
	if missing > 0 {
		return &RequiresReferenceError{Model: modelName, MissingPairs: missing}
	}
	return nil
}
