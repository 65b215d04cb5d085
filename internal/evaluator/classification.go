package evaluator

import (
	"strings"

	"inboxeval/internal/adapter"
	"inboxeval/internal/dataset"
)

// ClassificationMatch checks case-insensitive equality of the reference
// classification and the canonical decision. An absent decision never
// matches any reference value.
type ClassificationMatch struct{}

// Name identifies the evaluator.
func (ClassificationMatch) Name() string { return "classification_match" }

// Evaluate scores true iff the lower-cased decision equals the lower-cased
// reference label.
func (e ClassificationMatch) Evaluate(output adapter.Canonical, reference dataset.Expectation) Score {
	expected := strings.ToLower(strings.TrimSpace(reference.Classification))
	got := strings.ToLower(strings.TrimSpace(output.Decision))
	diagnostics := map[string]any{
		"expected": expected,
		"actual":   got,
	}
	if got == "" || got != expected {
		return failScore(e.Name(), diagnostics)
	}
	return passScore(e.Name(), diagnostics)
}
