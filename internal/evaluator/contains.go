package evaluator

import (
	"strings"

	"inboxeval/internal/adapter"
	"inboxeval/internal/dataset"
)

// ResponseContains checks that every required substring from the reference
// appears in the transcript, case-insensitively.
type ResponseContains struct{}

// Name identifies the evaluator.
func (ResponseContains) Name() string { return "response_contains" }

// Evaluate scores 1.0 iff no required substring is missing. An example with
// no must_contain entries passes vacuously.
func (e ResponseContains) Evaluate(output adapter.Canonical, reference dataset.Expectation) Score {
	transcript := strings.ToLower(output.Transcript)
	missing := make([]string, 0)
	for _, required := range reference.MustContain {
		required = strings.TrimSpace(required)
		if required == "" {
			continue
		}
		if !strings.Contains(transcript, strings.ToLower(required)) {
			missing = append(missing, required)
		}
	}
	diagnostics := map[string]any{"missing_strings": missing}
	if len(missing) > 0 {
		return failScore(e.Name(), diagnostics)
	}
	return passScore(e.Name(), diagnostics)
}
