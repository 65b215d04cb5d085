package evaluator

import (
	"inboxeval/internal/adapter"
	"inboxeval/internal/dataset"
)

// ToolCallCoverage checks that every expected tool call appears among the
// actual calls, case-insensitively. Order and extra calls are not penalized;
// extras are surfaced in diagnostics only.
type ToolCallCoverage struct{}

// Name identifies the evaluator.
func (ToolCallCoverage) Name() string { return "tool_call_coverage" }

// Evaluate scores 1.0 iff no expected call is missing from the actual calls.
func (e ToolCallCoverage) Evaluate(output adapter.Canonical, reference dataset.Expectation) Score {
	actual := make(map[string]struct{}, len(output.ToolCalls))
	actualList := make([]string, 0, len(output.ToolCalls))
	for _, call := range output.ToolCalls {
		normalized := dataset.NormalizeToolCall(call)
		actual[normalized] = struct{}{}
		actualList = append(actualList, normalized)
	}

	expected := make(map[string]struct{}, len(reference.ToolCalls))
	missing := make([]string, 0)
	for _, call := range reference.ToolCalls {
		normalized := dataset.NormalizeToolCall(call)
		if normalized == "" {
			continue
		}
		expected[normalized] = struct{}{}
		if _, ok := actual[normalized]; !ok {
			missing = append(missing, normalized)
		}
	}

	unexpected := make([]string, 0)
	for _, call := range actualList {
		if _, ok := expected[call]; !ok {
			unexpected = append(unexpected, call)
		}
	}

	diagnostics := map[string]any{
		"missing_calls":    missing,
		"actual_calls":     actualList,
		"unexpected_calls": unexpected,
	}
	if len(missing) > 0 {
		return failScore(e.Name(), diagnostics)
	}
	return passScore(e.Name(), diagnostics)
}
