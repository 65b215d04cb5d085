// Package evaluator scores canonical agent outputs against reference
// expectations. Evaluators are pure: no I/O, no agent calls, and they
// tolerate the all-empty canonical produced for failed invocations.
package evaluator

import (
	"inboxeval/internal/adapter"
	"inboxeval/internal/dataset"
)

// Score is the outcome of one evaluator over one canonical output.
type Score struct {
	Evaluator   string         `json:"evaluator"`
	Value       float64        `json:"value"`
	Pass        bool           `json:"pass"`
	Diagnostics map[string]any `json:"diagnostics,omitempty"`
}

// Evaluator compares a canonical output against a reference expectation.
type Evaluator interface {
	// Name identifies the evaluator in results and reports.
	Name() string
	// Evaluate scores one output. It must never panic on empty fields.
	Evaluate(output adapter.Canonical, reference dataset.Expectation) Score
}

func passScore(name string, diagnostics map[string]any) Score {
	return Score{Evaluator: name, Value: 1, Pass: true, Diagnostics: diagnostics}
}

func failScore(name string, diagnostics map[string]any) Score {
	return Score{Evaluator: name, Value: 0, Pass: false, Diagnostics: diagnostics}
}
