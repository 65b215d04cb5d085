// Package runner executes experiments: one agent variant over one example
// set under bounded concurrency, producing one Result with exactly one
// outcome per example.
package runner

import (
	"io"
	"time"

	"inboxeval/internal/adapter"
	"inboxeval/internal/dataset"
	"inboxeval/internal/dispatch"
	"inboxeval/internal/evaluator"
)

// Params describes one experiment invocation.
type Params struct {
	// Experiment is the human-readable name prefix for the experiment.
	Experiment string
	// Suite labels the batch of results for external grouping.
	Suite string
	Variant    adapter.Adapter
	Examples   []dataset.Example
	Evaluators []evaluator.Evaluator
	// Concurrency bounds concurrent adapter invocations; defaults to 2.
	Concurrency int
	// Timeout bounds each adapter invocation; zero means no deadline.
	Timeout time.Duration
	Deps    Dependencies
}

// Dependencies carries injectable collaborators, primarily for tests.
type Dependencies struct {
	Now           func() time.Time
	Limiter       dispatch.Limiter
	Observer      RunObserver
	Verbose       bool
	VerboseWriter io.Writer
	NoColor       bool
}

// ScoreRecord is one flattened (example, evaluator) score.
type ScoreRecord struct {
	ExampleID   string         `json:"example_id"`
	Evaluator   string         `json:"evaluator"`
	Score       float64        `json:"score"`
	Pass        bool           `json:"pass"`
	Diagnostics map[string]any `json:"diagnostics,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// ExampleOutcome is the per-example unit collected into a Result.
type ExampleOutcome struct {
	ExampleID       string            `json:"example_id"`
	Subject         string            `json:"subject,omitempty"`
	Canonical       adapter.Canonical `json:"canonical"`
	Scores          []evaluator.Score `json:"scores"`
	Error           string            `json:"error,omitempty"`
	WallTimeSeconds float64           `json:"wall_time_seconds"`
}

// Pass reports whether every evaluator passed and no error was recorded.
func (o ExampleOutcome) Pass() bool {
	if o.Error != "" {
		return false
	}
	for _, score := range o.Scores {
		if !score.Pass {
			return false
		}
	}
	return true
}

// Result is one completed experiment. Immutable after Run returns.
type Result struct {
	Experiment       string           `json:"experiment"`
	Variant          string           `json:"variant"`
	Suite            string           `json:"suite,omitempty"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at"`
	ConcurrencyLimit int              `json:"concurrency_limit"`
	Partial          bool             `json:"partial,omitempty"`
	Outcomes         []ExampleOutcome `json:"outcomes"`
}

// Records flattens the result into one ScoreRecord per (example, evaluator).
// The outcome error, when set, is carried on each of its records.
func (r Result) Records() []ScoreRecord {
	records := make([]ScoreRecord, 0, len(r.Outcomes))
	for _, outcome := range r.Outcomes {
		for _, score := range outcome.Scores {
			records = append(records, ScoreRecord{
				ExampleID:   outcome.ExampleID,
				Evaluator:   score.Evaluator,
				Score:       score.Value,
				Pass:        score.Pass,
				Diagnostics: score.Diagnostics,
				Error:       outcome.Error,
			})
		}
	}
	return records
}
