package live

import (
	"time"

	"inboxeval/internal/runner"
)

// ExampleRow holds UI state for a single example.
type ExampleRow struct {
	Index        int
	ID           string
	Subject      string
	Status       runner.ExampleEventType
	RetryCount   int
	RetryAfterMs int
	StartedAt    time.Time
	FinishedAt   time.Time
	Error        string
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Queued  int
	Waiting int
	Running int
	Done    int
	Passed  int
	Failed  int
	Errored int
}

// State captures the live UI state for one experiment of a run.
type State struct {
	RunID      string
	Commit     string
	Experiment string
	Variant    string
	Total      int
	StartedAt  time.Time
	LastEvent  string
	Rows       []ExampleRow
	Counts     StatusCounts
}
