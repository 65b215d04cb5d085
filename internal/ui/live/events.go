package live

import "inboxeval/internal/runner"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventExperimentStart signals the start of an experiment.
	EventExperimentStart
	// EventExample delivers an example status update.
	EventExample
	// EventExperimentEnd signals experiment completion.
	EventExperimentEnd
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind       EventKind
	RunID      string
	Commit     string
	Experiment string
	Variant    string
	Total      int
	Partial    bool
	Passed     int
	Failed     int
	Example    runner.ExampleEvent
}
