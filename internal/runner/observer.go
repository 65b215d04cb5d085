package runner

import (
	"strconv"
	"strings"
	"time"

	"inboxeval/internal/dataset"
	"inboxeval/internal/dispatch"
)

// ExampleEventType identifies an example status update for observers.
type ExampleEventType string

const (
	// EventScheduled marks an example submitted to the scheduler.
	EventScheduled ExampleEventType = "scheduled"
	// EventWaitingRateLimit marks a reserve denial with retry metadata.
	EventWaitingRateLimit ExampleEventType = "waiting_rate_limit"
	// EventWaitingLimiterError marks a reserve error retry.
	EventWaitingLimiterError ExampleEventType = "waiting_limiter_error"
	// EventRunning marks an active adapter invocation.
	EventRunning ExampleEventType = "running"
	// EventPassed marks an example whose evaluators all passed.
	EventPassed ExampleEventType = "passed"
	// EventFailed marks an example with at least one failing evaluator.
	EventFailed ExampleEventType = "failed"
	// EventErrored marks a recorded invocation or evaluator failure.
	EventErrored ExampleEventType = "errored"
)

// ExampleEvent carries a single status update for an example.
type ExampleEvent struct {
	Experiment   string
	Variant      string
	Index        int
	ExampleID    string
	Subject      string
	Type         ExampleEventType
	RetryAfterMs int
	Error        string
	EmittedAt    time.Time
}

// RunObserver receives run lifecycle events for UI or logging.
type RunObserver interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID, commit string)
	// OnExperimentStart signals the start of one experiment.
	OnExperimentStart(experiment, variant string, total int)
	// OnExampleEvent delivers an example status update.
	OnExampleEvent(event ExampleEvent)
	// OnExperimentEnd signals experiment completion.
	OnExperimentEnd(result Result)
	// OnRunEnd signals run completion.
	OnRunEnd(set ResultSet)
}

// emitExampleEvent forwards one example update to the observer, if any.
func emitExampleEvent(deps exampleDeps, index int, example dataset.Example, eventType ExampleEventType, errText string) {
	if deps.observer == nil {
		return
	}
	deps.observer.OnExampleEvent(ExampleEvent{
		Experiment: experimentName(deps.params),
		Variant:    deps.params.Variant.Name(),
		Index:      index,
		ExampleID:  example.ID,
		Subject:    example.Inputs.Email.Summary(),
		Type:       eventType,
		Error:      errText,
		EmittedAt:  deps.now(),
	})
}

// exampleJobObserver translates scheduler events into example events.
type exampleJobObserver struct {
	deps exampleDeps
}

// newExampleJobObserver returns nil when no run observer is attached.
func newExampleJobObserver(deps exampleDeps) dispatch.Observer {
	if deps.observer == nil {
		return nil
	}
	return &exampleJobObserver{deps: deps}
}

// OnReserveDenied reports a rate-limit wait for the job's example.
func (o *exampleJobObserver) OnReserveDenied(job dispatch.Job, res dispatch.ReserveResponse) {
	index, example, ok := o.lookup(job)
	if !ok {
		return
	}
	o.deps.observer.OnExampleEvent(ExampleEvent{
		Experiment:   experimentName(o.deps.params),
		Variant:      o.deps.params.Variant.Name(),
		Index:        index,
		ExampleID:    example.ID,
		Subject:      example.Inputs.Email.Summary(),
		Type:         EventWaitingRateLimit,
		RetryAfterMs: res.RetryAfterMs,
		EmittedAt:    o.deps.now(),
	})
}

// OnReserveError reports a limiter error retry for the job's example.
func (o *exampleJobObserver) OnReserveError(job dispatch.Job, err error) {
	index, example, ok := o.lookup(job)
	if !ok {
		return
	}
	o.deps.observer.OnExampleEvent(ExampleEvent{
		Experiment: experimentName(o.deps.params),
		Variant:    o.deps.params.Variant.Name(),
		Index:      index,
		ExampleID:  example.ID,
		Subject:    example.Inputs.Email.Summary(),
		Type:       EventWaitingLimiterError,
		Error:      err.Error(),
		EmittedAt:  o.deps.now(),
	})
}

// lookup recovers the example index from the job ID suffix.
func (o *exampleJobObserver) lookup(job dispatch.Job) (int, dataset.Example, bool) {
	cut := strings.LastIndexByte(job.JobID, '-')
	if cut < 0 {
		return 0, dataset.Example{}, false
	}
	ordinal, err := strconv.Atoi(job.JobID[cut+1:])
	if err != nil {
		return 0, dataset.Example{}, false
	}
	index := ordinal - 1
	if index < 0 || index >= len(o.deps.params.Examples) {
		return 0, dataset.Example{}, false
	}
	return index, o.deps.params.Examples[index], true
}
