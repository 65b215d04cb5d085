package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"inboxeval/internal/adapter"
	"inboxeval/internal/dataset"
	"inboxeval/internal/dispatch"
	"inboxeval/internal/evaluator"
)

// exampleDeps bundles dependencies for executing a single example.
type exampleDeps struct {
	params        Params
	now           func() time.Time
	observer      RunObserver
	verboseWriter io.Writer
}

// exampleSlot carries one finished outcome back to its input index.
type exampleSlot struct {
	index   int
	outcome ExampleOutcome
}

// runExamplesSequential executes examples one at a time, checking for
// cancellation between examples.
func runExamplesSequential(ctx context.Context, deps exampleDeps) ([]ExampleOutcome, bool, error) {
	outcomes := make([]ExampleOutcome, 0, len(deps.params.Examples))
	for index, example := range deps.params.Examples {
		if err := ctx.Err(); err != nil {
			return outcomes, true, err
		}
		outcomes = append(outcomes, executeExample(ctx, deps, index, example))
	}
	return outcomes, false, nil
}

// runExamplesConcurrent executes examples through the bounded scheduler.
// Outcomes land in per-example slots addressed by input index, so no shared
// collection is mutated during evaluation.
func runExamplesConcurrent(ctx context.Context, limiter dispatch.Limiter, workers int, deps exampleDeps) ([]ExampleOutcome, bool, error) {
	total := len(deps.params.Examples)
	outcomes := make([]ExampleOutcome, total)
	received := make([]bool, total)
	resultCh := make(chan exampleSlot, total)

	scheduler := dispatch.NewSchedulerWithObserver(limiter, workers, newExampleJobObserver(deps))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = scheduler.Shutdown(shutdownCtx)
	}()

	for index, example := range deps.params.Examples {
		idx := index
		item := example
		scheduler.Submit(dispatch.Job{
			JobID:   exampleJobID(deps.params, idx),
			Variant: deps.params.Variant.Name(),
			Execute: func(context.Context) {
				resultCh <- exampleSlot{index: idx, outcome: executeExample(ctx, deps, idx, item)}
			},
		})
	}

	for count := 0; count < total; count++ {
		select {
		case <-ctx.Done():
			completed := make([]ExampleOutcome, 0, count)
			for i, ok := range received {
				if ok {
					completed = append(completed, outcomes[i])
				}
			}
			return completed, true, ctx.Err()
		case slot := <-resultCh:
			outcomes[slot.index] = slot.outcome
			received[slot.index] = true
		}
	}
	return outcomes, false, nil
}

// executeExample runs one example end-to-end: adapter invocation under the
// per-example timeout, then evaluation. Adapter failures and evaluator
// panics are recorded as worst-case scores, never propagated.
func executeExample(ctx context.Context, deps exampleDeps, index int, example dataset.Example) ExampleOutcome {
	start := deps.now()
	outcome := ExampleOutcome{
		ExampleID: example.ID,
		Subject:   example.Inputs.Email.Summary(),
	}
	emitExampleEvent(deps, index, example, EventRunning, "")
	logVerbose(deps.params.Deps.Verbose, deps.verboseWriter, deps.params.Deps.NoColor, styleTask,
		"Example %s (%d/%d) variant=%s", example.ID, index+1, len(deps.params.Examples), deps.params.Variant.Name())

	canonical, invokeErr := invokeAdapter(ctx, deps, example)
	if invokeErr != nil {
		outcome.Error = invokeErr.Error()
		outcome.Canonical = adapter.Canonical{}
		outcome.Scores = worstCaseScores(deps.params.Evaluators)
		outcome.WallTimeSeconds = deps.now().Sub(start).Seconds()
		emitExampleEvent(deps, index, example, EventErrored, outcome.Error)
		logVerbose(deps.params.Deps.Verbose, deps.verboseWriter, deps.params.Deps.NoColor, styleError,
			"Example %s error=%v", example.ID, invokeErr)
		return outcome
	}

	outcome.Canonical = canonical
	scores := make([]evaluator.Score, 0, len(deps.params.Evaluators))
	for _, eval := range deps.params.Evaluators {
		score, evalErr := safeEvaluate(eval, canonical, example.Outputs)
		if evalErr != nil && outcome.Error == "" {
			outcome.Error = evalErr.Error()
		}
		scores = append(scores, score)
	}
	outcome.Scores = scores
	outcome.WallTimeSeconds = deps.now().Sub(start).Seconds()

	switch {
	case outcome.Error != "":
		emitExampleEvent(deps, index, example, EventErrored, outcome.Error)
	case outcome.Pass():
		emitExampleEvent(deps, index, example, EventPassed, "")
	default:
		emitExampleEvent(deps, index, example, EventFailed, "")
	}
	logVerbose(deps.params.Deps.Verbose, deps.verboseWriter, deps.params.Deps.NoColor, styleMetrics,
		"Example %s pass=%v wall_time=%.3fs", example.ID, outcome.Pass(), outcome.WallTimeSeconds)
	return outcome
}

// invokeAdapter calls the variant once under the per-example deadline,
// recovering panics into invocation errors.
func invokeAdapter(ctx context.Context, deps exampleDeps, example dataset.Example) (canonical adapter.Canonical, err error) {
	invokeCtx := ctx
	if deps.params.Timeout > 0 {
		var cancel context.CancelFunc
		invokeCtx, cancel = context.WithTimeout(ctx, deps.params.Timeout)
		defer cancel()
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			canonical = adapter.Canonical{}
			err = &adapter.InvocationError{
				Variant: deps.params.Variant.Name(),
				Stage:   adapter.StageInvoke,
				Err:     fmt.Errorf("adapter panic: %v", recovered),
			}
		}
	}()
	return deps.params.Variant.Adapt(invokeCtx, example.Inputs.Email)
}

// safeEvaluate applies one evaluator, converting a panic into a worst-case
// score and an error instead of aborting the batch.
func safeEvaluate(eval evaluator.Evaluator, canonical adapter.Canonical, reference dataset.Expectation) (score evaluator.Score, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			score = evaluator.Score{Evaluator: eval.Name()}
			err = fmt.Errorf("evaluator %s panic: %v", eval.Name(), recovered)
		}
	}()
	return eval.Evaluate(canonical, reference), nil
}

// worstCaseScores synthesizes zero scores for a failed invocation.
func worstCaseScores(evaluators []evaluator.Evaluator) []evaluator.Score {
	scores := make([]evaluator.Score, 0, len(evaluators))
	for _, eval := range evaluators {
		scores = append(scores, evaluator.Score{Evaluator: eval.Name()})
	}
	return scores
}

// exampleJobID keys one example's scheduler job.
func exampleJobID(params Params, index int) string {
	return fmt.Sprintf("%s-%d", params.Variant.Name(), index+1)
}
