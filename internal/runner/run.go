package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inboxeval/internal/dispatch"
)

// Dataset errors surfaced before any example work starts.
var (
	ErrNoVariant    = errors.New("experiment variant is required")
	ErrNoExamples   = errors.New("example set is empty")
	ErrNoEvaluators = errors.New("at least one evaluator is required")
)

// DefaultConcurrency bounds concurrent adapter invocations when unset.
const DefaultConcurrency = 2

// Run executes one variant across the full example set and returns one
// Result with exactly one outcome per example. Individual failures are
// recorded, never propagated; a cancelled run returns the completed outcomes
// with Partial set alongside the context error.
func Run(ctx context.Context, params Params) (Result, error) {
	if params.Variant == nil {
		return Result{}, ErrNoVariant
	}
	if len(params.Examples) == 0 {
		return Result{}, ErrNoExamples
	}
	if len(params.Evaluators) == 0 {
		return Result{}, ErrNoEvaluators
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	now := params.Deps.Now
	if now == nil {
		now = time.Now
	}
	limiter := params.Deps.Limiter
	if limiter == nil {
		limiter = dispatch.NoopLimiter
	}

	result := Result{
		Experiment:       experimentName(params),
		Variant:          params.Variant.Name(),
		Suite:            params.Suite,
		StartedAt:        now(),
		ConcurrencyLimit: concurrency,
	}

	observer := params.Deps.Observer
	if observer != nil {
		observer.OnExperimentStart(result.Experiment, result.Variant, len(params.Examples))
	}

	deps := exampleDeps{
		params:        params,
		now:           now,
		observer:      observer,
		verboseWriter: wrapVerboseWriter(concurrency, params.Deps.VerboseWriter),
	}

	var (
		outcomes []ExampleOutcome
		partial  bool
		runErr   error
	)
	if concurrency <= 1 {
		outcomes, partial, runErr = runExamplesSequential(ctx, deps)
	} else {
		outcomes, partial, runErr = runExamplesConcurrent(ctx, limiter, concurrency, deps)
	}

	result.Outcomes = outcomes
	result.Partial = partial
	result.FinishedAt = now()
	if observer != nil {
		observer.OnExperimentEnd(result)
	}
	return result, runErr
}

// experimentName joins the name prefix and the variant name.
func experimentName(params Params) string {
	prefix := params.Experiment
	if prefix == "" {
		return params.Variant.Name()
	}
	return fmt.Sprintf("%s/%s", prefix, params.Variant.Name())
}
