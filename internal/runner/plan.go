package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"inboxeval/internal/adapter"
	"inboxeval/internal/agent"
	"inboxeval/internal/config"
	"inboxeval/internal/dataset"
	"inboxeval/internal/dispatch"
	"inboxeval/internal/evaluator"
)

// AdapterFactory builds the adapter for one configured variant.
type AdapterFactory func(cfg config.VariantConfig) (adapter.Adapter, error)

// HTTPAdapterFactory builds HTTP-backed adapters from variant config. A nil
// client falls back to http.DefaultClient.
func HTTPAdapterFactory(client agent.HTTPDoer) AdapterFactory {
	return func(cfg config.VariantConfig) (adapter.Adapter, error) {
		caller, err := agent.NewHTTPCaller(cfg.Endpoint, "", client)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", cfg.ID, err)
		}
		switch cfg.Type {
		case config.VariantWorkflow:
			return adapter.NewWorkflowAdapter(cfg.ID, caller), nil
		case config.VariantToolAgent:
			return adapter.NewToolAgentAdapter(cfg.ID, caller), nil
		default:
			return nil, fmt.Errorf("variant %s: unknown type %q", cfg.ID, cfg.Type)
		}
	}
}

// AllParams describes one full run across every configured experiment.
type AllParams struct {
	Config      config.Config
	Root        string
	Suite       string
	Commit      string
	RunID       string
	Experiments []string
	Variants    []string
	Adapters    AdapterFactory
	Store       dataset.Store
	Deps        Dependencies
}

// RunAll executes every configured experiment across its variants and
// returns the collected ResultSet. Cancellation returns the experiments
// completed so far with the set marked partial.
func RunAll(ctx context.Context, params AllParams) (ResultSet, error) {
	if params.Adapters == nil {
		return ResultSet{}, errors.New("adapter factory is required")
	}
	if params.Store == nil {
		return ResultSet{}, errors.New("dataset store is required")
	}
	now := params.Deps.Now
	if now == nil {
		now = time.Now
	}
	runID := params.RunID
	if runID == "" {
		generated, err := NewRunID()
		if err != nil {
			return ResultSet{}, fmt.Errorf("generate run ID: %w", err)
		}
		runID = generated
	}

	set := ResultSet{
		RunID:     runID,
		Suite:     params.Suite,
		Commit:    params.Commit,
		StartedAt: now(),
	}
	if observer := params.Deps.Observer; observer != nil {
		observer.OnRunStart(runID, params.Commit)
	}

	deps := params.Deps
	if deps.Limiter == nil {
		deps.Limiter = LimiterFromConfig(params.Config)
	}

	experiments, err := selectExperiments(params.Config, params.Experiments)
	if err != nil {
		return ResultSet{}, err
	}

	var runErr error
experiments:
	for _, experiment := range experiments {
		examples, err := params.Store.Examples(ctx, experiment.Dataset)
		if err != nil {
			runErr = fmt.Errorf("experiment %s: %w", experiment.ID, err)
			break
		}
		evaluators, err := Evaluators(experiment.Evaluators, schemaPath(params.Root, experiment))
		if err != nil {
			runErr = fmt.Errorf("experiment %s: %w", experiment.ID, err)
			break
		}
		variants, err := selectVariants(params.Config, experiment, params.Variants)
		if err != nil {
			runErr = fmt.Errorf("experiment %s: %w", experiment.ID, err)
			break
		}
		for _, variantCfg := range variants {
			if err := ctx.Err(); err != nil {
				set.Partial = true
				runErr = err
				break experiments
			}
			variant, err := params.Adapters(variantCfg)
			if err != nil {
				runErr = fmt.Errorf("experiment %s: %w", experiment.ID, err)
				break experiments
			}
			result, err := Run(ctx, Params{
				Experiment:  experiment.ID,
				Suite:       params.Suite,
				Variant:     variant,
				Examples:    examples,
				Evaluators:  evaluators,
				Concurrency: experiment.Concurrency,
				Timeout:     time.Duration(experiment.TimeoutSeconds) * time.Second,
				Deps:        deps,
			})
			set.Experiments = append(set.Experiments, result)
			if err != nil {
				set.Partial = true
				runErr = err
				break experiments
			}
		}
	}

	set.FinishedAt = now()
	set.Summary = Summarize(set.Experiments)
	if observer := params.Deps.Observer; observer != nil {
		observer.OnRunEnd(set)
	}
	return set, runErr
}

// Evaluators resolves evaluator names to instances. transcript_schema needs
// the experiment's schema path.
func Evaluators(names []string, schemaFile string) ([]evaluator.Evaluator, error) {
	evaluators := make([]evaluator.Evaluator, 0, len(names))
	for _, name := range names {
		switch name {
		case "classification_match":
			evaluators = append(evaluators, evaluator.ClassificationMatch{})
		case "tool_call_coverage":
			evaluators = append(evaluators, evaluator.ToolCallCoverage{})
		case "response_contains":
			evaluators = append(evaluators, evaluator.ResponseContains{})
		case "transcript_schema":
			if schemaFile == "" {
				return nil, errors.New("transcript_schema requires a schema file")
			}
			schema, err := evaluator.NewTranscriptSchema(schemaFile)
			if err != nil {
				return nil, err
			}
			evaluators = append(evaluators, schema)
		default:
			return nil, fmt.Errorf("unknown evaluator %q", name)
		}
	}
	return evaluators, nil
}

// LimiterFromConfig builds the in-process rolling limiter from configured
// rate limits, or a noop limiter when none are set.
func LimiterFromConfig(cfg config.Config) dispatch.Limiter {
	if len(cfg.RateLimits) == 0 {
		return dispatch.NoopLimiter
	}
	limits := make(map[dispatch.LimitKey]dispatch.RollingLimit, len(cfg.RateLimits))
	for _, limit := range cfg.RateLimits {
		limits[dispatch.LimitKey(limit.Variant)] = dispatch.RollingLimit{
			Requests: limit.Requests,
			Window:   time.Duration(limit.WindowSeconds) * time.Second,
		}
	}
	return dispatch.NewRollingLimiter(limits)
}

// selectExperiments filters configured experiments by ID, preserving the
// config order. An empty filter selects everything.
func selectExperiments(cfg config.Config, ids []string) ([]config.ExperimentConfig, error) {
	if len(ids) == 0 {
		return cfg.Experiments, nil
	}
	byID := make(map[string]config.ExperimentConfig, len(cfg.Experiments))
	for _, experiment := range cfg.Experiments {
		byID[experiment.ID] = experiment
	}
	selected := make([]config.ExperimentConfig, 0, len(ids))
	for _, id := range ids {
		experiment, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown experiment %q", id)
		}
		selected = append(selected, experiment)
	}
	return selected, nil
}

// selectVariants resolves the experiment's variant IDs, applying an optional
// run-level filter.
func selectVariants(cfg config.Config, experiment config.ExperimentConfig, filter []string) ([]config.VariantConfig, error) {
	byID := make(map[string]config.VariantConfig, len(cfg.Variants))
	for _, variant := range cfg.Variants {
		byID[variant.ID] = variant
	}
	allowed := map[string]bool{}
	for _, id := range filter {
		allowed[id] = true
	}
	selected := make([]config.VariantConfig, 0, len(experiment.Variants))
	for _, id := range experiment.Variants {
		if len(allowed) > 0 && !allowed[id] {
			continue
		}
		variant, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown variant %q", id)
		}
		selected = append(selected, variant)
	}
	if len(selected) == 0 {
		return nil, errors.New("no variants selected")
	}
	return selected, nil
}

// schemaPath resolves the experiment's schema file relative to the repo root.
func schemaPath(root string, experiment config.ExperimentConfig) string {
	if experiment.Schema == "" {
		return ""
	}
	if filepath.IsAbs(experiment.Schema) || root == "" {
		return experiment.Schema
	}
	return filepath.Join(root, experiment.Schema)
}
