package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"inboxeval/internal/adapter"
	"inboxeval/internal/config"
	"inboxeval/internal/dataset"
	"inboxeval/internal/dispatch"
	"inboxeval/internal/mail"
)

func planConfig() config.Config {
	return config.Config{
		Version: 1,
		Variants: []config.VariantConfig{
			{ID: "workflow-v1", Type: config.VariantWorkflow, Endpoint: "http://localhost:9001/invoke"},
			{ID: "agent-v2", Type: config.VariantToolAgent, Endpoint: "http://localhost:9002/invoke"},
		},
		Experiments: []config.ExperimentConfig{
			{
				ID:         "triage",
				Dataset:    "triage",
				Variants:   []string{"workflow-v1", "agent-v2"},
				Evaluators: []string{"classification_match", "tool_call_coverage"},
			},
		},
	}
}

func planStore(t *testing.T) dataset.Store {
	t.Helper()
	store := dataset.NewMemStore()
	if err := store.Create(context.Background(), "triage", "triage examples", makeExamples(3)); err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	return store
}

func scriptedFactory(t *testing.T) AdapterFactory {
	t.Helper()
	return func(cfg config.VariantConfig) (adapter.Adapter, error) {
		return &fakeAdapter{name: cfg.ID, fn: func(_ context.Context, _ mail.EmailInput) (adapter.Canonical, error) {
			if cfg.ID == "agent-v2" {
				return adapter.Canonical{Decision: adapter.DecisionIgnore}, nil
			}
			return passingCanonical(), nil
		}}, nil
	}
}

// TestRunAllExecutesEveryVariant verifies one Result per experiment variant.
func TestRunAllExecutesEveryVariant(t *testing.T) {
	set, err := RunAll(context.Background(), AllParams{
		Config:   planConfig(),
		Suite:    "local",
		Commit:   "abc1234",
		RunID:    "20240101T000000Z-00aabb",
		Adapters: scriptedFactory(t),
		Store:    planStore(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Partial {
		t.Fatalf("unexpected partial set")
	}
	if len(set.Experiments) != 2 {
		t.Fatalf("expected 2 experiments, got %d", len(set.Experiments))
	}
	if set.Experiments[0].Experiment != "triage/workflow-v1" || set.Experiments[1].Experiment != "triage/agent-v2" {
		t.Fatalf("unexpected experiment names: %s, %s", set.Experiments[0].Experiment, set.Experiments[1].Experiment)
	}
	if set.Summary.ExperimentsTotal != 2 || set.Summary.ExamplesTotal != 6 {
		t.Fatalf("unexpected summary: %+v", set.Summary)
	}
	if set.Summary.ExamplesPassed != 3 || set.Summary.ExamplesFailed != 3 {
		t.Fatalf("unexpected pass/fail split: %+v", set.Summary)
	}
}

// TestRunAllGeneratesRunID verifies a run ID is minted when absent.
func TestRunAllGeneratesRunID(t *testing.T) {
	set, err := RunAll(context.Background(), AllParams{
		Config:   planConfig(),
		Adapters: scriptedFactory(t),
		Store:    planStore(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.RunID == "" {
		t.Fatalf("expected generated run ID")
	}
}

// TestRunAllVariantFilter verifies the run-level variant filter.
func TestRunAllVariantFilter(t *testing.T) {
	set, err := RunAll(context.Background(), AllParams{
		Config:   planConfig(),
		Variants: []string{"agent-v2"},
		Adapters: scriptedFactory(t),
		Store:    planStore(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Experiments) != 1 || set.Experiments[0].Variant != "agent-v2" {
		t.Fatalf("unexpected experiments: %+v", set.Experiments)
	}
}

// TestRunAllUnknownExperiment verifies experiment selection failures.
func TestRunAllUnknownExperiment(t *testing.T) {
	_, err := RunAll(context.Background(), AllParams{
		Config:      planConfig(),
		Experiments: []string{"nope"},
		Adapters:    scriptedFactory(t),
		Store:       planStore(t),
	})
	if err == nil {
		t.Fatalf("expected error for unknown experiment")
	}
}

// TestRunAllMissingDataset verifies dataset store errors stop the run.
func TestRunAllMissingDataset(t *testing.T) {
	cfg := planConfig()
	cfg.Experiments[0].Dataset = "absent"
	_, err := RunAll(context.Background(), AllParams{
		Config:   cfg,
		Adapters: scriptedFactory(t),
		Store:    dataset.NewMemStore(),
	})
	if err == nil {
		t.Fatalf("expected error for missing dataset")
	}
}

// TestEvaluatorsResolution verifies evaluator name resolution.
func TestEvaluatorsResolution(t *testing.T) {
	evaluators, err := Evaluators([]string{"classification_match", "tool_call_coverage", "response_contains"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evaluators) != 3 {
		t.Fatalf("expected 3 evaluators, got %d", len(evaluators))
	}
	if _, err := Evaluators([]string{"mystery"}, ""); err == nil {
		t.Fatalf("expected error for unknown evaluator")
	}
	if _, err := Evaluators([]string{"transcript_schema"}, ""); err == nil {
		t.Fatalf("expected error for schema evaluator without schema file")
	}
}

// TestHTTPAdapterFactory verifies variant-type dispatch.
func TestHTTPAdapterFactory(t *testing.T) {
	factory := HTTPAdapterFactory(nil)
	workflow, err := factory(config.VariantConfig{ID: "w", Type: config.VariantWorkflow, Endpoint: "http://localhost/invoke"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if workflow.Name() != "w" {
		t.Fatalf("unexpected adapter name: %q", workflow.Name())
	}
	if _, err := factory(config.VariantConfig{ID: "x", Type: "mystery", Endpoint: "http://localhost/invoke"}); err == nil {
		t.Fatalf("expected error for unknown variant type")
	}
	if _, err := factory(config.VariantConfig{ID: "y", Type: config.VariantWorkflow}); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
}

// TestLimiterFromConfig verifies limiter construction from rate limits.
func TestLimiterFromConfig(t *testing.T) {
	if limiter := LimiterFromConfig(config.Config{}); limiter != dispatch.NoopLimiter {
		t.Fatalf("expected noop limiter without rate limits")
	}
	limiter := LimiterFromConfig(config.Config{RateLimits: []config.RateLimitConfig{
		{Variant: "agent-v2", Requests: 1, WindowSeconds: 60},
	}})
	first, err := limiter.Reserve(context.Background(), dispatch.ReserveRequest{LeaseID: "l1", JobID: "j1", Key: "agent-v2"})
	if err != nil || !first.Allowed {
		t.Fatalf("first reserve should be allowed: %+v err=%v", first, err)
	}
	second, err := limiter.Reserve(context.Background(), dispatch.ReserveRequest{LeaseID: "l2", JobID: "j2", Key: "agent-v2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Allowed {
		t.Fatalf("second reserve should be denied inside the window")
	}
}

// slowFactory builds adapters that never finish until cancelled.
func slowFactory() AdapterFactory {
	return func(cfg config.VariantConfig) (adapter.Adapter, error) {
		return &fakeAdapter{name: cfg.ID, fn: func(ctx context.Context, _ mail.EmailInput) (adapter.Canonical, error) {
			<-ctx.Done()
			return adapter.Canonical{}, fmt.Errorf("cancelled: %w", ctx.Err())
		}}, nil
	}
}

// TestRunAllCancelMarksPartial verifies cancellation marks the set partial.
func TestRunAllCancelMarksPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	set, err := RunAll(ctx, AllParams{
		Config:   planConfig(),
		Adapters: slowFactory(),
		Store:    planStore(t),
	})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if !set.Partial {
		t.Fatalf("expected partial result set")
	}
}
