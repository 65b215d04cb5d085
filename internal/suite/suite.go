// Package suite turns a dataset into Go subtests: one t.Run per example,
// scored with the same evaluators a full run uses. It gives a variant a
// conventional `go test` surface without involving the experiment runner.
package suite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"inboxeval/internal/adapter"
	"inboxeval/internal/dataset"
	"inboxeval/internal/evaluator"
)

// DefaultTimeout bounds a single example invocation when Params.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Params configures a dataset-driven subtest sweep.
type Params struct {
	Store      dataset.Store
	Dataset    string
	Adapter    adapter.Adapter
	Evaluators []evaluator.Evaluator
	// Timeout bounds each example invocation. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Run registers one subtest per example in the dataset. Each subtest invokes
// the adapter once, logs the canonical output, and fails when the invocation
// errors or any evaluator reports a non-passing score. Dataset problems fail
// the parent test before any subtest starts.
func Run(t *testing.T, p Params) {
	t.Helper()
	if p.Store == nil || p.Adapter == nil {
		t.Fatalf("suite: store and adapter are required")
	}
	examples, err := p.Store.Examples(context.Background(), p.Dataset)
	if err != nil {
		t.Fatalf("suite: load dataset %s: %v", p.Dataset, err)
	}
	if len(examples) == 0 {
		t.Fatalf("suite: dataset %s has no examples", p.Dataset)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	for _, example := range examples {
		t.Run(example.ID, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			output, err := p.Adapter.Adapt(ctx, example.Inputs.Email)
			if err != nil {
				t.Fatalf("invoke %s: %v", p.Adapter.Name(), err)
			}
			t.Logf("canonical output: %s", canonicalJSON(output))

			for _, ev := range p.Evaluators {
				score := ev.Evaluate(output, example.Outputs)
				t.Logf("%s: value=%.3f pass=%v", score.Evaluator, score.Value, score.Pass)
				if !score.Pass {
					t.Errorf("%s failed (value %.3f)", score.Evaluator, score.Value)
				}
			}
		})
	}
}

func canonicalJSON(output adapter.Canonical) string {
	payload, err := json.Marshal(output)
	if err != nil {
		return "<unencodable>"
	}
	return string(payload)
}
