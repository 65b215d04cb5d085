// Package adapter normalizes heterogeneous agent variants into one canonical
// output shape so evaluators never see a variant's native interface.
package adapter

import (
	"context"
	"errors"
	"fmt"

	"inboxeval/internal/agent"
	"inboxeval/internal/mail"
)

// Canonical decision values. An empty decision means the variant exposed none.
const (
	DecisionRespond = "respond"
	DecisionNotify  = "notify"
	DecisionIgnore  = "ignore"
)

// Canonical is the normalized record every variant invocation is mapped into.
type Canonical struct {
	Decision   string   `json:"classification_decision,omitempty"`
	ToolCalls  []string `json:"tool_calls,omitempty"`
	Transcript string   `json:"raw_transcript,omitempty"`
}

// Adapter maps one email input through one agent variant into a Canonical.
// Implementations invoke their wrapped agent exactly once per call and never
// mutate the input.
type Adapter interface {
	// Name identifies the variant for results and reports.
	Name() string
	// Adapt invokes the wrapped agent and normalizes its reply.
	Adapt(ctx context.Context, email mail.EmailInput) (Canonical, error)
}

// Invocation failure stages recorded on InvocationError.
const (
	StageInvoke  = "invoke"
	StageTimeout = "timeout"
	StageExtract = "extract"
)

// InvocationError reports a failed variant invocation. The experiment runner
// records it per example; it never crosses the runner boundary.
type InvocationError struct {
	Variant string
	Stage   string
	Err     error
}

// Error renders the variant, stage, and cause.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("variant %s: %s: %v", e.Variant, e.Stage, e.Err)
}

// Unwrap exposes the cause for errors.Is/As.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// invokeVariant calls the agent once and wraps failures with their stage.
func invokeVariant(ctx context.Context, variant string, caller agent.Caller, req agent.Request) (agent.Response, error) {
	response, err := caller.Invoke(ctx, req)
	if err != nil {
		stage := StageInvoke
		if errors.Is(err, context.DeadlineExceeded) {
			stage = StageTimeout
		}
		return agent.Response{}, &InvocationError{Variant: variant, Stage: stage, Err: err}
	}
	if response.ClassificationDecision == "" && len(response.Messages) == 0 {
		return agent.Response{}, &InvocationError{
			Variant: variant,
			Stage:   StageExtract,
			Err:     errors.New("response carries no classification and no messages"),
		}
	}
	return response, nil
}
