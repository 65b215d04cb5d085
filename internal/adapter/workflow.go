package adapter

import (
	"context"
	"errors"

	"inboxeval/internal/agent"
	"inboxeval/internal/mail"
)

// WorkflowAdapter wraps a triage-then-respond workflow variant. The agent
// takes the email as a structured field mapping and always reports an
// explicit classification decision.
type WorkflowAdapter struct {
	name   string
	caller agent.Caller
}

// NewWorkflowAdapter wraps a workflow variant under the given name.
func NewWorkflowAdapter(name string, caller agent.Caller) *WorkflowAdapter {
	return &WorkflowAdapter{name: name, caller: caller}
}

// Name identifies the variant.
func (a *WorkflowAdapter) Name() string {
	return a.name
}

// Adapt invokes the workflow once with the email field mapping and
// normalizes its reply. A reply without a classification decision is an
// extraction failure for this family.
func (a *WorkflowAdapter) Adapt(ctx context.Context, email mail.EmailInput) (Canonical, error) {
	response, err := invokeVariant(ctx, a.name, a.caller, agent.Request{Email: email.Fields()})
	if err != nil {
		return Canonical{}, err
	}
	decision := normalizeDecision(response.ClassificationDecision)
	if decision == "" {
		return Canonical{}, &InvocationError{
			Variant: a.name,
			Stage:   StageExtract,
			Err:     errors.New("workflow response carries no classification decision"),
		}
	}
	return Canonical{
		Decision:   decision,
		ToolCalls:  extractToolCalls(response.Messages),
		Transcript: renderTranscript(response.Messages),
	}, nil
}
