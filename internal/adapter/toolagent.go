package adapter

import (
	"context"

	"inboxeval/internal/agent"
	"inboxeval/internal/mail"
)

// ToolAgentAdapter wraps a single tool-calling agent variant. The agent takes
// the email rendered as one plain-text message; its decision, when present,
// and tool calls are extracted from the returned transcript.
type ToolAgentAdapter struct {
	name   string
	caller agent.Caller
}

// NewToolAgentAdapter wraps a tool-calling variant under the given name.
func NewToolAgentAdapter(name string, caller agent.Caller) *ToolAgentAdapter {
	return &ToolAgentAdapter{name: name, caller: caller}
}

// Name identifies the variant.
func (a *ToolAgentAdapter) Name() string {
	return a.name
}

// Adapt invokes the agent once with a rendered message list and normalizes
// its reply. A decision-less but message-bearing reply is valid for this
// family; only a reply with neither fails extraction.
func (a *ToolAgentAdapter) Adapt(ctx context.Context, email mail.EmailInput) (Canonical, error) {
	request := agent.Request{
		Messages: []agent.Message{{Role: "user", Content: email.Render()}},
	}
	response, err := invokeVariant(ctx, a.name, a.caller, request)
	if err != nil {
		return Canonical{}, err
	}
	return Canonical{
		Decision:   normalizeDecision(response.ClassificationDecision),
		ToolCalls:  extractToolCalls(response.Messages),
		Transcript: renderTranscript(response.Messages),
	}, nil
}
