// Package agent defines the boundary to the email agent variants under
// evaluation. Variants are external black boxes reached through a single
// invocation entry point; this package only carries the wire shapes and a
// client, never agent logic.
package agent

import "context"

// Caller invokes one agent variant once per request.
type Caller interface {
	// Invoke sends one invocation and returns the agent's reply.
	Invoke(ctx context.Context, req Request) (Response, error)
}

// Request is the invocation payload. Exactly one of Messages or Email is set:
// message-list agents receive Messages, structured-workflow agents receive the
// email field mapping.
type Request struct {
	Messages []Message         `json:"messages,omitempty"`
	Email    map[string]string `json:"email,omitempty"`
}

// Response is the reply shape every variant is expected to produce: a
// classification decision when the variant triages, and the message transcript
// tool invocations are extracted from.
type Response struct {
	ClassificationDecision string    `json:"classification_decision,omitempty"`
	Messages               []Message `json:"messages,omitempty"`
}

// Message is one transcript entry.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall identifies one side-effecting action the agent invoked.
type ToolCall struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Args string `json:"args,omitempty"`
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, req Request) (Response, error)

// Invoke calls the wrapped function.
func (f CallerFunc) Invoke(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
