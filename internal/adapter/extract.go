package adapter

import (
	"strings"

	"inboxeval/internal/agent"
)

// extractToolCalls collects the invoked tool identifiers from a transcript in
// invocation order, lower-cased. Empty names are skipped.
func extractToolCalls(messages []agent.Message) []string {
	var calls []string
	for _, message := range messages {
		for _, call := range message.ToolCalls {
			name := strings.ToLower(strings.TrimSpace(call.Name))
			if name == "" {
				continue
			}
			calls = append(calls, name)
		}
	}
	return calls
}

// normalizeDecision lower-cases the agent's decision. Values outside the
// canonical triage set are preserved so diagnostics show what the agent
// actually said; evaluators score them false against the closed set.
func normalizeDecision(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// renderTranscript flattens a transcript into opaque text for diagnostics.
func renderTranscript(messages []agent.Message) string {
	var builder strings.Builder
	for i, message := range messages {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(message.Role)
		builder.WriteString(": ")
		builder.WriteString(message.Content)
		for _, call := range message.ToolCalls {
			builder.WriteString("\n")
			builder.WriteString(message.Role)
			builder.WriteString(" -> tool ")
			builder.WriteString(strings.ToLower(call.Name))
			if call.Args != "" {
				builder.WriteString(" ")
				builder.WriteString(call.Args)
			}
		}
	}
	return builder.String()
}
