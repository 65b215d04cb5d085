package mail

import "strings"

// EmailInput is one inbound email thread as presented to an agent variant.
type EmailInput struct {
	Sender     string `json:"sender" yaml:"sender"`
	Recipient  string `json:"recipient" yaml:"recipient"`
	Subject    string `json:"subject" yaml:"subject"`
	ThreadBody string `json:"thread_body" yaml:"thread_body"`
}

// Fields returns the email as a flat field mapping for structured agent requests.
func (e EmailInput) Fields() map[string]string {
	return map[string]string{
		"sender":      e.Sender,
		"recipient":   e.Recipient,
		"subject":     e.Subject,
		"thread_body": e.ThreadBody,
	}
}

// Render formats the email as a single plain-text message for message-list agents.
func (e EmailInput) Render() string {
	var builder strings.Builder
	builder.WriteString("From: ")
	builder.WriteString(e.Sender)
	builder.WriteString("\nTo: ")
	builder.WriteString(e.Recipient)
	builder.WriteString("\nSubject: ")
	builder.WriteString(e.Subject)
	builder.WriteString("\n\n")
	builder.WriteString(e.ThreadBody)
	return builder.String()
}

// Summary returns a short single-line description for display.
func (e EmailInput) Summary() string {
	subject := strings.TrimSpace(e.Subject)
	if subject == "" {
		subject = "(no subject)"
	}
	sender := strings.TrimSpace(e.Sender)
	if sender == "" {
		return subject
	}
	return sender + ": " + subject
}
