package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoadSpecYAML verifies YAML datasets load and normalize properly.
func TestLoadSpecYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triage.yml")
	payload := `version: 1
name: triage
examples:
  - id: ex1
    inputs:
      email_input:
        sender: alice@example.com
        recipient: team@example.com
        subject: "Meeting?"
        thread_body: "Can we meet Tuesday at 3pm?"
    outputs:
      classification: Respond
      tool_calls: [" Check_Calendar ", "send_email"]
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if spec.Name != "triage" || len(spec.Examples) != 1 {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	example := spec.Examples[0]
	if example.ID != "ex1" {
		t.Fatalf("expected id ex1, got %q", example.ID)
	}
	if example.Outputs.Classification != "Respond" {
		t.Fatalf("expected classification preserved, got %q", example.Outputs.Classification)
	}
	if len(example.Outputs.ToolCalls) != 2 || example.Outputs.ToolCalls[0] != "check_calendar" {
		t.Fatalf("expected normalized tool calls, got %+v", example.Outputs.ToolCalls)
	}
}

// TestLoadSpecJSON verifies JSON datasets are parsed strictly.
func TestLoadSpecJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triage.json")
	payload := `{
  "version": 1,
  "name": "triage",
  "examples": [
    {
      "id": "ex2",
      "inputs": {"email_input": {"sender": "a@x", "recipient": "b@y", "subject": "s", "thread_body": "body"}},
      "outputs": {"tool_calls": ["schedule_meeting"]}
    }
  ]
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if len(spec.Examples) != 1 || spec.Examples[0].ID != "ex2" {
		t.Fatalf("unexpected spec: %+v", spec.Examples)
	}
}

// TestLoadSpecRejectsUnknownFields verifies strict decoding.
func TestLoadSpecRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triage.json")
	payload := `{"version": 1, "name": "triage", "labels": ["x"], "examples": []}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	if _, err := LoadSpec(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

// TestLoadSpecRejectsMultipleDocuments verifies multi-document files fail.
func TestLoadSpecRejectsMultipleDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triage.yml")
	payload := `version: 1
name: one
examples:
  - id: a
    inputs:
      email_input:
        thread_body: hello
    outputs:
      classification: ignore
---
version: 1
name: two
examples: []
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	_, err := LoadSpec(path)
	if err == nil || !strings.Contains(err.Error(), "multiple documents") {
		t.Fatalf("expected multiple document error, got %v", err)
	}
}

// TestLoadSpecValidationErrors verifies invalid datasets return validation errors.
func TestLoadSpecValidationErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triage.yml")
	payload := `version: 1
name: triage
examples:
  - id: dup
    inputs:
      email_input:
        thread_body: hello
    outputs:
      classification: escalate
  - id: dup
    inputs:
      email_input:
        thread_body: ""
    outputs: {}
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	_, err := LoadSpec(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := make([]string, 0, len(validationErr.Issues))
	for _, issue := range validationErr.Issues {
		fields = append(fields, issue.Field)
	}
	joined := strings.Join(fields, " ")
	for _, want := range []string{
		"examples[0].outputs.classification",
		"examples[1].id",
		"examples[1].inputs.email_input.thread_body",
		"examples[1].outputs",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing issue for %s in %v", want, fields)
		}
	}
}
