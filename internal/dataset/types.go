package dataset

import "inboxeval/internal/mail"

// Spec defines the dataset file schema loaded from JSON or YAML.
type Spec struct {
	Version     int       `json:"version" yaml:"version"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Examples    []Example `json:"examples" yaml:"examples"`
}

// Example is one labeled email with its reference output.
type Example struct {
	ID      string      `json:"id" yaml:"id"`
	Inputs  Inputs      `json:"inputs" yaml:"inputs"`
	Outputs Expectation `json:"outputs" yaml:"outputs"`
}

// Inputs wraps the example's email input mapping.
type Inputs struct {
	Email mail.EmailInput `json:"email_input" yaml:"email_input"`
}

// Expectation is the reference output an agent's canonical output is scored against.
// At least one of Classification or ToolCalls must be present.
type Expectation struct {
	Classification string   `json:"classification,omitempty" yaml:"classification,omitempty"`
	ToolCalls      []string `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	MustContain    []string `json:"must_contain,omitempty" yaml:"must_contain,omitempty"`
}
