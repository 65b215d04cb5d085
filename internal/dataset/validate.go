package dataset

import (
	"fmt"
	"strings"
)

// Issue captures a validation problem in a dataset file.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("dataset validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// NormalizeSpec trims whitespace, normalizes tool identifiers, and validates
// a dataset spec.
func NormalizeSpec(spec Spec) (Spec, error) {
	collector := &issueCollector{}
	if spec.Version == 0 {
		collector.add("version", "is required")
	} else if spec.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", spec.Version))
	}
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		collector.add("name", "is required")
	}
	if len(spec.Examples) == 0 {
		collector.add("examples", "must include at least one entry")
	}

	seenIDs := map[string]struct{}{}
	for i, example := range spec.Examples {
		prefix := fmt.Sprintf("examples[%d]", i)
		example.ID = strings.TrimSpace(example.ID)
		if example.ID == "" {
			collector.add(prefix+".id", "is required")
		} else if _, exists := seenIDs[example.ID]; exists {
			collector.add(prefix+".id", fmt.Sprintf("duplicate id %q", example.ID))
		} else {
			seenIDs[example.ID] = struct{}{}
		}

		if strings.TrimSpace(example.Inputs.Email.ThreadBody) == "" {
			collector.add(prefix+".inputs.email_input.thread_body", "is required")
		}

		example.Outputs = normalizeExpectation(example.Outputs)
		if example.Outputs.Classification == "" && len(example.Outputs.ToolCalls) == 0 {
			collector.add(prefix+".outputs", "must include classification or tool_calls")
		}
		if example.Outputs.Classification != "" && !KnownClassification(example.Outputs.Classification) {
			collector.add(prefix+".outputs.classification",
				fmt.Sprintf("unknown label %q (expected respond, notify, or ignore)", example.Outputs.Classification))
		}
		for callIndex, call := range example.Outputs.ToolCalls {
			if call == "" {
				collector.add(fmt.Sprintf("%s.outputs.tool_calls[%d]", prefix, callIndex), "is required")
			}
		}
		spec.Examples[i] = example
	}

	if err := collector.result(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func normalizeExpectation(outputs Expectation) Expectation {
	outputs.Classification = strings.TrimSpace(outputs.Classification)
	calls := make([]string, 0, len(outputs.ToolCalls))
	for _, call := range outputs.ToolCalls {
		calls = append(calls, NormalizeToolCall(call))
	}
	if len(calls) > 0 {
		outputs.ToolCalls = calls
	}
	contains := make([]string, 0, len(outputs.MustContain))
	for _, value := range outputs.MustContain {
		contains = append(contains, strings.TrimSpace(value))
	}
	if len(contains) > 0 {
		outputs.MustContain = contains
	}
	return outputs
}
