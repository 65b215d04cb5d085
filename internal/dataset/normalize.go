package dataset

import "strings"

// Classification labels accepted in reference outputs.
const (
	ClassRespond = "respond"
	ClassNotify  = "notify"
	ClassIgnore  = "ignore"
)

// NormalizeToolCall trims whitespace and lowercases a tool identifier for
// comparison stability.
func NormalizeToolCall(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// KnownClassification reports whether a label belongs to the closed triage set.
func KnownClassification(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ClassRespond, ClassNotify, ClassIgnore:
		return true
	default:
		return false
	}
}
