package evaluator

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"inboxeval/internal/adapter"
	"inboxeval/internal/dataset"
)

// TranscriptSchema validates the final JSON object of a transcript against a
// JSON Schema. The schema is compiled once at construction so Evaluate stays
// pure.
type TranscriptSchema struct {
	schema *jsonschema.Schema
}

// NewTranscriptSchema compiles the schema at the given path.
func NewTranscriptSchema(path string) (*TranscriptSchema, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve schema path: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(abs))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &TranscriptSchema{schema: schema}, nil
}

// Name identifies the evaluator.
func (*TranscriptSchema) Name() string { return "transcript_schema" }

// Evaluate validates the transcript's final JSON object. A transcript with no
// JSON object fails with a diagnostic, never panics.
func (e *TranscriptSchema) Evaluate(output adapter.Canonical, _ dataset.Expectation) Score {
	raw, ok := finalJSONObject(output.Transcript)
	if !ok {
		return failScore(e.Name(), map[string]any{"schema_errors": []string{"transcript carries no JSON object"}})
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return failScore(e.Name(), map[string]any{"schema_errors": []string{"invalid JSON object: " + err.Error()}})
	}
	if err := e.schema.Validate(parsed); err != nil {
		return failScore(e.Name(), map[string]any{"schema_errors": []string{err.Error()}})
	}
	return passScore(e.Name(), map[string]any{"schema_errors": []string{}})
}

// finalJSONObject returns the last balanced top-level object in the text.
// Braces inside JSON strings are skipped.
func finalJSONObject(text string) (string, bool) {
	var last string
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					last = candidate
				}
				start = -1
			}
		}
	}
	if last == "" {
		return "", false
	}
	return last, true
}
