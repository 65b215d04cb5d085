package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteRunOutputs writes results.json and prepares the run directories. The
// HTML report is rendered separately by the report package into ReportPath.
func WriteRunOutputs(set ResultSet, outputDir string) (OutputPaths, error) {
	if outputDir == "" {
		return OutputPaths{}, fmt.Errorf("output directory is required")
	}
	commit := set.Commit
	if commit == "" {
		commit = "no-commit"
	}
	paths, err := NewOutputPaths(outputDir, commit, set.RunID)
	if err != nil {
		return OutputPaths{}, err
	}
	if err := os.MkdirAll(paths.RunDir(), 0o755); err != nil {
		return OutputPaths{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(paths.ResultsPath(), set); err != nil {
		return OutputPaths{}, err
	}
	if err := os.MkdirAll(paths.LogsDir(), 0o755); err != nil {
		return OutputPaths{}, fmt.Errorf("create logs dir: %w", err)
	}
	return paths, nil
}

// writeJSON writes a ResultSet payload as pretty JSON.
func writeJSON(path string, set ResultSet) error {
	payload, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
