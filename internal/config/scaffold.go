package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
project:
  output_dir: ".inboxeval/results"
  datasets_dir: "datasets"
  suite: "local"

variants:
  - id: workflow
    type: workflow
    endpoint: "http://localhost:8701/invoke"
  - id: tool-agent
    type: tool_agent
    endpoint: "http://localhost:8702/invoke"

experiments:
  - id: triage_baseline
    dataset: "triage"
    evaluators:
      - classification_match
      - tool_call_coverage
    concurrency: 2
    timeout_seconds: 60
`

const defaultDataset = `{
  "version": 1,
  "name": "triage",
  "description": "Starter triage examples",
  "examples": [
    {
      "id": "meeting-request",
      "inputs": {
        "email_input": {
          "sender": "alice@example.com",
          "recipient": "you@example.com",
          "subject": "Quarterly planning",
          "thread_body": "Can you find a slot for quarterly planning next week?"
        }
      },
      "outputs": {
        "classification": "respond",
        "tool_calls": ["check_calendar", "schedule_meeting"]
      }
    },
    {
      "id": "newsletter",
      "inputs": {
        "email_input": {
          "sender": "digest@news.example.com",
          "recipient": "you@example.com",
          "subject": "Weekly digest",
          "thread_body": "Here is what happened this week."
        }
      },
      "outputs": {
        "classification": "ignore"
      }
    }
  ]
}
`

const defaultSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["decision"],
  "properties": {
    "decision": { "type": "string", "enum": ["respond", "notify", "ignore"] },
    "reply": { "type": "string" }
  }
}
`

// Scaffold writes the starter config, dataset, and response schema for a new
// project. Existing files are never overwritten.
func Scaffold(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	root := RepoRootFromConfigPath(configPath)
	datasetsDir := filepath.Join(root, DefaultDatasetsDir)
	schemasDir := filepath.Join(root, "schemas")
	for _, dir := range []string{filepath.Dir(configPath), datasetsDir, schemasDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	files := []struct {
		path    string
		content string
	}{
		{configPath, defaultConfig},
		{filepath.Join(datasetsDir, "triage.json"), defaultDataset},
		{filepath.Join(schemasDir, "response.schema.json"), defaultSchema},
	}
	for _, file := range files[1:] {
		if info, err := os.Stat(file.path); err == nil {
			if info.IsDir() {
				return fmt.Errorf("path %q is a directory", file.path)
			}
			return fmt.Errorf("file already exists at %q", file.path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", file.path, err)
		}
	}
	for _, file := range files {
		if err := os.WriteFile(file.path, []byte(file.content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file.path, err)
		}
	}
	return nil
}
