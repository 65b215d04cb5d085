package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"inboxeval/internal/evaluator"
	"inboxeval/internal/runner"
)

// runCLI invokes the CLI and returns stdout, stderr, and exit code.
func runCLI(t *testing.T, args []string) (string, string, int) {
	t.Helper()
	var out, err bytes.Buffer
	exitCode := Run(args, &out, &err)
	return out.String(), err.String(), exitCode
}

const projectDataset = `{
  "version": 1,
  "name": "triage",
  "examples": [
    {
      "id": "meeting-request",
      "inputs": {
        "email_input": {
          "sender": "alice@example.com",
          "recipient": "you@example.com",
          "subject": "Quarterly planning",
          "thread_body": "Can you find a slot next week?"
        }
      },
      "outputs": {
        "classification": "respond",
        "tool_calls": ["check_calendar"]
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

// writeProject lays out a minimal project (config + dataset) rooted in a
// temp dir, with every variant pointed at the given endpoint. Returns the
// project root and the config path.
func writeProject(t *testing.T, endpoint string) (string, string) {
	t.Helper()
	root := t.TempDir()
	configDir := filepath.Join(root, ".inboxeval")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	configYAML := fmt.Sprintf(`version: 1
project:
  output_dir: ".inboxeval/results"
  datasets_dir: "datasets"
  suite: "ci"
variants:
  - id: workflow-v1
    type: workflow
    endpoint: %q
  - id: agent-v2
    type: tool_agent
    endpoint: %q
experiments:
  - id: triage
    dataset: "triage"
    variants: [workflow-v1, agent-v2]
    evaluators: [classification_match, tool_call_coverage]
    concurrency: 2
    timeout_seconds: 5
`, endpoint, endpoint)
	configPath := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	datasetsDir := filepath.Join(root, "datasets")
	if err := os.MkdirAll(datasetsDir, 0o755); err != nil {
		t.Fatalf("create datasets dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(datasetsDir, "triage.json"), []byte(projectDataset), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return root, configPath
}

// storedRun builds a one-experiment result set for artifact fixtures. The
// score controls whether the single evaluator record passes.
func storedRun(runID, commit, variant string, score float64) runner.ResultSet {
	set := runner.ResultSet{
		RunID:  runID,
		Suite:  "ci",
		Commit: commit,
		Experiments: []runner.Result{{
			Experiment: "triage/" + variant,
			Variant:    variant,
			Outcomes: []runner.ExampleOutcome{{
				ExampleID: "meeting-request",
				Subject:   "alice@example.com: Quarterly planning",
				Scores: []evaluator.Score{
					{Evaluator: "classification_match", Value: score, Pass: score == 1},
				},
			}},
		}},
	}
	set.Summary = runner.Summarize(set.Experiments)
	return set
}

// writeStoredRun persists a fixture run under the given output dir.
func writeStoredRun(t *testing.T, outputDir string, set runner.ResultSet) {
	t.Helper()
	if _, err := runner.WriteRunOutputs(set, outputDir); err != nil {
		t.Fatalf("write run outputs: %v", err)
	}
}
