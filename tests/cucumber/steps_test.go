package cucumber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"inboxeval/internal/agent"
	"inboxeval/internal/cli"
)

// featureState holds scenario state for the CLI acceptance suite.
type featureState struct {
	projectDir  string
	configPath  string
	previousWD  string
	agentServer *httptest.Server
	stdout      bytes.Buffer
	stderr      bytes.Buffer
	exitCode    int
	initialized bool
}

// InitializeScenario wires the acceptance steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a scripted agent endpoint is available$`, state.aScriptedAgentEndpoint)
	ctx.Step(`^a project with a valid inboxeval configuration$`, state.aProjectWithValidConfig)
	ctx.Step(`^the config is invalid$`, state.theConfigIsInvalid)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
	ctx.Step(`^the output contains "([^"]+)"$`, state.theOutputContains)
	ctx.Step(`^the exit code is zero$`, state.theExitCodeIsZero)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the error message points to the invalid field$`, state.theErrorMessagePointsToInvalidField)
	ctx.Step(`^the run artifacts exist$`, state.theRunArtifactsExist)
}

func (s *featureState) reset() {
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = 0
	s.initialized = false
}

func (s *featureState) cleanup() {
	if s.previousWD != "" {
		_ = os.Chdir(s.previousWD)
		s.previousWD = ""
	}
	if s.agentServer != nil {
		s.agentServer.Close()
		s.agentServer = nil
	}
	if s.projectDir != "" {
		_ = os.RemoveAll(s.projectDir)
		s.projectDir = ""
	}
}

// aScriptedAgentEndpoint starts an HTTP agent that answers the fixture
// dataset correctly: digests get ignore, everything else gets respond
// with a calendar tool call.
func (s *featureState) aScriptedAgentEndpoint() error {
	s.agentServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req agent.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		text := req.Email["subject"]
		if text == "" {
			for _, message := range req.Messages {
				text += message.Content
			}
		}
		resp := agent.Response{
			ClassificationDecision: "respond",
			Messages: []agent.Message{{
				Role:      "assistant",
				Content:   "Scheduling it now.",
				ToolCalls: []agent.ToolCall{{Name: "check_calendar"}},
			}},
		}
		if strings.Contains(text, "digest") || strings.Contains(text, "Weekly") {
			resp = agent.Response{ClassificationDecision: "ignore"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	return nil
}

// aProjectWithValidConfig lays out a temp project (config plus dataset)
// and moves the working directory into it so config discovery applies.
func (s *featureState) aProjectWithValidConfig() error {
	if s.initialized {
		return nil
	}
	dir, err := os.MkdirTemp("", "inboxeval-feature-*")
	if err != nil {
		return fmt.Errorf("create temp project: %w", err)
	}
	s.projectDir = dir
	s.configPath = filepath.Join(dir, ".inboxeval", "config.yml")
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	endpoint := "http://127.0.0.1:9/agent"
	if s.agentServer != nil {
		endpoint = s.agentServer.URL
	}
	if err := s.writeConfig(validConfigYAML(endpoint)); err != nil {
		return err
	}

	datasetsDir := filepath.Join(dir, "datasets")
	if err := os.MkdirAll(datasetsDir, 0o755); err != nil {
		return fmt.Errorf("create datasets dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(datasetsDir, "triage.json"), []byte(triageDatasetJSON()), 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working dir: %w", err)
	}
	s.previousWD = wd
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("chdir: %w", err)
	}
	s.initialized = true
	return nil
}

// theConfigIsInvalid replaces the variant type with an unknown value.
func (s *featureState) theConfigIsInvalid() error {
	if err := s.aProjectWithValidConfig(); err != nil {
		return err
	}
	return s.writeConfig(invalidConfigYAML())
}

// iRunCommand executes a CLI command for the scenario.
func (s *featureState) iRunCommand(command string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("command is empty")
	}
	if args[0] == "inboxeval" {
		args = args[1:]
	}
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = cli.Run(args, &s.stdout, &s.stderr)
	return nil
}

// theOutputListsCommands asserts the output contains expected command names.
func (s *featureState) theOutputListsCommands(table *godog.Table) error {
	output := s.stdout.String()
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			command := strings.TrimSpace(cell.Value)
			if command == "" {
				continue
			}
			if !strings.Contains(output, command) {
				return fmt.Errorf("expected command %q in output", command)
			}
		}
	}
	return nil
}

func (s *featureState) theOutputContains(text string) error {
	if !strings.Contains(s.stdout.String(), text) {
		return fmt.Errorf("expected %q in output, got %q", text, s.stdout.String())
	}
	return nil
}

func (s *featureState) theExitCodeIsZero() error {
	if s.exitCode != 0 {
		return fmt.Errorf("expected exit code 0, got %d (stderr: %s)", s.exitCode, s.stderr.String())
	}
	return nil
}

func (s *featureState) theExitCodeIsNonZero() error {
	if s.exitCode == 0 {
		return fmt.Errorf("expected non-zero exit code")
	}
	return nil
}

// theErrorMessagePointsToInvalidField checks the error names the field path.
func (s *featureState) theErrorMessagePointsToInvalidField() error {
	errOutput := s.stderr.String()
	if !strings.Contains(errOutput, "variants[0].type") {
		return fmt.Errorf("expected error to name variants[0].type, got %q", errOutput)
	}
	return nil
}

// theRunArtifactsExist resolves the Results and Report paths printed by the
// run command and checks both files were written.
func (s *featureState) theRunArtifactsExist() error {
	for _, prefix := range []string{"Results: ", "Report: "} {
		path := ""
		for _, line := range strings.Split(s.stdout.String(), "\n") {
			if rest, ok := strings.CutPrefix(line, prefix); ok {
				path = strings.TrimSpace(rest)
				break
			}
		}
		if path == "" {
			return fmt.Errorf("output does not name a %q path", strings.TrimSuffix(prefix, ": "))
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("artifact %s: %w", path, err)
		}
	}
	return nil
}

func (s *featureState) writeConfig(contents string) error {
	if s.configPath == "" {
		return fmt.Errorf("config path is not set")
	}
	if err := os.WriteFile(s.configPath, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// validConfigYAML returns a minimal one-experiment config pointed at the
// given agent endpoint.
func validConfigYAML(endpoint string) string {
	return fmt.Sprintf(`version: 1
project:
  output_dir: ".inboxeval/results"
  datasets_dir: "datasets"
  suite: "smoke"
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
}

// invalidConfigYAML carries an unknown variant type.
func invalidConfigYAML() string {
	return `version: 1
project:
  output_dir: ".inboxeval/results"
variants:
  - id: workflow-v1
    type: mystery
    endpoint: "http://127.0.0.1:9/agent"
experiments:
  - id: triage
    dataset: "triage"
    variants: [workflow-v1]
    evaluators: [classification_match]
`
}

// triageDatasetJSON returns the two-example fixture dataset.
func triageDatasetJSON() string {
	return `{
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
}
