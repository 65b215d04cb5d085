package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"inboxeval/internal/adapter"
	"inboxeval/internal/config"
	"inboxeval/internal/dataset"
	"inboxeval/internal/runner"
)

// runScore builds the handler for the score command. Scoring is offline: the
// captured canonical output is evaluated without invoking any agent.
func runScore(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		specPath := fs.String("spec", "", "Path to config file (default: search for .inboxeval/config.yml)")
		datasetName := fs.String("dataset", "", "Dataset containing the reference example")
		exampleID := fs.String("example", "", "Example id to score against")
		evaluatorNames := fs.String("evaluators", "classification_match,tool_call_coverage", "Comma-separated evaluator names")
		schemaFile := fs.String("schema", "", "JSON schema file for transcript_schema")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "Usage: inboxeval score <canonical.json> --dataset <name> --example <id>")
			return ExitUsage
		}
		if *datasetName == "" || *exampleID == "" {
			fmt.Fprintln(stderr, "Missing --dataset or --example")
			return ExitUsage
		}

		resolvedSpec, err := resolveSpecPath(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to locate config: %v\n", err)
			return ExitError
		}
		cfg, err := config.Load(resolvedSpec)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		root := config.RepoRootFromConfigPath(resolvedSpec)

		canonical, err := loadCanonical(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load canonical output: %v\n", err)
			return ExitError
		}

		store := dataset.NewDirStore(config.ResolveDatasetsDir(root, cfg))
		examples, err := store.Examples(context.Background(), *datasetName)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load dataset: %v\n", err)
			return ExitError
		}
		var example *dataset.Example
		for i := range examples {
			if examples[i].ID == *exampleID {
				example = &examples[i]
				break
			}
		}
		if example == nil {
			fmt.Fprintf(stderr, "Example %q not found in dataset %q\n", *exampleID, *datasetName)
			return ExitError
		}

		schema := strings.TrimSpace(*schemaFile)
		if schema != "" && !filepath.IsAbs(schema) {
			schema = filepath.Join(root, schema)
		}
		evaluators, err := runner.Evaluators(splitNames(*evaluatorNames), schema)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve evaluators: %v\n", err)
			return ExitError
		}

		allPassed := true
		for _, eval := range evaluators {
			score := eval.Evaluate(canonical, example.Outputs)
			status := "pass"
			if !score.Pass {
				status = "fail"
				allPassed = false
			}
			fmt.Fprintf(stdout, "%-22s %.3f %s\n", score.Evaluator, score.Value, status)
		}
		if !allPassed {
			return ExitError
		}
		return ExitOK
	}
}

// loadCanonical reads a captured canonical output file.
func loadCanonical(path string) (adapter.Canonical, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return adapter.Canonical{}, err
	}
	var canonical adapter.Canonical
	if err := json.Unmarshal(data, &canonical); err != nil {
		return adapter.Canonical{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return canonical, nil
}

// splitNames splits a comma-separated list, dropping empty entries.
func splitNames(value string) []string {
	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
