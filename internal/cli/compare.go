package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"inboxeval/internal/aggregate"
	"inboxeval/internal/config"
	"inboxeval/internal/report"
	"inboxeval/internal/vcs"
)

// resolveRun is a test seam for locating runs.
var resolveRun = report.ResolveRun

// runCompare builds the handler for the compare command.
func runCompare(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		inputDir := fs.String("input", "", "Directory containing runs")
		specPath := fs.String("spec", "", "Path to config file (default: search for .inboxeval/config.yml)")
		baseRef := fs.String("base", "", "Base commit/run/ref")
		headRef := fs.String("head", "", "Head commit/run/ref")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		outputDir, repoRoot, err := resolveInputDir(*inputDir, *specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve input: %v\n", err)
			return ExitError
		}

		if *baseRef == "" {
			fmt.Fprintln(stderr, "Missing --base")
			return ExitUsage
		}
		if *headRef == "" {
			*headRef = "HEAD"
		}

		ctx := context.Background()
		resolver := refResolver(ctx, repoRoot)

		baseSet, _, err := resolveRun(ctx, outputDir, *baseRef, resolver)
		if err != nil {
			fmt.Fprintf(stderr, "Base run not found: %v\n", err)
			return ExitError
		}
		headSet, _, err := resolveRun(ctx, outputDir, *headRef, resolver)
		if err != nil {
			fmt.Fprintf(stderr, "Head run not found: %v\n", err)
			return ExitError
		}

		baseReport := aggregate.Aggregate(baseSet.Experiments...)
		headReport := aggregate.Aggregate(headSet.Experiments...)
		deltas := aggregate.Compare(baseReport, headReport)

		fmt.Fprintf(stdout, "Base %s run %s mean %.3f failures %d\n",
			baseSet.Commit, baseSet.RunID, baseSet.Summary.MeanScore, baseSet.Summary.FailureCount)
		fmt.Fprintf(stdout, "Head %s run %s mean %.3f failures %d\n",
			headSet.Commit, headSet.RunID, headSet.Summary.MeanScore, headSet.Summary.FailureCount)
		fmt.Fprint(stdout, aggregate.FormatComparison(deltas))
		return ExitOK
	}
}

// refResolver returns a git ref resolver, or nil outside a repository.
func refResolver(ctx context.Context, repoRoot string) report.RefResolver {
	if repoRoot == "" {
		return nil
	}
	repo, err := vcs.Discover(ctx, repoRoot)
	if err != nil {
		return nil
	}
	return repo.ResolveRef
}

// resolveInputDir determines the output directory and project root.
func resolveInputDir(inputDir, specPath string) (string, string, error) {
	if inputDir != "" {
		abs, err := filepath.Abs(inputDir)
		if err != nil {
			return "", "", err
		}
		return abs, "", nil
	}
	resolvedSpec, err := resolveSpecPath(specPath)
	if err != nil {
		return "", "", err
	}
	cfg, err := config.Load(resolvedSpec)
	if err != nil {
		return "", "", err
	}
	root := config.RepoRootFromConfigPath(resolvedSpec)
	return config.ResolveOutputDir(root, cfg), root, nil
}
