package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"inboxeval/internal/aggregate"
	"inboxeval/internal/report"
	"inboxeval/internal/runner"
)

// latestRun is a test seam for locating the newest run.
var latestRun = report.LatestRun

// runReport builds the handler for the report command.
func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		inputDir := fs.String("input", "", "Directory containing runs")
		specPath := fs.String("spec", "", "Path to config file (default: search for .inboxeval/config.yml)")
		runRef := fs.String("run", "", "Run id, commit, or git ref (default: latest run)")
		htmlPath := fs.String("html", "", "Write the HTML report to this path")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		outputDir, repoRoot, err := resolveInputDir(*inputDir, *specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve input: %v\n", err)
			return ExitError
		}

		ctx := context.Background()
		var set runner.ResultSet
		if *runRef == "" {
			set, _, err = latestRun(outputDir)
		} else {
			set, _, err = resolveRun(ctx, outputDir, *runRef, refResolver(ctx, repoRoot))
		}
		if err != nil {
			fmt.Fprintf(stderr, "Run not found: %v\n", err)
			return ExitError
		}

		partial := ""
		if set.Partial {
			partial = " (partial)"
		}
		fmt.Fprintf(stdout, "Run %s commit %s suite %s%s\n", set.RunID, set.Commit, set.Suite, partial)
		fmt.Fprintf(stdout, "Examples %d passed %d failed %d mean %.3f\n",
			set.Summary.ExamplesTotal, set.Summary.ExamplesPassed, set.Summary.ExamplesFailed, set.Summary.MeanScore)
		fmt.Fprint(stdout, aggregate.FormatReport(aggregate.Aggregate(set.Experiments...)))

		if *htmlPath != "" {
			if err := report.WriteHTML(*htmlPath, []runner.ResultSet{set}); err != nil {
				fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Report written to %s\n", *htmlPath)
		}
		return ExitOK
	}
}
