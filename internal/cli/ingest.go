package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"inboxeval/internal/report"
	"inboxeval/internal/resultstore"
	"inboxeval/internal/runner"
)

// runIngest builds the handler for the ingest command.
func runIngest(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		dbPath := fs.String("db", "", "DuckDB database to write")
		inputDir := fs.String("input", "", "Directory containing runs")
		specPath := fs.String("spec", "", "Path to config file (default: search for .inboxeval/config.yml)")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if *dbPath == "" {
			fmt.Fprintln(stderr, "Missing --db")
			return ExitUsage
		}

		var sets []runner.ResultSet
		if fs.NArg() > 0 {
			for _, path := range fs.Args() {
				set, err := report.LoadResultSet(path)
				if err != nil {
					fmt.Fprintf(stderr, "Failed to load %s: %v\n", path, err)
					return ExitError
				}
				sets = append(sets, set)
			}
		} else {
			outputDir, _, err := resolveInputDir(*inputDir, *specPath)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to resolve input: %v\n", err)
				return ExitError
			}
			set, _, err := latestRun(outputDir)
			if err != nil {
				fmt.Fprintf(stderr, "No runs found: %v\n", err)
				return ExitError
			}
			sets = append(sets, set)
		}

		db, err := resultstore.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open database: %v\n", err)
			return ExitError
		}
		defer func() { _ = db.Close() }()

		ctx := context.Background()
		for _, set := range sets {
			if err := resultstore.IngestResultSet(ctx, db, set); err != nil {
				fmt.Fprintf(stderr, "Failed to ingest run %s: %v\n", set.RunID, err)
				return ExitError
			}
			count, err := resultstore.RecordCount(ctx, db, set.RunID)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to count records for %s: %v\n", set.RunID, err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Ingested run %s (%d score records)\n", set.RunID, count)
		}
		fmt.Fprintf(stdout, "Database: %s\n", *dbPath)
		return ExitOK
	}
}
