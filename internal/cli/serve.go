package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"inboxeval/internal/reportserver"
)

// serveReport is a test seam for running the report server.
var serveReport = reportserver.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		addr := fs.String("addr", "127.0.0.1:5000", "Address to listen on")
		inputDir := fs.String("input", "", "Directory containing runs")
		specPath := fs.String("spec", "", "Path to config file (default: search for .inboxeval/config.yml)")
		dbPath := fs.String("db", "", "DuckDB file to expose for download")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}
		if *addr == "" {
			fmt.Fprintln(stderr, "Missing --addr")
			return ExitUsage
		}

		outputDir, _, err := resolveInputDir(*inputDir, *specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve input: %v\n", err)
			return ExitError
		}
		if *dbPath != "" {
			if _, err := os.Stat(*dbPath); err != nil {
				fmt.Fprintf(stderr, "Database not found: %v\n", err)
				return ExitError
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		cfg := reportserver.Config{
			Addr:      *addr,
			OutputDir: outputDir,
			DBPath:    *dbPath,
		}
		fmt.Fprintf(stdout, "Serving reports at http://%s\n", cfg.Addr)
		if err := serveReport(ctx, cfg); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
