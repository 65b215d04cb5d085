// Package cli implements the inboxeval command line interface: a small
// command table over stdlib flag, with package-var seams for tests.
package cli

import (
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Command is one CLI subcommand.
type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// Run dispatches the top-level command line.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  inboxeval <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"inboxeval <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .inboxeval/config.yml, a starter dataset, and a response schema", []string{
		"inboxeval init [--spec <path>]",
	}, runInit),
	command("validate", "Validate the project config and its datasets", []string{
		"inboxeval validate [--spec <path>]",
	}, runValidate),
	command("run", "Execute configured experiments against agent variants", []string{
		"inboxeval run [--spec <path>] [--experiment <id>]... [--variant <id>]...",
	}, runRun),
	command("score", "Score a captured canonical output against a dataset example", []string{
		"inboxeval score <canonical.json> --dataset <name> --example <id>",
	}, runScore),
	command("compare", "Compare variant scores between two runs", []string{
		"inboxeval compare --base <commit|run-id|ref> [--head <commit|run-id|ref>]",
	}, runCompare),
	command("report", "Print or write the report for a run", []string{
		"inboxeval report [--run <run-id|commit>] [--html <path>]",
	}, runReport),
	command("serve", "Serve HTML reports over HTTP", []string{
		"inboxeval serve [--addr <host:port>] [--db <results.duckdb>]",
	}, runServe),
	command("ingest", "Load results.json artifacts into a DuckDB database", []string{
		"inboxeval ingest --db <results.duckdb> [results.json]...",
	}, runIngest),
	command("version", "Print the inboxeval version", []string{
		"inboxeval version",
	}, runVersion),
}
