package cli

import (
	"fmt"
	"io"
)

// Version is the CLI version string, overridable at link time.
var Version = "0.1.0-dev"

// runVersion builds the handler for the version command.
func runVersion(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fmt.Fprintf(stdout, "inboxeval %s\n", Version)
		return ExitOK
	}
}
