package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"inboxeval/internal/config"
	"inboxeval/internal/dataset"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		specPath := flags.String("spec", "", "Path to config file (default: search for .inboxeval/config.yml)")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		resolvedSpec, err := resolveSpecPath(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}

		cfg, err := config.Load(resolvedSpec)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}

		root := config.RepoRootFromConfigPath(resolvedSpec)
		store := dataset.NewDirStore(config.ResolveDatasetsDir(root, cfg))
		names := map[string]bool{}
		for _, experiment := range cfg.Experiments {
			names[experiment.Dataset] = true
		}
		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)
		for _, name := range sorted {
			if _, err := store.Examples(context.Background(), name); err != nil {
				fmt.Fprintf(stderr, "Validation failed:\ndataset %s: %v\n", name, err)
				return ExitError
			}
		}

		fmt.Fprintf(stdout, "Config OK (%d variants, %d experiments, %d datasets)\n",
			len(cfg.Variants), len(cfg.Experiments), len(sorted))
		return ExitOK
	}
}
