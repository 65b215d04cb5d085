package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"inboxeval/internal/aggregate"
	"inboxeval/internal/config"
	"inboxeval/internal/dataset"
	"inboxeval/internal/report"
	"inboxeval/internal/runner"
	"inboxeval/internal/ui/live"
	"inboxeval/internal/vcs"
)

// Test seams for run execution.
var (
	runAll          = runner.RunAll
	writeRunOutputs = runner.WriteRunOutputs
	writeRunReport  = report.WriteHTML
	startLiveUI     = defaultStartLiveUI
)

// liveController is the slice of live.Controller the run command needs.
type liveController interface {
	runner.RunObserver
	Close()
	Wait()
}

func defaultStartLiveUI(stdout io.Writer, opts live.Options) liveController {
	return live.Start(stdout, opts)
}

// stringList collects repeatable flag values.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty value")
	}
	*l = append(*l, value)
	return nil
}

// runRun builds the handler for the run command.
func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		specPath := fs.String("spec", "", "Path to config file (default: search for .inboxeval/config.yml)")
		var experiments stringList
		fs.Var(&experiments, "experiment", "Experiment id to run (repeatable; default: all)")
		var variants stringList
		fs.Var(&variants, "variant", "Variant id to include (repeatable; default: all)")
		outputDir := fs.String("output-dir", "", "Override output directory")
		suite := fs.String("suite", "", "Override suite label")
		uiMode := fs.String("ui", "auto", "UI mode: auto, live, or plain")
		verbose := fs.Bool("verbose", false, "Verbose logging")
		logPath := fs.String("log", "", "Write verbose logs to a file")
		noColor := fs.Bool("no-color", false, "Disable ANSI colors")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
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

		suiteLabel := strings.TrimSpace(*suite)
		if suiteLabel == "" {
			suiteLabel = config.ResolveSuite(cfg)
		}

		decision, err := resolveUIMode(*uiMode, *verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		var logFile io.WriteCloser
		if strings.TrimSpace(*logPath) != "" {
			dir := filepath.Dir(*logPath)
			if dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					fmt.Fprintf(stderr, "Failed to create log directory: %v\n", err)
					return ExitError
				}
			}
			file, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to open log file: %v\n", err)
				return ExitError
			}
			logFile = file
			defer func() { _ = logFile.Close() }()
		}

		verboseWriter := io.Writer(stdout)
		verboseEnabled := *verbose
		if logFile != nil {
			if verboseEnabled && !decision.useLive {
				verboseWriter = io.MultiWriter(stdout, logFile)
			} else {
				verboseWriter = logFile
			}
			verboseEnabled = true
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		commit := discoverCommitLabel(ctx, root)

		var controller liveController
		deps := runner.Dependencies{
			Verbose:       verboseEnabled,
			VerboseWriter: verboseWriter,
			NoColor:       *noColor,
		}
		if decision.useLive {
			controller = startLiveUI(stdout, live.Options{NoColor: *noColor})
			deps.Observer = controller
		}

		store := dataset.NewDirStore(config.ResolveDatasetsDir(root, cfg))
		set, runErr := runAll(ctx, runner.AllParams{
			Config:      cfg,
			Root:        root,
			Suite:       suiteLabel,
			Commit:      commit,
			Experiments: experiments,
			Variants:    variants,
			Adapters:    runner.HTTPAdapterFactory(nil),
			Store:       store,
			Deps:        deps,
		})
		if controller != nil {
			controller.Close()
			controller.Wait()
		}

		if runErr != nil && set.RunID == "" {
			fmt.Fprintf(stderr, "Run failed: %v\n", runErr)
			return ExitError
		}

		resolvedOutput := strings.TrimSpace(*outputDir)
		if resolvedOutput == "" {
			resolvedOutput = config.ResolveOutputDir(root, cfg)
		}
		paths, err := writeRunOutputs(set, resolvedOutput)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to write outputs: %v\n", err)
			return ExitError
		}
		if err := writeRunReport(paths.ReportPath(), []runner.ResultSet{set}); err != nil {
			fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
			return ExitError
		}

		if set.Partial {
			fmt.Fprintf(stdout, "Run %s interrupted (partial results written)\n", set.RunID)
		} else {
			fmt.Fprintf(stdout, "Run %s completed\n", set.RunID)
		}
		fmt.Fprint(stdout, aggregate.FormatReport(aggregate.Aggregate(set.Experiments...)))
		fmt.Fprintf(stdout, "Results: %s\n", paths.ResultsPath())
		fmt.Fprintf(stdout, "Report: %s\n", paths.ReportPath())
		if runErr != nil {
			fmt.Fprintf(stderr, "Run failed: %v\n", runErr)
			return ExitError
		}
		return ExitOK
	}
}

// discoverCommitLabel resolves the working tree's commit label, or empty when
// the project is not in a git repository.
func discoverCommitLabel(ctx context.Context, root string) string {
	repo, err := vcs.Discover(ctx, root)
	if err != nil {
		return ""
	}
	meta, err := repo.Metadata(ctx)
	if err != nil {
		return ""
	}
	return meta.CommitLabel()
}
