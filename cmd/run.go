package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"specrun/internal/config"
	"specrun/internal/engine"
	"specrun/internal/events"
	"specrun/internal/metrics"
	"specrun/internal/reporting"
	"specrun/internal/runner"
	"specrun/internal/suites"
	"specrun/internal/tui"
	"specrun/pkg/logging"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	configPath  string
	parallel    bool
	workers     int
	failFast    bool
	suites      []string
	names       []string
	test        string
	includeTags []string
	excludeTags []string
	timeout     time.Duration
	testTimeout time.Duration
	format      string
	reportDir   string
	metricsFile string
	tui         bool
	verbose     bool
	noColor     bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the registered test suites",
		Long: `Run executes the registered suites and reports the result.

Settings are read from the configuration files first; flags given on the
command line override them.

Example usage:
  specrun run                               # Run everything sequentially
  specrun run --parallel --workers=8        # Run tests on 8 workers
  specrun run --suites='engine/*'           # Run matching suites only
  specrun run --names='*resolver*'          # Run tests whose name matches
  specrun run --include-tags=unit           # Run tests tagged unit
  specrun run --fail-fast --format=json     # Stop on first failure, JSON lines
  specrun run --report=./reports            # Save a detailed JSON report
  specrun run --tui                         # Live terminal view

The command exits with status 1 when a test fails or a suite aborts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuites(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to an additional configuration file")
	flags.BoolVar(&opts.parallel, "parallel", false, "Run tests on a bounded worker pool")
	flags.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (default: number of CPUs)")
	flags.BoolVar(&opts.failFast, "fail-fast", false, "Stop the run after the first failed test")
	flags.StringSliceVar(&opts.suites, "suites", nil, "Glob patterns selecting suites")
	flags.StringSliceVar(&opts.names, "names", nil, "Glob patterns selecting tests by name")
	flags.StringVar(&opts.test, "test", "", "Run the single test with this exact name")
	flags.StringSliceVar(&opts.includeTags, "include-tags", nil, "Run only tests carrying one of these tags")
	flags.StringSliceVar(&opts.excludeTags, "exclude-tags", nil, "Skip tests carrying any of these tags")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Time limit for the whole run")
	flags.DurationVar(&opts.testTimeout, "test-timeout", 0, "Default time limit for each test")
	flags.StringVar(&opts.format, "format", config.FormatText, "Output format (text, json)")
	flags.StringVar(&opts.reportDir, "report", "", "Directory to save a detailed JSON report in")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics of the run to this file")
	flags.BoolVar(&opts.tui, "tui", false, "Show a live terminal view of the run")
	flags.BoolVar(&opts.verbose, "verbose", false, "Also print informers of passing tests")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	_ = cmd.RegisterFlagCompletionFunc("suites", completeSuiteNames)
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatText, config.FormatJSON}, cobra.ShellCompDirectiveDefault
	})
	cmd.MarkFlagsMutuallyExclusive("tui", "format")

	return cmd
}

// completeSuiteNames provides shell completion for suite patterns
func completeSuiteNames(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return suites.SortedNames(), cobra.ShellCompDirectiveNoFileComp
}

// settings merges the configuration files with the flags that were set.
func (o *runOptions) settings(cmd *cobra.Command) (config.SpecrunConfig, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return config.SpecrunConfig{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("parallel") {
		cfg.Run.Mode = runner.Sequential.String()
		if o.parallel {
			cfg.Run.Mode = runner.Parallel.String()
		}
	}
	if flags.Changed("workers") {
		cfg.Run.Workers = o.workers
	}
	if flags.Changed("fail-fast") {
		cfg.Run.FailFast = config.BoolPtr(o.failFast)
	}
	if flags.Changed("timeout") {
		cfg.Run.RunTimeout = o.timeout
	}
	if flags.Changed("test-timeout") {
		cfg.Run.TestTimeout = o.testTimeout
	}
	if flags.Changed("suites") {
		cfg.Filter.Suites = o.suites
	}
	if flags.Changed("names") {
		cfg.Filter.Names = o.names
	}
	if flags.Changed("include-tags") {
		cfg.Filter.IncludeTags = o.includeTags
	}
	if flags.Changed("exclude-tags") {
		cfg.Filter.ExcludeTags = o.excludeTags
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("report") {
		cfg.Output.ReportDir = o.reportDir
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = o.metricsFile
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbose = config.BoolPtr(o.verbose)
	}
	if flags.Changed("no-color") {
		cfg.Output.NoColor = config.BoolPtr(o.noColor)
	}

	if err := cfg.Validate(); err != nil {
		return config.SpecrunConfig{}, err
	}
	return cfg, nil
}

func runSuites(cmd *cobra.Command, opts *runOptions) error {
	settings, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	runCfg, err := settings.RunnerConfig()
	if err != nil {
		return err
	}
	runCfg.Filter.TestName = opts.test

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if settings.Run.RunTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, settings.Run.RunTimeout)
		defer cancel()
	}

	// Handle interrupts gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logging.Warn("Run", "Received interrupt signal, stopping tests gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	r := runner.New(runCfg)
	built := suites.Build()

	bus := reporting.NewEventBus()
	defer bus.Close()

	if !opts.tui {
		bus.Subscribe(nil, outputReporter(cmd.OutOrStdout(), settings).Apply)
	}
	bus.Subscribe(reporting.FilterBySeverity(events.SeverityError), func(e events.Event) {
		logging.Debug("Run", "%s", e)
	})

	var reportFile *reporting.ReportFileReporter
	if settings.Output.ReportDir != "" {
		reportFile = reporting.NewReportFileReporter(settings.Output.ReportDir)
		bus.Subscribe(nil, reportFile.Apply)
	}
	var metricsReporter *metrics.Reporter
	if settings.Output.MetricsFile != "" {
		metricsReporter = metrics.NewReporter()
		bus.Subscribe(nil, metricsReporter.Apply)
	}

	status, err := execute(ctx, r, built, bus, opts.tui)
	if err != nil {
		return err
	}

	if reportFile != nil {
		if err := reportFile.Err(); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		if opts.tui {
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", reportFile.Path())
		}
	}
	if metricsReporter != nil {
		if err := metricsReporter.WriteTextfile(settings.Output.MetricsFile); err != nil {
			return err
		}
	}

	if !status.Succeeded() {
		return errTestsFailed
	}
	return nil
}

// execute runs the suites either behind the live view or directly.
func execute(ctx context.Context, r *runner.Runner, built []*engine.Suite, reporter reporting.Reporter, live bool) (*runner.Status, error) {
	if !live {
		return r.Run(ctx, built, reporter), nil
	}
	return tui.Run(ctx, "specrun", func(ctx context.Context, tuiReporter reporting.Reporter) *runner.Status {
		return r.Run(ctx, built, reporting.MultiReporter{reporter, tuiReporter})
	}, r.Stop)
}

// outputReporter returns the reporter for the configured output format.
func outputReporter(out io.Writer, settings config.SpecrunConfig) reporting.Reporter {
	if settings.Output.Format == config.FormatJSON {
		return reporting.NewJSONLinesReporter(out)
	}
	return reporting.NewConsoleReporter(out, reporting.ConsoleOptions{
		Verbose: config.Bool(settings.Output.Verbose),
		NoColor: config.Bool(settings.Output.NoColor),
		Width:   settings.Output.Width,
	})
}
