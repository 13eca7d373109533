package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"specrun/pkg/logging"

	// Built-in suites register themselves with the suite registry.
	_ "specrun/internal/suites/selftest"
)

var (
	logLevel  string
	logFormat string
)

// errTestsFailed is returned by commands whose run did not succeed. The
// console output already explains why, so Execute only sets the exit code.
var errTestsFailed = errors.New("tests failed")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "specrun",
	Short: "Register and run test suites",
	Long: `specrun executes registered test suites and reports every step
of a run as an ordered stream of events.

Suites are trees of named scopes and tests. A run executes them
sequentially or on a bounded worker pool and reports the results on the
console, as JSON lines, in a live terminal view or over MCP.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. failed tests, invalid configuration)
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(cmd)
	},
}

// initLogging configures the logger from the persistent flags.
func initLogging(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	format := logging.FormatText
	switch logFormat {
	case "text":
	case "json":
		format = logging.FormatJSON
	default:
		return fmt.Errorf("unknown log format %q", logFormat)
	}
	logging.InitForCLI(level, format, cmd.ErrOrStderr())
	return nil
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "specrun version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}
