package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"specrun/internal/config"
	"specrun/internal/mcpserver"
	"specrun/internal/suites"
)

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the test suites over MCP (stdio transport)",
		Long: `Mcp runs an MCP server on stdin and stdout that exposes the
registered suites as tools:

  list_tests       List suites and their tests
  run_tests        Run selected tests and return the run report
  get_last_result  Return the report of the previous run

Configure it in your MCP client with the command "specrun mcp". Run
settings from the configuration files are the defaults of every run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			runCfg, err := cfg.RunnerConfig()
			if err != nil {
				return err
			}

			server := mcpserver.New(suites.Build, runCfg, rootCmd.Version)
			if err := server.ServeStdio(); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to an additional configuration file")
	return cmd
}
