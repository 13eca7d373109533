package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"specrun/internal/config"
	"specrun/internal/engine"
	"specrun/internal/runner"
	"specrun/internal/suites"
)

type listOptions struct {
	configPath string
	suites     []string
	format     string
	tags       bool
}

func newListCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered suites and their tests",
		Long: `List prints every registered suite with its resolved test names.
Tests that a run would ignore are marked, and suites that failed to
construct show their error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSuites(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to an additional configuration file")
	cmd.Flags().StringSliceVar(&opts.suites, "suites", nil, "Glob patterns selecting suites")
	cmd.Flags().StringVar(&opts.format, "format", config.FormatText, "Output format (text, json)")
	cmd.Flags().BoolVar(&opts.tags, "tags", false, "Show the tags of every test")
	_ = cmd.RegisterFlagCompletionFunc("suites", completeSuiteNames)

	return cmd
}

// listedSuite is the JSON form of one suite.
type listedSuite struct {
	Name  string       `json:"name"`
	Style string       `json:"style"`
	Error string       `json:"error,omitempty"`
	Tests []listedTest `json:"tests"`
}

type listedTest struct {
	Name    string   `json:"name"`
	Tags    []string `json:"tags,omitempty"`
	Ignored bool     `json:"ignored,omitempty"`
}

func listSuites(cmd *cobra.Command, opts *listOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	filter := runner.Filter{Suites: cfg.Filter.Suites}
	if cmd.Flags().Changed("suites") {
		filter.Suites = opts.suites
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	var listed []listedSuite
	for _, s := range suites.Build() {
		if filter.MatchSuite(s.Name()) {
			listed = append(listed, describe(s))
		}
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case config.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	case config.FormatText:
		printSuites(out, listed, opts.tags)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", opts.format)
	}
}

func describe(s *engine.Suite) listedSuite {
	ls := listedSuite{Name: s.Name(), Style: s.Style().String(), Tests: []listedTest{}}
	if err := s.Err(); err != nil {
		ls.Error = err.Error()
	}
	e := s.Engine()
	for _, leaf := range e.Trunk().Leaves() {
		ls.Tests = append(ls.Tests, listedTest{
			Name:    e.ResolveName(leaf),
			Tags:    leaf.Tags(),
			Ignored: leaf.HasTag(engine.IgnoreTag),
		})
	}
	return ls
}

func printSuites(out io.Writer, listed []listedSuite, withTags bool) {
	if len(listed) == 0 {
		fmt.Fprintln(out, "No suites found.")
		return
	}
	total := 0
	for _, s := range listed {
		fmt.Fprintf(out, "%s (%s, %d tests)\n", s.Name, s.Style, len(s.Tests))
		if s.Error != "" {
			fmt.Fprintf(out, "  ! %s\n", s.Error)
		}
		for _, t := range s.Tests {
			line := "  - " + t.Name
			if t.Ignored {
				line += " (ignored)"
			}
			if withTags && len(t.Tags) > 0 {
				line += " [" + strings.Join(t.Tags, ", ") + "]"
			}
			fmt.Fprintln(out, line)
		}
		total += len(s.Tests)
	}
	fmt.Fprintf(out, "\n%d suites, %d tests\n", len(listed), total)
}
