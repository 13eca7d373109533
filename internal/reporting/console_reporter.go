package reporting

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"specrun/internal/color"
	"specrun/internal/events"
)

// ConsoleOptions configures a ConsoleReporter
type ConsoleOptions struct {
	// Verbose also prints test starts and scope endings
	Verbose bool
	// NoColor disables ANSI styling
	NoColor bool
	// Width limits failure messages; 0 means 100 columns
	Width int
}

type consoleStyles struct {
	suite     lipgloss.Style
	succeeded lipgloss.Style
	failed    lipgloss.Style
	warning   lipgloss.Style
	info      lipgloss.Style
	dim       lipgloss.Style
}

// ConsoleReporter prints an indented, coloured account of a run
type ConsoleReporter struct {
	out    io.Writer
	opts   ConsoleOptions
	styles consoleStyles
	mu     sync.Mutex
}

// NewConsoleReporter creates a console reporter writing to out
func NewConsoleReporter(out io.Writer, opts ConsoleOptions) *ConsoleReporter {
	if opts.Width <= 0 {
		opts.Width = 100
	}

	renderer := lipgloss.NewRenderer(out)
	renderer.SetColorProfile(color.Profile(opts.NoColor))

	return &ConsoleReporter{
		out:  out,
		opts: opts,
		styles: consoleStyles{
			suite:     renderer.NewStyle().Bold(true),
			succeeded: renderer.NewStyle().Foreground(color.Default.Success),
			failed:    renderer.NewStyle().Foreground(color.Default.Failure),
			warning:   renderer.NewStyle().Foreground(color.Default.Warning),
			info:      renderer.NewStyle().Foreground(color.Default.Info),
			dim:       renderer.NewStyle().Faint(true),
		},
	}
}

// Apply implements Reporter
func (c *ConsoleReporter) Apply(event events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := event.(type) {
	case *events.SuiteStarting:
		c.println(c.styles.suite.Render(e.Suite + ":"))
	case *events.SuiteAborted:
		line := "*** SUITE ABORTED ***"
		if e.Test != "" {
			line = fmt.Sprintf("*** SUITE ABORTED in %q ***", e.Test)
		}
		c.println(c.styles.failed.Render(line))
		c.printMessage(e.Message, 1, c.styles.failed)
	case *events.ScopeOpened:
		c.println(e.Text.Formatted)
	case *events.TestStarting:
		if c.opts.Verbose {
			c.println(c.styles.dim.Render(e.Text.Formatted + " ..."))
		}
	case *events.TestSucceeded:
		c.println(c.styles.succeeded.Render(e.Text.Formatted) + c.duration(e.TestResult))
		c.printRecorded(e.Recorded, e.Text.Level+1)
	case *events.TestFailed:
		c.println(c.styles.failed.Render(e.Text.Formatted+" *** FAILED ***") + c.duration(e.TestResult))
		c.printMessage(e.Message, e.Text.Level+2, c.styles.failed)
		c.printRecorded(e.Recorded, e.Text.Level+1)
	case *events.TestPending:
		c.println(c.styles.warning.Render(e.Text.Formatted + " (pending)"))
		c.printRecorded(e.Recorded, e.Text.Level+1)
	case *events.TestCanceled:
		c.println(c.styles.warning.Render(e.Text.Formatted + " !!! CANCELED !!!"))
		c.printMessage(e.Message, e.Text.Level+2, c.styles.warning)
		c.printRecorded(e.Recorded, e.Text.Level+1)
	case *events.TestIgnored:
		c.println(c.styles.warning.Render(e.Text.Formatted + " !!! IGNORED !!!"))
	case *events.InfoProvided:
		c.println(c.styles.info.Render(e.Text.Formatted))
	case *events.NoteProvided:
		c.println(c.styles.info.Render(e.Text.Formatted))
	case *events.AlertProvided:
		c.println(c.styles.warning.Render(e.Text.Formatted))
	case *events.MarkupProvided:
		c.println(e.Text.Formatted)
	case *events.RunCompleted:
		c.printSummary("Run completed", e.RunEnded)
	case *events.RunStopped:
		c.printSummary("Run stopped", e.RunEnded)
	case *events.RunAborted:
		c.printSummary("Run aborted", e.RunEnded)
	}
}

func (c *ConsoleReporter) println(line string) {
	fmt.Fprintln(c.out, line)
}

func (c *ConsoleReporter) duration(r events.TestResult) string {
	if !c.opts.Verbose {
		return ""
	}
	return c.styles.dim.Render(fmt.Sprintf(" (%v)", r.Duration))
}

func (c *ConsoleReporter) printRecorded(recorded []events.Event, level int) {
	for _, r := range recorded {
		text, ok := events.Text(r)
		if !ok {
			continue
		}
		style := c.styles.info
		if r.Type() == events.EventTypeAlertProvided {
			style = c.styles.warning
		}
		indented := events.Indent(strings.TrimLeft(text.Formatted, " "), level)
		c.println(style.Render(indented.Formatted))
	}
}

// printMessage prints the first lines of msg, each cut to the configured width.
func (c *ConsoleReporter) printMessage(msg string, level int, style lipgloss.Style) {
	if msg == "" {
		return
	}
	lines := strings.Split(strings.TrimRight(msg, "\n"), "\n")
	if !c.opts.Verbose && len(lines) > 3 {
		lines = append(lines[:3], "...")
	}
	indent := strings.Repeat("  ", level)
	limit := c.opts.Width - runewidth.StringWidth(indent)
	if limit < 20 {
		limit = 20
	}
	for _, line := range lines {
		c.println(style.Render(indent + runewidth.Truncate(line, limit, "…")))
	}
}

func (c *ConsoleReporter) printSummary(title string, e events.RunEnded) {
	s := e.Summary
	c.println("")
	c.println(fmt.Sprintf("%s in %v.", title, e.Duration))
	if e.Message != "" {
		c.printMessage(e.Message, 1, c.styles.failed)
	}
	c.println(fmt.Sprintf("Suites: completed %d, aborted %d", s.SuitesCompleted, s.SuitesAborted))
	c.println("Tests: " + s.String())

	switch {
	case s.SuitesAborted > 0:
		c.println(c.styles.failed.Render(fmt.Sprintf("*** %d SUITE%s ABORTED ***", s.SuitesAborted, plural(s.SuitesAborted))))
		if s.TestsFailed > 0 {
			c.println(c.styles.failed.Render(fmt.Sprintf("*** %d TEST%s FAILED ***", s.TestsFailed, plural(s.TestsFailed))))
		}
	case s.TestsFailed > 0:
		c.println(c.styles.failed.Render(fmt.Sprintf("*** %d TEST%s FAILED ***", s.TestsFailed, plural(s.TestsFailed))))
	case s.TotalTests() == 0:
		c.println(c.styles.warning.Render("No tests were executed."))
	default:
		c.println(c.styles.succeeded.Render("All tests passed."))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "S"
}
