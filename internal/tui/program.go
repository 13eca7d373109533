package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"specrun/internal/reporting"
	"specrun/internal/runner"
	"specrun/pkg/logging"
)

// RunFunc executes a run against the given reporter.
type RunFunc func(ctx context.Context, reporter reporting.Reporter) *runner.Status

// Run executes run while showing its progress. stop is called when the user
// asks to quit early; Run then waits for the run to wind down.
func Run(ctx context.Context, title string, run RunFunc, stop func()) (*runner.Status, error) {
	reporter := NewProgramReporter(0)
	p := tea.NewProgram(newModel(title, reporter, stop), tea.WithContext(ctx))

	result := make(chan *runner.Status, 1)
	go func() {
		defer reporter.Close()
		result <- run(ctx, reporter)
	}()

	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		logging.Error("TUI", err, "TUI program failed")
		if stop != nil {
			stop()
		}
		<-result
		return nil, fmt.Errorf("running TUI: %w", err)
	}

	status := <-result
	if m, ok := final.(model); ok && m.finished == nil {
		logging.Debug("TUI", "Program exited before the run ended")
	}
	if stats := reporter.Stats(); stats.EventsDropped > 0 {
		logging.Warn("TUI", "Dropped %d events while the display was busy", stats.EventsDropped)
	}
	return status, nil
}
