package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"specrun/internal/events"
)

func (m model) View() string {
	var b strings.Builder

	header := titleStyle.Render(m.title)
	if m.runID != "" {
		header += dimStyle.Render("  run " + m.runID)
	}
	b.WriteString(header + "\n\n")

	b.WriteString(m.progressLine() + "\n")
	if m.suite != "" && m.finished == nil {
		b.WriteString(dimStyle.Render("suite "+m.suite) + "\n")
	}

	if len(m.running) > 0 && m.finished == nil {
		b.WriteString("\n")
		for _, r := range m.running {
			elapsed := time.Since(r.started).Round(time.Millisecond)
			b.WriteString(fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.truncate(r.name, 12), dimStyle.Render(elapsed.String())))
		}
	}

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, line := range m.recent {
			b.WriteString(line + "\n")
		}
	}

	if m.finished != nil {
		b.WriteString("\n" + boxStyle.Render(m.summaryText()) + "\n")
	} else if m.stopping {
		b.WriteString("\n" + warnStyle.Render("Stopping after running tests finish...") + "\n")
	} else {
		b.WriteString("\n" + dimStyle.Render("q: stop run") + "\n")
	}
	return b.String()
}

func (m model) progressLine() string {
	done := m.done()
	filled := 0
	if m.expected > 0 {
		filled = done * progressWidth / m.expected
		if filled > progressWidth {
			filled = progressWidth
		}
	}
	bar := progressFilled.Render(strings.Repeat("█", filled)) +
		progressEmpty.Render(strings.Repeat("░", progressWidth-filled))

	counts := fmt.Sprintf("%d/%d", done, m.expected)
	if m.summary.TestsFailed > 0 {
		counts += failureStyle.Render(fmt.Sprintf("  %d failed", m.summary.TestsFailed))
	}
	return bar + " " + counts
}

func (m model) summaryText() string {
	var status string
	switch ev := m.finished.(type) {
	case *events.RunCompleted:
		status = successStyle.Render("Run completed in " + ev.Duration.Round(time.Millisecond).String())
	case *events.RunStopped:
		status = warnStyle.Render("Run stopped after " + ev.Duration.Round(time.Millisecond).String())
	case *events.RunAborted:
		status = failureStyle.Render("Run aborted: " + ev.Message)
	}

	lines := []string{status, m.summary.String()}
	for _, f := range m.failures {
		lines = append(lines, failureStyle.Render(m.truncate(f, 6)))
	}
	return strings.Join(lines, "\n")
}

// truncate fits s into the terminal width minus margin columns.
func (m model) truncate(s string, margin int) string {
	limit := m.width - margin
	if limit < 10 {
		limit = 10
	}
	return runewidth.Truncate(s, limit, "…")
}
