package tui

import (
	"github.com/charmbracelet/lipgloss"

	"specrun/internal/color"
)

const (
	IconCheck     = "✔"
	IconCross     = "✘"
	IconPending   = "…"
	IconCanceled  = "!"
	IconIgnored   = "-"
	IconAbort     = "■"
	maxRecentLogs = 12
	progressWidth = 30
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(color.Default.Accent)
	successStyle   = lipgloss.NewStyle().Foreground(color.Default.Success)
	failureStyle   = lipgloss.NewStyle().Foreground(color.Default.Failure).Bold(true)
	warnStyle      = lipgloss.NewStyle().Foreground(color.Default.Warning)
	dimStyle       = lipgloss.NewStyle().Foreground(color.Default.Muted)
	progressFilled = lipgloss.NewStyle().Foreground(color.Default.Success)
	progressEmpty  = lipgloss.NewStyle().Foreground(color.Default.Muted)
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(color.Default.Accent).Padding(0, 1)
)
