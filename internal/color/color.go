package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette holds the semantic colors used by every renderer.
type Palette struct {
	Accent  lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Failure lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
}

// Default is the palette of console and TUI output.
var Default = Palette{
	Accent:  lipgloss.AdaptiveColor{Light: "57", Dark: "63"},
	Success: lipgloss.AdaptiveColor{Light: "28", Dark: "2"},
	Failure: lipgloss.AdaptiveColor{Light: "124", Dark: "1"},
	Warning: lipgloss.AdaptiveColor{Light: "130", Dark: "3"},
	Info:    lipgloss.AdaptiveColor{Light: "24", Dark: "6"},
	Muted:   lipgloss.AdaptiveColor{Light: "245", Dark: "8"},
}

// Initialize forces the background mode used to pick adaptive colors.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// Disabled reports whether output must be plain: either noColor is set or
// the environment asks for it with NO_COLOR.
func Disabled(noColor bool) bool {
	if noColor {
		return true
	}
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// Profile returns the color profile for a renderer.
func Profile(noColor bool) termenv.Profile {
	if Disabled(noColor) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
