// Package color provides the color palette and color detection shared by
// the console reporter and the terminal view.
//
// # Palette
//
// Colors are organized into semantic categories, each an adaptive color
// with a light and a dark variant:
//   - Accent: titles and borders
//   - Success: passing tests
//   - Failure: failed tests and aborted suites
//   - Warning: pending, canceled and ignored tests
//   - Info: informers
//   - Muted: durations and hints
//
// # Usage Example
//
//	renderer := lipgloss.NewRenderer(out)
//	renderer.SetColorProfile(color.Profile(noColor))
//	failed := renderer.NewStyle().Foreground(color.Default.Failure)
//
// # Environment Variables
//
// NO_COLOR disables all color output regardless of flags. Otherwise the
// profile is detected from TERM and COLORTERM.
package color
