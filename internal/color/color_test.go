package color

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		isDarkMode bool
		expected   bool
	}{
		{"set dark mode", true, true},
		{"set light mode", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Initialize(tt.isDarkMode)
			if lipgloss.HasDarkBackground() != tt.expected {
				t.Errorf("lipgloss.HasDarkBackground() got %v, want %v after Initialize(%v)", lipgloss.HasDarkBackground(), tt.expected, tt.isDarkMode)
			}
		})
	}
}

func TestProfile(t *testing.T) {
	if Profile(true) != termenv.Ascii {
		t.Error("Expected the ASCII profile when color is disabled")
	}

	t.Setenv("NO_COLOR", "1")
	if !Disabled(false) {
		t.Error("Expected NO_COLOR to disable color")
	}
	if Profile(false) != termenv.Ascii {
		t.Error("Expected the ASCII profile when NO_COLOR is set")
	}
}
