// Package style holds the colors and icons javelin uses for terminal output.
package style

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	Steel  = lipgloss.Color("#667085")
	Amber  = lipgloss.Color("#F59E0B")
	Signal = lipgloss.Color("#D93025")
	Moss   = lipgloss.Color("#22A06B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
)

// Level is how a log level is rendered.
type Level struct {
	Icon  string
	Color lipgloss.Color
}

// ForLevel returns the rendering of a log level. Info messages carry no icon.
func ForLevel(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return Level{Icon: Cross, Color: Signal}
	case l >= slog.LevelWarn:
		return Level{Icon: Warning, Color: Amber}
	case l >= slog.LevelInfo:
		return Level{Color: Steel}
	default:
		return Level{Icon: Dot, Color: Steel}
	}
}
