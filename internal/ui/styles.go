package ui

import (
	"fmt"
	"strings"

	"github.com/groblegark/okrd/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray

	colorAhead    = 114 // green
	colorOnTrack  = 74  // blue
	colorAtRisk   = 214 // orange
	colorOffTrack = 203 // red
	colorComplete = 114 // green
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorCmd, s)
}

// RenderPace returns the pace status string in its status color.
func RenderPace(status model.PaceStatus) string {
	s := string(status)
	if noColor {
		return s
	}
	var code int
	switch status {
	case model.PaceAhead:
		code = colorAhead
	case model.PaceOnTrack:
		code = colorOnTrack
	case model.PaceAtRisk:
		code = colorAtRisk
	case model.PaceOffTrack:
		code = colorOffTrack
	case model.PaceComplete:
		code = colorComplete
	default:
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// ProgressBar renders a fixed-width bar for a 0..1 progress value.
func ProgressBar(progress float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress*float64(width) + 0.5)
	full := strings.Repeat("█", filled)
	empty := strings.Repeat("░", width-filled)
	if noColor {
		return full + empty
	}
	return RenderAccent(full) + RenderMuted(empty)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
