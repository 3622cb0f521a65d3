package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Course titles: bold cyan
	colorTitle = color.New(color.FgCyan, color.Bold)

	// Reminder markers and times: yellow to make them pop
	colorReminder = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Conflicts and invalid entries: bold red
	colorWarn = color.New(color.FgRed, color.Bold)

	// Success lines: green
	colorOK = color.New(color.FgGreen)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// Fallback terminal size when stdout is not a terminal.
const (
	defaultTermWidth  = 140
	defaultTermHeight = 30
)

// termSize returns the terminal size, or a default if detection fails.
func termSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return defaultTermWidth, defaultTermHeight
	}
	return width, height
}

// DisableColor disables all color output, including lipgloss rendering.
func DisableColor() {
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

func formatTitle(s string) string {
	return colorTitle.Sprint(s)
}

func formatReminder(s string) string {
	return colorReminder.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
