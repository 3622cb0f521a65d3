package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlay draws box centered on top of base, which is width × height cells.
// Base lines outside the box keep their content and styling.
func overlay(base, box string, width, height int) string {
	if width <= 0 || height <= 0 || box == "" {
		return base
	}

	baseLines := normalizeLines(base, width, height)
	boxLines := strings.Split(box, "\n")
	boxW := min(lipgloss.Width(box), width)
	boxH := min(len(boxLines), height)

	top := max((height-boxH)/2, 0)
	left := max((width-boxW)/2, 0)

	for i := 0; i < boxH; i++ {
		row := top + i
		line := ansi.Truncate(boxLines[i], boxW, "")
		if pad := boxW - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		baseLine := baseLines[row]
		baseLines[row] = ansi.Cut(baseLine, 0, left) + ansi.ResetStyle + line + ansi.ResetStyle + ansi.Cut(baseLine, left+boxW, width)
	}
	return strings.Join(baseLines, "\n")
}

// normalizeLines splits s into exactly height lines, each padded to width.
func normalizeLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		if pad := width - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		out[i] = line
	}
	return out
}
