// Package theme provides the color themes of the timetable TUI.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is the theme used when none or an unknown one is configured.
const DefaultName = "mocha"

// Theme holds all colors for a TUI theme, as "#rrggbb" strings.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Today's column
	BgSelection string `toml:"bg_selection"` // Cursor on an empty cell
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Period labels, past meetings
	Accent      string `toml:"accent"`       // Title, status line
	Current     string `toml:"current"`      // Today's header and the ongoing period
	Warning     string `toml:"warning"`      // Conflicting courses, errors

	// Courses is the course color cycle; grid color indices select from it.
	Courses []string `toml:"courses"`

	// Detail box colors; empty values fall back to the base colors.
	BaseBg      string `toml:"base_bg"`
	ModalBorder string `toml:"modal_border"`
	TextPrimary string `toml:"text_primary"`
	TextMuted   string `toml:"text_muted"`
	Highlight   string `toml:"highlight"`
}

// defaultCourses is used when a theme file lists no course colors.
var defaultCourses = []string{"#89b4fa", "#fab387", "#a6e3a1", "#f5c2e7", "#94e2d5", "#f9e2af", "#b4befe", "#89dceb"}

// Load loads a theme by name from the embedded files. Unknown names load
// DefaultName.
func Load(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !IsAvailable(name) {
		name = DefaultName
	}

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()
	return &t, nil
}

func (t *Theme) applyDefaults() {
	if len(t.Courses) == 0 {
		t.Courses = defaultCourses
	}
	t.BaseBg = coalesce(t.BaseBg, t.BgHighlight, t.Bg)
	t.ModalBorder = coalesce(t.ModalBorder, t.Accent)
	t.TextPrimary = coalesce(t.TextPrimary, t.Fg)
	t.TextMuted = coalesce(t.TextMuted, t.FgMuted)
	t.Highlight = coalesce(t.Highlight, t.BgSelection, t.Accent)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte", "light"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
