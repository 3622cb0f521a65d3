package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/coursetable/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	// Title line
	TitleStyle     lipgloss.Style
	WeekStyle      lipgloss.Style
	DateRangeStyle lipgloss.Style

	// Header row and period labels
	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style
	LabelStyle          lipgloss.Style
	LabelCurrentStyle   lipgloss.Style

	// Grid cells
	EmptyCellStyle  lipgloss.Style
	TodayCellStyle  lipgloss.Style
	CursorCellStyle lipgloss.Style
	ConflictStyle   lipgloss.Style

	courseStyles   []lipgloss.Style
	selectedStyles []lipgloss.Style
	pastStyles     []lipgloss.Style

	// Footer
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	SearchStyle lipgloss.Style
	HelpStyle   lipgloss.Style

	// Detail overlay
	DetailStyle      lipgloss.Style
	DetailTitleStyle lipgloss.Style
	DetailKeyStyle   lipgloss.Style
	DetailValueStyle lipgloss.Style
	DetailBg         lipgloss.Color
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{palette: p}

	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)
	s.WeekStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Current)
	s.DateRangeStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted)

	s.DayHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Fg)
	s.DayHeaderTodayStyle = s.DayHeaderStyle.
		Foreground(p.TextOnCurrent).
		Background(p.Current)
	s.LabelStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted)
	s.LabelCurrentStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Current)

	s.EmptyCellStyle = lipgloss.NewStyle()
	s.TodayCellStyle = lipgloss.NewStyle().
		Background(p.BgHighlight)
	s.CursorCellStyle = lipgloss.NewStyle().
		Background(p.BgSelection).
		Foreground(p.Fg)
	s.ConflictStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextOnWarning).
		Background(p.Warning)

	for i := range p.CourseBg {
		base := lipgloss.NewStyle().Foreground(p.TextOnCourse[i])
		s.courseStyles = append(s.courseStyles, base.Background(p.CourseBg[i]))
		s.selectedStyles = append(s.selectedStyles, base.Bold(true).Background(p.CourseBgAlt[i]))
		s.pastStyles = append(s.pastStyles, lipgloss.NewStyle().Foreground(p.FgMuted).Background(p.CoursePastBg[i]))
	}

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(p.Accent)
	s.ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Warning)
	s.SearchStyle = lipgloss.NewStyle().
		Foreground(p.Fg)
	s.HelpStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted)

	s.DetailBg = p.Modal.Bg
	s.DetailStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Modal.Border).
		BorderBackground(p.Modal.Bg).
		Background(p.Modal.Bg).
		Foreground(p.Modal.Text).
		Padding(0, 1)
	s.DetailTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Modal.Highlight).
		Background(p.Modal.Bg)
	s.DetailKeyStyle = lipgloss.NewStyle().
		Foreground(p.Modal.Muted).
		Background(p.Modal.Bg)
	s.DetailValueStyle = lipgloss.NewStyle().
		Foreground(p.Modal.Text).
		Background(p.Modal.Bg)

	return s
}

// CourseStyle returns the block style for a grid color index.
func (s *Styles) CourseStyle(colorIndex int, selected, past bool) lipgloss.Style {
	if len(s.courseStyles) == 0 {
		return s.CursorCellStyle
	}
	i := s.palette.CourseIndex(colorIndex)
	switch {
	case selected:
		return s.selectedStyles[i]
	case past:
		return s.pastStyles[i]
	default:
		return s.courseStyles[i]
	}
}
