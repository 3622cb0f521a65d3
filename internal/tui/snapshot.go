package tui

import (
	"strings"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/grid"
)

// Snapshot renders the grid of week for entries at width × height without
// starting a program. Nothing is selected. The layout result is returned so
// callers can report conflicts and skipped entries.
func Snapshot(entries []*course.Entry, opts Options, week, width, height int) (string, grid.Result, error) {
	m := New(nil, opts)
	m.entries = entries
	m.loading = false
	m.width = width
	m.height = height + titleHeight + footerHeight
	m.week = min(max(week, 1), m.resolver.TotalWeeks)
	m.cursor = Position{}
	m.relayout()
	if m.layoutErr != nil {
		return "", grid.Result{}, m.layoutErr
	}

	lines := m.renderGrid(m.nowFunc())
	return m.renderTitle() + "\n" + strings.Join(lines, "\n"), m.result, nil
}
