// Package tui provides the terminal timetable for coursetable.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/grid"
	"github.com/javiermolinar/coursetable/internal/occurrence"
	"github.com/javiermolinar/coursetable/internal/tui/commands"
	"github.com/javiermolinar/coursetable/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch      // typing a search query
	ModeDetail      // course detail overlay
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeDetail:
		return "detail"
	default:
		return "normal"
	}
}

// Lines taken by the title above the grid and by the footer below it.
const (
	titleHeight  = 1
	footerHeight = 2
)

// statusTimeout is how long a status message stays in the footer.
const statusTimeout = 3 * time.Second

// Position is a grid cell. Day is 1 (Monday) to 7, Slot is 1-based.
type Position struct {
	Day  int
	Slot int
}

// Options configures a Model.
type Options struct {
	Resolver *occurrence.Resolver
	Grid     grid.Options
	Theme    *theme.Theme
	Log      *zap.Logger
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	repo     course.Repository
	resolver *occurrence.Resolver
	engine   *grid.Engine
	log      *zap.Logger

	// Theme and styles
	theme  *theme.Theme
	styles *Styles
	keys   keyMap
	help   help.Model

	// Timetable state
	entries   []*course.Entry
	week      int
	result    grid.Result
	layoutErr error
	colors    grid.ColorAssignment
	cursor    Position
	selected  string // ID of the selected course
	loading   bool

	mode   Mode
	search textinput.Model
	query  string // applied search filter

	statusMsg   string
	statusIsErr bool

	// Terminal dimensions
	width  int
	height int

	// For testing - allows injecting current time
	nowFunc func() time.Time
}

// New creates a new TUI model.
func New(repo course.Repository, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	t := opts.Theme
	if t == nil {
		t, _ = theme.Load("mocha")
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = occurrence.New(time.Now(), 0)
	}
	gridOpts := opts.Grid
	if gridOpts.Columns == 0 {
		gridOpts = grid.DefaultOptions()
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "title, location or instructor"
	search.CharLimit = 64

	m := Model{
		repo:     repo,
		resolver: resolver,
		engine:   grid.NewEngine(gridOpts),
		log:      log,
		theme:    t,
		styles:   NewStyles(t),
		keys:     defaultKeyMap(),
		help:     help.New(),
		colors:   grid.NewColorAssignment(),
		loading:  true,
		search:   search,
		nowFunc:  resolver.Now,
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	m.help.Styles.ShortKey = m.styles.StatusStyle
	m.help.Styles.FullKey = m.styles.StatusStyle
	m.help.Styles.ShortDesc = m.styles.HelpStyle
	m.help.Styles.FullDesc = m.styles.HelpStyle

	now := m.nowFunc()
	m.week = m.currentWeek(now)
	m.cursor = Position{Day: course.DayOf(now), Slot: 1}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return commands.LoadCourses(m.repo)
}

// Run starts the TUI application.
func Run(repo course.Repository, opts Options) error {
	p := tea.NewProgram(New(repo, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// currentWeek is the term week containing now, clamped to the term.
func (m Model) currentWeek(now time.Time) int {
	return min(m.resolver.CurrentWeek(now), m.resolver.TotalWeeks)
}

// visibleEntries returns the loaded entries matching the search filter.
func (m Model) visibleEntries() []*course.Entry {
	if m.query == "" {
		return m.entries
	}
	var out []*course.Entry
	for _, e := range m.entries {
		if e.Matches(m.query) {
			out = append(out, e)
		}
	}
	return out
}

// gridViewport is the area left for the grid after the title and footer.
func (m Model) gridViewport() grid.Viewport {
	return grid.Viewport{Width: m.width, Height: m.height - titleHeight - footerHeight}
}

// relayout recomputes the grid for the current week, size and filter.
func (m *Model) relayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	res, err := m.engine.Layout(grid.Request{
		Entries:     m.visibleEntries(),
		CurrentWeek: m.week,
		TotalWeeks:  m.resolver.TotalWeeks,
		Viewport:    m.gridViewport(),
	}, m.colors)
	m.layoutErr = err
	if err != nil {
		m.result = grid.Result{}
		return
	}
	m.result = res
	m.colors = res.Colors
	for _, sk := range res.Skipped {
		m.log.Debug("course left out of grid",
			zap.String("id", sk.Entry.ID),
			zap.String("title", sk.Entry.Title),
			zap.Error(sk.Err))
	}
	m.selectAtCursor()
}

// placedAt returns the index of the first placed entry covering pos, or -1.
func (m Model) placedAt(pos Position) int {
	for i, p := range m.result.Placed {
		if p.Entry.DayOfWeek == pos.Day && p.Slots.Contains(pos.Slot) {
			return i
		}
	}
	return -1
}

// selectAtCursor selects the course under the cursor, if any.
func (m *Model) selectAtCursor() {
	m.selected = ""
	if i := m.placedAt(m.cursor); i >= 0 {
		m.selected = m.result.Placed[i].Entry.ID
	}
}

// selectedIndex returns the index of the selected course in the current
// layout, or -1.
func (m Model) selectedIndex() int {
	if m.selected == "" {
		return -1
	}
	for i, p := range m.result.Placed {
		if p.Entry.ID == m.selected {
			return i
		}
	}
	return -1
}

// SelectedCourse returns the selected course, or nil.
func (m Model) SelectedCourse() *course.Entry {
	if i := m.selectedIndex(); i >= 0 {
		return m.result.Placed[i].Entry
	}
	return nil
}

// Week returns the displayed term week.
func (m Model) Week() int {
	return m.week
}

// Cursor returns the cursor cell.
func (m Model) Cursor() Position {
	return m.cursor
}

// conflicted returns the placed indices involved in an overlap.
func (m Model) conflicted() map[int]bool {
	out := make(map[int]bool, 2*len(m.result.Conflicts))
	for _, c := range m.result.Conflicts {
		out[c.First] = true
		out[c.Second] = true
	}
	return out
}

// isPast reports whether the meeting of e in the displayed week has ended.
func (m Model) isPast(e *course.Entry, now time.Time) bool {
	occ, err := m.resolver.Project(e, m.week)
	return err == nil && occ.End.Before(now)
}
