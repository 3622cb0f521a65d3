package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/grid"
	"github.com/javiermolinar/coursetable/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.log.Debug("key press", zap.String("key", msg.String()), zap.Stringer("mode", m.mode))
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.relayout()
		return m, nil

	case commands.CoursesLoadedMsg:
		m.entries = msg.Entries
		m.loading = false
		m.relayout()
		return m, nil

	case commands.ReminderToggledMsg:
		state := "off"
		if msg.Enabled {
			state = "on"
		}
		expire := m.setStatus(fmt.Sprintf("Reminder %s: %s", state, msg.Title), false)
		return m, tea.Batch(commands.LoadCourses(m.repo), expire)

	case commands.StatusMsgCmd:
		expire := m.setStatus(msg.Msg, false)
		return m, expire

	case commands.ErrMsg:
		m.loading = false
		m.log.Debug("command failed", zap.Error(msg.Err))
		expire := m.setStatus(msg.Err.Error(), true)
		return m, expire

	case commands.ClearStatusMsg:
		m.statusMsg = ""
		m.statusIsErr = false
		return m, nil
	}

	return m, nil
}

// setStatus shows a footer message and schedules its removal.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusMsg = text
	m.statusIsErr = isErr
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, k.Right):
		m.moveCursor(1, 0)
	case key.Matches(msg, k.Up):
		m.moveCursor(0, -1)
	case key.Matches(msg, k.Down):
		m.moveCursor(0, 1)
	case key.Matches(msg, k.PrevWeek):
		m.setWeek(m.week - 1)
	case key.Matches(msg, k.NextWeek):
		m.setWeek(m.week + 1)
	case key.Matches(msg, k.Today):
		now := m.nowFunc()
		m.cursor.Day = course.DayOf(now)
		m.setWeek(m.currentWeek(now))
	case key.Matches(msg, k.Detail):
		if m.SelectedCourse() != nil {
			m.mode = ModeDetail
		}
	case key.Matches(msg, k.Reminder):
		if e := m.SelectedCourse(); e != nil {
			return m, commands.ToggleReminder(m.repo, e)
		}
	case key.Matches(msg, k.Copy):
		if e := m.SelectedCourse(); e != nil {
			return m, commands.CopyText(m.describe(e), "course")
		}
	case key.Matches(msg, k.Search):
		m.mode = ModeSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, k.Clear):
		if m.query != "" {
			m.query = ""
			m.relayout()
		}
	case key.Matches(msg, k.Reload):
		m.loading = true
		return m, commands.LoadCourses(m.repo)
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleSearchKey filters the grid as the query is typed.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = ModeNormal
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = ModeNormal
		m.search.Blur()
		m.search.SetValue("")
		m.query = ""
		m.relayout()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := strings.TrimSpace(m.search.Value()); q != m.query {
		m.query = q
		m.relayout()
	}
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Reminder):
		if e := m.SelectedCourse(); e != nil {
			return m, commands.ToggleReminder(m.repo, e)
		}
	case key.Matches(msg, m.keys.Copy):
		if e := m.SelectedCourse(); e != nil {
			return m, commands.CopyText(m.describe(e), "course")
		}
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case msg.String() == "esc", msg.String() == "enter", msg.String() == "q":
		m.mode = ModeNormal
	}
	return m, nil
}

// handleMouseMsg selects the course under a click and scrolls weeks with the
// wheel.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeSearch {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.setWeek(m.week - 1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.setWeek(m.week + 1)
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	m.mode = ModeNormal
	m.clickAt(grid.Point{X: msg.X, Y: msg.Y - titleHeight})
	return m, nil
}

// clickAt moves the cursor to the cell under the grid point p and selects
// the course there. Cells are half-open so a click on a block's edge picks
// the block the cell belongs to, not its neighbor.
func (m *Model) clickAt(p grid.Point) {
	day, slot, ok := m.result.Geometry.CellAt(p)
	if !ok {
		return
	}
	m.cursor = Position{Day: day, Slot: slot}
	m.selectAtCursor()
	if m.selected != "" {
		m.log.Debug("course clicked", zap.String("id", m.selected), zap.Int("x", p.X), zap.Int("y", p.Y))
	}
}

// moveCursor moves the cursor by whole days or periods. Moving vertically
// out of a course skips its remaining periods.
func (m *Model) moveCursor(dDay, dSlot int) {
	geo := m.result.Geometry
	days, rows := geo.Columns, geo.Rows
	if days == 0 {
		days, rows = m.engine.Options().Columns, m.engine.Options().Rows
	}

	m.cursor.Day = min(max(m.cursor.Day+dDay, 1), days)
	if dSlot != 0 {
		next := m.cursor.Slot + dSlot
		if i := m.placedAt(m.cursor); i >= 0 {
			slots := m.result.Placed[i].Slots
			if dSlot > 0 {
				next = slots.End + 1
			} else {
				next = slots.Start - 1
			}
		}
		m.cursor.Slot = min(max(next, 1), rows)
	}
	m.selectAtCursor()
}

// setWeek shows week, clamped to the term.
func (m *Model) setWeek(week int) {
	week = min(max(week, 1), m.resolver.TotalWeeks)
	if week == m.week {
		return
	}
	m.week = week
	m.relayout()
}

// describe formats a course for the clipboard.
func (m Model) describe(e *course.Entry) string {
	parts := []string{e.Title, course.DayName(e.DayOfWeek)}
	if slots, err := e.Slots(); err == nil {
		parts = append(parts, slots.Label())
	} else {
		parts = append(parts, e.SlotCode)
	}
	if e.Location != "" {
		parts = append(parts, e.Location)
	}
	if e.Instructor != "" {
		parts = append(parts, e.Instructor)
	}
	parts = append(parts, e.Weeks.String())
	return strings.Join(parts, " ")
}
