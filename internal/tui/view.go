package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/dateutil"
	"github.com/javiermolinar/coursetable/internal/grid"
	"github.com/javiermolinar/coursetable/internal/timeslot"
)

const ellipsis = "…"

// View renders the model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	body := m.renderBody()
	if m.mode == ModeDetail {
		if e := m.SelectedCourse(); e != nil {
			body = overlay(body, m.renderDetail(e), m.width, m.gridViewport().Height)
		}
	}

	return strings.Join([]string{m.renderTitle(), body, m.renderFooter()}, "\n")
}

func (m Model) renderTitle() string {
	monday := dateutil.WeekMonday(m.resolver.Anchor, m.week)
	sunday := monday.AddDate(0, 0, course.DaysPerWeek-1)

	title := m.styles.TitleStyle.Render("课程表") + "  " +
		m.styles.WeekStyle.Render(fmt.Sprintf("第%d周", m.week)) + " " +
		m.styles.DateRangeStyle.Render(fmt.Sprintf("/ %d  %s - %s",
			m.resolver.TotalWeeks, monday.Format("01/02"), sunday.Format("01/02")))
	if m.query != "" {
		title += m.styles.DateRangeStyle.Render("  filter: " + m.query)
	}
	if m.loading {
		title += m.styles.DateRangeStyle.Render("  loading...")
	}
	return ansi.Truncate(title, m.width, ellipsis)
}

// renderBody renders the grid padded to the viewport height.
func (m Model) renderBody() string {
	vp := m.gridViewport()
	var lines []string
	if m.layoutErr != nil {
		lines = append(lines, m.styles.ErrorStyle.Render(
			ansi.Truncate("Terminal too small for the timetable", m.width, ellipsis)))
	} else {
		lines = m.renderGrid(m.nowFunc())
	}
	for len(lines) < vp.Height {
		lines = append(lines, "")
	}
	if vp.Height > 0 && len(lines) > vp.Height {
		lines = lines[:vp.Height]
	}
	return strings.Join(lines, "\n")
}

// renderGrid renders the header row and one line per terminal row of the
// grid geometry.
func (m Model) renderGrid(now time.Time) []string {
	geo := m.result.Geometry
	dates := dateutil.WeekDates(m.resolver.Anchor, m.week)
	today := 0
	if m.week == m.currentWeek(now) {
		today = course.DayOf(now)
	}

	owners := m.cellOwners(geo)
	conflicts := m.conflicted()
	selected := m.selectedIndex()
	past := make([]bool, len(m.result.Placed))
	for i, p := range m.result.Placed {
		past[i] = m.isPast(p.Entry, now)
	}
	blocks := make([][]string, len(m.result.Placed))
	for i, p := range m.result.Placed {
		blocks[i] = blockLines(p, conflicts[i])
	}

	lines := make([]string, 0, geo.Height())
	for y := 0; y < geo.Height(); y++ {
		var b strings.Builder
		if y < geo.HeaderHeight {
			b.WriteString(m.renderHeaderLabel(geo, y))
			for d := 1; d <= geo.Columns; d++ {
				style := m.styles.DayHeaderStyle
				if d == today {
					style = m.styles.DayHeaderTodayStyle
				}
				b.WriteString(cell(style, headerLine(d, dates[d-1], geo.HeaderHeight, y), geo.DayWidth))
			}
			lines = append(lines, b.String())
			continue
		}

		slot := (y-geo.HeaderHeight)/geo.RowHeight + 1
		sub := (y - geo.HeaderHeight) % geo.RowHeight
		b.WriteString(m.renderSlotLabel(geo, slot, sub, now, today))

		for d := 1; d <= geo.Columns; d++ {
			i := owners[Position{Day: d, Slot: slot}]
			if i < 0 {
				style := m.styles.EmptyCellStyle
				switch {
				case m.cursor == (Position{Day: d, Slot: slot}):
					style = m.styles.CursorCellStyle
				case d == today:
					style = m.styles.TodayCellStyle
				}
				b.WriteString(cell(style, "", geo.DayWidth))
				continue
			}

			p := m.result.Placed[i]
			k := (slot-p.Slots.Start)*geo.RowHeight + sub
			text := ""
			if k < len(blocks[i]) {
				text = blocks[i][k]
			}
			var style lipgloss.Style
			if conflicts[i] && i != selected {
				style = m.styles.ConflictStyle
			} else {
				style = m.styles.CourseStyle(p.ColorIndex, i == selected, past[i])
			}
			b.WriteString(cell(style, text, geo.DayWidth))
		}
		lines = append(lines, b.String())
	}
	return lines
}

// cellOwners maps each covered cell to the first placed entry covering it.
// Uncovered cells map to -1.
func (m Model) cellOwners(geo grid.Geometry) map[Position]int {
	owners := make(map[Position]int, geo.Columns*geo.Rows)
	for d := 1; d <= geo.Columns; d++ {
		for s := 1; s <= geo.Rows; s++ {
			owners[Position{Day: d, Slot: s}] = -1
		}
	}
	for i, p := range m.result.Placed {
		for s := p.Slots.Start; s <= p.Slots.End; s++ {
			pos := Position{Day: p.Entry.DayOfWeek, Slot: s}
			if owners[pos] < 0 {
				owners[pos] = i
			}
		}
	}
	return owners
}

func (m Model) renderHeaderLabel(geo grid.Geometry, y int) string {
	text := ""
	if y == 0 {
		text = fmt.Sprintf("第%d周", m.week)
	}
	return cell(m.styles.LabelStyle, text, geo.LabelWidth)
}

func (m Model) renderSlotLabel(geo grid.Geometry, slot, sub int, now time.Time, today int) string {
	period := timeslot.Periods[slot]
	var text string
	switch {
	case geo.RowHeight == 1:
		text = fmt.Sprintf("%2d %s-%s", slot, period.Start, period.End)
	case sub == 0:
		text = fmt.Sprintf("%2d  %s", slot, period.Start)
	case sub == 1:
		text = "    " + period.End
	}

	style := m.styles.LabelStyle
	if today > 0 && inPeriod(now, slot) {
		style = m.styles.LabelCurrentStyle
	}
	return cell(style, text, geo.LabelWidth)
}

// inPeriod reports whether now's wall clock falls within slot.
func inPeriod(now time.Time, slot int) bool {
	sh, sm, err := timeslot.StartOf(slot)
	if err != nil {
		return false
	}
	eh, em, err := timeslot.EndOf(slot)
	if err != nil {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	return minute >= sh*60+sm && minute < eh*60+em
}

// headerLine returns line y of a day column header.
func headerLine(day int, date time.Time, height, y int) string {
	name := course.DayName(day)
	if height == 1 {
		return name + " " + date.Format("01/02")
	}
	switch y {
	case 0:
		return name
	case 1:
		return date.Format("01/02")
	}
	return ""
}

// blockLines returns the text lines drawn inside a course block.
func blockLines(p grid.PlacedEntry, conflict bool) []string {
	title := p.Entry.Title
	if conflict {
		title = "! " + title
	}
	lines := []string{title}
	if p.Entry.Location != "" {
		lines = append(lines, "@"+p.Entry.Location)
	}
	lines = append(lines, p.Slots.String())
	if p.Entry.Instructor != "" {
		lines = append(lines, p.Entry.Instructor)
	}
	return lines
}

// cell renders text truncated and padded to exactly width columns.
func cell(style lipgloss.Style, text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = ansi.Truncate(text, width, ellipsis)
	if pad := width - ansi.StringWidth(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return style.Render(text)
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.mode == ModeSearch:
		status = m.styles.SearchStyle.Render(m.search.View())
	case m.statusMsg != "" && m.statusIsErr:
		status = m.styles.ErrorStyle.Render("error: " + m.statusMsg)
	case m.statusMsg != "":
		status = m.styles.StatusStyle.Render(m.statusMsg)
	default:
		status = m.styles.HelpStyle.Render(m.summary())
	}

	helpView := m.help.View(m.keys)
	if m.help.ShowAll {
		// Full help spans several lines; keep the footer to one.
		helpView = strings.ReplaceAll(helpView, "\n", "  ")
	}
	return ansi.Truncate(status, m.width, ellipsis) + "\n" + ansi.Truncate(helpView, m.width, ellipsis)
}

// summary describes the displayed week for the footer.
func (m Model) summary() string {
	placed := len(m.result.Placed)
	parts := []string{fmt.Sprintf("%d courses this week", placed)}
	if n := len(m.result.Conflicts); n > 0 {
		parts = append(parts, fmt.Sprintf("%d conflicts", n))
	}
	if n := len(m.result.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d not shown", n))
	}
	if e := m.SelectedCourse(); e != nil {
		parts = append(parts, e.Title)
	}
	return strings.Join(parts, " · ")
}

// renderDetail renders the detail box of e.
func (m Model) renderDetail(e *course.Entry) string {
	s := m.styles
	slotText := e.SlotCode
	if slots, err := e.Slots(); err == nil {
		slotText = slots.Label()
	}
	reminder := "off"
	if e.ReminderEnabled {
		reminder = "on"
	}

	rows := [][2]string{
		{"时间", course.DayName(e.DayOfWeek) + " " + slotText},
		{"周次", e.Weeks.String()},
		{"地点", e.Location},
		{"教师", e.Instructor},
		{"性质", e.Property},
		{"联系", e.Contact},
		{"备注", e.Remarks},
		{"提醒", reminder},
	}
	if occ, err := m.resolver.NextFrom(e, m.week, m.nowFunc()); err == nil {
		rows = append(rows, [2]string{"下次", occ.Start.Format("01/02 15:04") + fmt.Sprintf(" (第%d周)", occ.Week)})
	}

	lines := []string{s.DetailTitleStyle.Render(e.Title)}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		lines = append(lines, s.DetailKeyStyle.Render(r[0]+"  ")+s.DetailValueStyle.Render(r[1]))
	}
	lines = append(lines, "", s.DetailKeyStyle.Render("r reminder · y copy · esc close"))

	maxWidth := max(m.width-4, 10)
	return s.DetailStyle.MaxWidth(maxWidth).Render(strings.Join(lines, "\n"))
}
