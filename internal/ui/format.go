package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/occurrence"
)

// shortIDLen is how many ID characters list output shows. Commands accept
// any unique prefix.
const shortIDLen = 8

// titleWidth is the display width of the title column in course rows.
const titleWidth = 20

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// slotText returns the period label of e, or its raw code marked invalid.
func slotText(e *course.Entry) string {
	slots, err := e.Slots()
	if err != nil {
		return formatWarn(e.SlotCode + " (invalid)")
	}
	return slots.Label()
}

// reminderSymbol returns the reminder indicator of a course.
func reminderSymbol(e *course.Entry) string {
	if e.ReminderEnabled {
		return formatReminder("●")
	}
	return formatMuted("○")
}

// padRight pads s with spaces to width display columns, truncating when longer.
func padRight(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// printCourseRow prints a single course with consistent formatting.
func printCourseRow(w io.Writer, e *course.Entry) {
	line := fmt.Sprintf("  %s %s  %s  %s  %s",
		reminderSymbol(e),
		formatMuted(shortID(e.ID)),
		slotText(e),
		formatTitle(padRight(e.Title, titleWidth)),
		formatMuted(e.Weeks.String()),
	)
	if e.Location != "" {
		line += "  @" + e.Location
	}
	fmt.Fprintln(w, line)
}

// printCoursesByDay prints entries grouped under day headings. Entries must
// be ordered by day.
func printCoursesByDay(w io.Writer, entries []*course.Entry) {
	day := 0
	for _, e := range entries {
		if e.DayOfWeek != day {
			if day != 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, formatHeader(fmt.Sprintf("=== %s ===", course.DayName(e.DayOfWeek))))
			day = e.DayOfWeek
		}
		printCourseRow(w, e)
	}
}

// printCourseDetail prints every field of e and, when known, its next meeting.
func printCourseDetail(w io.Writer, e *course.Entry, next *occurrence.Occurrence) {
	fmt.Fprintln(w, formatTitle(e.Title))
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-10s %s\n", label, value)
		}
	}
	row("ID", e.ID)
	row("Time", course.DayName(e.DayOfWeek)+" "+slotText(e))
	row("Weeks", e.Weeks.String())
	row("Location", e.Location)
	row("Instructor", e.Instructor)
	row("Property", e.Property)
	row("Contact", e.Contact)
	row("Remarks", e.Remarks)
	if e.ReminderEnabled {
		row("Reminder", formatReminder("on"))
	} else {
		row("Reminder", "off")
	}
	if next != nil {
		row("Next", fmt.Sprintf("%s 第%d周 %s-%s",
			next.Start.Format("2006-01-02"), next.Week,
			next.Start.Format("15:04"), next.End.Format("15:04")))
	}
}

// errAmbiguousID is returned when an ID prefix matches several courses.
var errAmbiguousID = errors.New("ambiguous course id")

// findCourse looks a course up by full ID or unique ID prefix.
func findCourse(ctx context.Context, repo course.Repository, id string) (*course.Entry, error) {
	e, err := repo.GetCourse(ctx, id)
	if err == nil || !errors.Is(err, course.ErrNotFound) {
		return e, err
	}

	all, listErr := repo.ListCourses(ctx, course.Filter{})
	if listErr != nil {
		return nil, fmt.Errorf("listing courses: %w", listErr)
	}
	var match *course.Entry
	for _, c := range all {
		if !strings.HasPrefix(c.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %q matches %s and %s", errAmbiguousID, id, shortID(match.ID), shortID(c.ID))
		}
		match = c
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}
