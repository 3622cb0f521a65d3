// Package dateutil provides date parsing and term-week arithmetic.
package dateutil

import (
	"errors"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrNotMonday         = errors.New("term start must be a Monday")
)

// DateLayout is the on-disk and CLI date format.
const DateLayout = "2006-01-02"

// ParseDate parses a date string in YYYY-MM-DD format in loc.
// If the string is empty, returns today's date.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if s == "" {
		return TruncateToDay(time.Now().In(loc)), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseTermStart parses the Monday of week 1.
func ParseTermStart(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrInvalidDateFormat
	}
	t, err := ParseDate(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, ErrNotMonday
	}
	return t, nil
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = TruncateToDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes day 7 in ISO week
	}
	monday = t.AddDate(0, 0, -(weekday - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// DaysBetween returns the number of calendar days from a to b, ignoring
// clock time and DST shifts.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// TermWeek returns the 1-based term week containing t. Dates before the
// anchor return values below 1.
func TermWeek(anchor, t time.Time) int {
	days := DaysBetween(anchor, t.In(anchor.Location()))
	if days < 0 {
		// floor(days/7) + 1 with truncating division
		return (days + 1) / 7
	}
	return days/7 + 1
}

// WeekMonday returns the Monday of the given term week.
func WeekMonday(anchor time.Time, week int) time.Time {
	return TruncateToDay(anchor).AddDate(0, 0, (week-1)*7)
}

// DateOf returns the calendar date of day (1 = Monday) in the given term week.
func DateOf(anchor time.Time, week, day int) time.Time {
	return TruncateToDay(anchor).AddDate(0, 0, (week-1)*7+(day-1))
}

// WeekDates returns Monday..Sunday of the given term week.
func WeekDates(anchor time.Time, week int) [7]time.Time {
	var out [7]time.Time
	for i := range out {
		out[i] = DateOf(anchor, week, i+1)
	}
	return out
}
