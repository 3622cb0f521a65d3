package course

import "github.com/javiermolinar/coursetable/internal/timeslot"

// Overlaps reports whether two (day, slots) pairs collide. Ranges are closed:
// [1,2] and [2,3] overlap, [1,2] and [3,4] do not.
func Overlaps(dayA int, a timeslot.Range, dayB int, b timeslot.Range) bool {
	if dayA != dayB {
		return false
	}
	return a.Start <= b.End && a.End >= b.Start
}

// ConflictsWith reports whether two entries share a day, a slot and a week.
// week selects a single term week; 0 means any week of the term.
// Entries whose slot codes do not decode never conflict.
func (e *Entry) ConflictsWith(other *Entry, week, totalWeeks int) bool {
	if other == nil || (other.ID != "" && other.ID == e.ID) {
		return false
	}
	a, err := e.Slots()
	if err != nil {
		return false
	}
	b, err := other.Slots()
	if err != nil {
		return false
	}
	if !Overlaps(e.DayOfWeek, a, other.DayOfWeek, b) {
		return false
	}
	if week > 0 {
		return e.IsActiveInWeek(week, totalWeeks) && other.IsActiveInWeek(week, totalWeeks)
	}
	return SharesWeek(e.Weeks, other.Weeks, totalWeeks)
}

// FindConflicts returns the existing entries that collide with candidate,
// in input order.
func FindConflicts(candidate *Entry, existing []*Entry, week, totalWeeks int) []*Entry {
	var out []*Entry
	for _, other := range existing {
		if candidate.ConflictsWith(other, week, totalWeeks) {
			out = append(out, other)
		}
	}
	return out
}
