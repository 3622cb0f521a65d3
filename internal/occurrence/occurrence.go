// Package occurrence resolves recurring course entries into concrete
// calendar times within a term.
package occurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/dateutil"
	"github.com/javiermolinar/coursetable/internal/timeslot"
)

// ErrUnboundedSearch is returned when no active week is found within the
// term-length search cap.
var ErrUnboundedSearch = errors.New("no upcoming occurrence within the term")

// Occurrence is one concrete meeting of an entry.
type Occurrence struct {
	Entry *course.Entry
	Week  int
	Start time.Time
	End   time.Time
}

// Resolver converts (week, day, slot) into calendar times relative to a term
// anchor. It holds no mutable state.
type Resolver struct {
	// Anchor is the Monday of week 1. Its location is used for all results.
	Anchor     time.Time
	TotalWeeks int
	// Now is injectable for testing.
	Now func() time.Time
}

// New creates a Resolver. A non-positive totalWeeks falls back to
// course.DefaultTotalWeeks.
func New(anchor time.Time, totalWeeks int) *Resolver {
	if totalWeeks <= 0 {
		totalWeeks = course.DefaultTotalWeeks
	}
	return &Resolver{
		Anchor:     dateutil.TruncateToDay(anchor),
		TotalWeeks: totalWeeks,
		Now:        time.Now,
	}
}

// CurrentWeek returns the term week containing now, clamped to at least 1.
func (r *Resolver) CurrentWeek(now time.Time) int {
	return max(1, dateutil.TermWeek(r.Anchor, now))
}

// decodeEntry validates the entry's day and decodes its slots.
func decodeEntry(e *course.Entry) (slots timeslot.Range, err error) {
	if !course.ValidDay(e.DayOfWeek) {
		return timeslot.Range{}, fmt.Errorf("%w: got %d", course.ErrInvalidDay, e.DayOfWeek)
	}
	return e.Slots()
}

// at builds the start and end of the entry's meeting in the given week.
func (r *Resolver) at(e *course.Entry, slots timeslot.Range, week int) (start, end time.Time) {
	date := dateutil.DateOf(r.Anchor, week, e.DayOfWeek)
	sh, sm, _ := timeslot.StartOf(slots.Start)
	eh, em, _ := timeslot.EndOf(slots.End)
	loc := r.Anchor.Location()
	start = time.Date(date.Year(), date.Month(), date.Day(), sh, sm, 0, 0, loc)
	end = time.Date(date.Year(), date.Month(), date.Day(), eh, em, 0, 0, loc)
	return start, end
}

// NextFrom returns the first meeting at or after now, starting the search in
// week. Weeks in which the entry's pattern is inactive are skipped. The
// search advances at most TotalWeeks times before giving up with
// ErrUnboundedSearch.
func (r *Resolver) NextFrom(e *course.Entry, week int, now time.Time) (Occurrence, error) {
	slots, err := decodeEntry(e)
	if err != nil {
		return Occurrence{}, err
	}
	if week < 1 {
		week = 1
	}

	for advances := 0; advances <= r.TotalWeeks; advances++ {
		w := week + advances
		start, end := r.at(e, slots, w)
		if start.Before(now) || !e.IsActiveInWeek(w, r.TotalWeeks) {
			continue
		}
		return Occurrence{Entry: e, Week: w, Start: start, End: end}, nil
	}
	return Occurrence{}, fmt.Errorf("%w: %q after week %d", ErrUnboundedSearch, e.Title, week)
}

// Next returns the first meeting at or after now, searching from the term
// week that contains now.
func (r *Resolver) Next(e *course.Entry, now time.Time) (Occurrence, error) {
	return r.NextFrom(e, r.CurrentWeek(now), now)
}

// NextNow is Next evaluated at r.Now().
func (r *Resolver) NextNow(e *course.Entry) (Occurrence, error) {
	return r.Next(e, r.Now())
}

// InWeek returns the meeting of e in the given week, or false when the
// entry does not meet that week or cannot be decoded.
func (r *Resolver) InWeek(e *course.Entry, week int) (Occurrence, bool) {
	if !e.IsActiveInWeek(week, r.TotalWeeks) {
		return Occurrence{}, false
	}
	occ, err := r.Project(e, week)
	return occ, err == nil
}

// Project returns where e would meet in week, ignoring its week pattern.
func (r *Resolver) Project(e *course.Entry, week int) (Occurrence, error) {
	slots, err := decodeEntry(e)
	if err != nil {
		return Occurrence{}, err
	}
	start, end := r.at(e, slots, week)
	return Occurrence{Entry: e, Week: week, Start: start, End: end}, nil
}
