package occurrence

import (
	"cmp"
	"slices"
	"time"

	"github.com/javiermolinar/coursetable/internal/course"
)

// Reminder is the next meeting of an entry and the time to announce it.
type Reminder struct {
	Occurrence
	RemindAt time.Time
}

// Skipped records an entry that could not be resolved and why.
type Skipped struct {
	Entry *course.Entry
	Err   error
}

// Remind returns the next meeting of e whose reminder time (start minus
// advance) is not before now.
func (r *Resolver) Remind(e *course.Entry, now time.Time, advance time.Duration) (Reminder, error) {
	if advance < 0 {
		advance = 0
	}
	occ, err := r.Next(e, now.Add(advance))
	if err != nil {
		return Reminder{}, err
	}
	return Reminder{Occurrence: occ, RemindAt: occ.Start.Add(-advance)}, nil
}

// Upcoming resolves the next reminder of each entry. Entries that cannot be
// resolved are returned in skipped rather than failing the whole batch.
// Reminders are ordered by reminder time, then title.
func (r *Resolver) Upcoming(entries []*course.Entry, now time.Time, advance time.Duration) (reminders []Reminder, skipped []Skipped) {
	for _, e := range entries {
		rem, err := r.Remind(e, now, advance)
		if err != nil {
			skipped = append(skipped, Skipped{Entry: e, Err: err})
			continue
		}
		reminders = append(reminders, rem)
	}

	slices.SortStableFunc(reminders, func(a, b Reminder) int {
		if c := a.RemindAt.Compare(b.RemindAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Entry.Title, b.Entry.Title)
	})
	return reminders, skipped
}
