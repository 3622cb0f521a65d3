package occurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/coursetable/internal/course"
)

// Rule returns the weekly recurrence covering every active meeting of e.
// Odd and even patterns use a two-week interval; explicit patterns span
// their first to last week and rely on the caller filtering (or excluding)
// the gaps. It returns nil when the entry never meets during the term.
func (r *Resolver) Rule(e *course.Entry) (*rrule.RRule, error) {
	slots, err := decodeEntry(e)
	if err != nil {
		return nil, err
	}

	active := e.Weeks.ActiveWeeks(r.TotalWeeks)
	if len(active) == 0 {
		return nil, nil
	}

	first, _ := r.at(e, slots, active[0])
	opt := rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: first,
	}

	switch e.Weeks.Kind {
	case course.WeeksOdd, course.WeeksEven:
		opt.Interval = 2
		opt.Count = len(active)
	case course.WeeksExplicit:
		opt.Interval = 1
		opt.Count = active[len(active)-1] - active[0] + 1
	default:
		opt.Interval = 1
		opt.Count = len(active)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("building recurrence for %q: %w", e.Title, err)
	}
	return rule, nil
}

// Expand returns every meeting of e whose start lies in [from, to], in
// chronological order.
func (r *Resolver) Expand(e *course.Entry, from, to time.Time) ([]Occurrence, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("expand: range end %s before start %s", to, from)
	}
	rule, err := r.Rule(e)
	if err != nil || rule == nil {
		return nil, err
	}

	var out []Occurrence
	for _, start := range rule.Between(from, to, true) {
		week := r.CurrentWeek(start)
		occ, ok := r.InWeek(e, week)
		if !ok {
			continue
		}
		out = append(out, occ)
	}
	return out, nil
}

// ExpandTerm returns every meeting of e during the term.
func (r *Resolver) ExpandTerm(e *course.Entry) ([]Occurrence, error) {
	from := r.Anchor
	to := r.Anchor.AddDate(0, 0, r.TotalWeeks*7)
	return r.Expand(e, from, to)
}
