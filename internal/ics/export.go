// Package ics exports course entries as an iCalendar feed with one recurring
// event per entry.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/occurrence"
)

// ProductID identifies the generator in exported calendars.
const ProductID = "-//coursetable//Course Timetable//ZH"

// floatingLayout is a local date-time without zone, so weekly events keep
// their wall-clock time across DST changes.
const floatingLayout = "20060102T150405"

// Exporter builds calendars from entries.
type Exporter struct {
	Resolver *occurrence.Resolver
	// Advance adds a display alarm this long before reminder-enabled entries.
	Advance time.Duration
	Name    string
	Now     func() time.Time
	Log     *zap.Logger
}

// NewExporter creates an Exporter.
func NewExporter(r *occurrence.Resolver, advance time.Duration, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{Resolver: r, Advance: advance, Name: "课程表", Now: time.Now, Log: log}
}

// Calendar builds a calendar. Entries that cannot be decoded or never meet
// during the term are returned as skipped.
func (x *Exporter) Calendar(entries []*course.Entry) (*ical.Calendar, []occurrence.Skipped) {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(x.Name)

	stamp := x.Now()
	var skipped []occurrence.Skipped
	for _, e := range entries {
		if err := x.addEvent(cal, e, stamp); err != nil {
			x.Log.Debug("entry not exported", zap.String("title", e.Title), zap.Error(err))
			skipped = append(skipped, occurrence.Skipped{Entry: e, Err: err})
		}
	}
	return cal, skipped
}

// Write serializes the calendar of entries to w.
func (x *Exporter) Write(w io.Writer, entries []*course.Entry) ([]occurrence.Skipped, error) {
	cal, skipped := x.Calendar(entries)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return skipped, fmt.Errorf("writing calendar: %w", err)
	}
	x.Log.Info("calendar exported", zap.Int("events", len(entries)-len(skipped)), zap.Int("skipped", len(skipped)))
	return skipped, nil
}

func (x *Exporter) addEvent(cal *ical.Calendar, e *course.Entry, stamp time.Time) error {
	rule, err := x.Resolver.Rule(e)
	if err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: %q has no week in the term", occurrence.ErrUnboundedSearch, e.Title)
	}

	active := e.Weeks.ActiveWeeks(x.Resolver.TotalWeeks)
	first, _ := x.Resolver.InWeek(e, active[0])

	ev := cal.AddEvent(eventUID(e))
	ev.SetDtStampTime(stamp)
	if !e.CreatedAt.IsZero() {
		ev.SetCreatedTime(e.CreatedAt)
	}
	ev.SetProperty(ical.ComponentPropertyDtStart, first.Start.Format(floatingLayout))
	ev.SetProperty(ical.ComponentPropertyDtEnd, first.End.Format(floatingLayout))
	ev.SetSummary(e.Title)
	if e.Location != "" {
		ev.SetLocation(e.Location)
	}
	if desc := description(e); desc != "" {
		ev.SetDescription(desc)
	}
	ev.AddProperty(ical.ComponentPropertyRrule, rule.OrigOptions.RRuleString())

	if e.Weeks.Kind == course.WeeksExplicit {
		if ex := x.exdates(e, active); ex != "" {
			ev.AddProperty(ical.ComponentPropertyExdate, ex)
		}
	}

	if e.ReminderEnabled && x.Advance > 0 {
		alarm := ev.AddAlarm()
		alarm.AddProperty(ical.ComponentPropertyAction, "DISPLAY")
		alarm.AddProperty(ical.ComponentPropertyDescription, e.Title)
		alarm.AddProperty(ical.ComponentPropertyTrigger, fmt.Sprintf("-PT%dM", int(x.Advance.Minutes())))
	}
	return nil
}

// exdates lists the inactive weeks between the first and last active week,
// which the weekly rule would otherwise include.
func (x *Exporter) exdates(e *course.Entry, active []int) string {
	var out []string
	for w := active[0] + 1; w < active[len(active)-1]; w++ {
		if e.IsActiveInWeek(w, x.Resolver.TotalWeeks) {
			continue
		}
		if occ, err := x.Resolver.Project(e, w); err == nil {
			out = append(out, occ.Start.Format(floatingLayout))
		}
	}
	return strings.Join(out, ",")
}

func eventUID(e *course.Entry) string {
	return e.ID + "@coursetable"
}

func description(e *course.Entry) string {
	var parts []string
	if e.Instructor != "" {
		parts = append(parts, "教师: "+e.Instructor)
	}
	parts = append(parts, "节次: "+e.SlotCode, "周次: "+e.Weeks.String())
	if e.Property != "" {
		parts = append(parts, "性质: "+e.Property)
	}
	if e.Remarks != "" {
		parts = append(parts, "备注: "+e.Remarks)
	}
	return strings.Join(parts, "\n")
}
