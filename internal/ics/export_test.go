package ics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/occurrence"
)

var anchor = time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local)

func newEntry(t *testing.T, p course.Params) *course.Entry {
	t.Helper()
	e, err := course.New(p, 18)
	if err != nil {
		t.Fatalf("course.New(%+v): %v", p, err)
	}
	return e
}

func newExporter() *Exporter {
	x := NewExporter(occurrence.New(anchor, 18), 15*time.Minute, nil)
	x.Now = func() time.Time { return time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC) }
	return x
}

func export(t *testing.T, entries []*course.Entry) (*ical.Calendar, string, []occurrence.Skipped) {
	t.Helper()
	var buf bytes.Buffer
	skipped, err := newExporter().Write(&buf, entries)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	raw := buf.String()
	cal, err := ical.ParseCalendar(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("exported calendar does not parse: %v", err)
	}
	return cal, raw, skipped
}

func property(ev *ical.VEvent, p ical.ComponentProperty) string {
	prop := ev.GetProperty(p)
	if prop == nil {
		return ""
	}
	return prop.Value
}

func TestWrite_EventPerEntry(t *testing.T) {
	odd := newEntry(t, course.Params{Title: "高等数学", Location: "教一-201", Instructor: "张老师", DayOfWeek: 1, SlotCode: "1-2节", Weeks: course.OddWeeks()})
	all := newEntry(t, course.Params{Title: "体育", DayOfWeek: 3, SlotCode: "7-8节"})

	cal, _, skipped := export(t, []*course.Entry{odd, all})
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped entries: %+v", skipped)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	byUID := make(map[string]*ical.VEvent, len(events))
	for _, ev := range events {
		byUID[ev.Id()] = ev
	}

	ev, ok := byUID[odd.ID+"@coursetable"]
	if !ok {
		t.Fatalf("no event for %s", odd.Title)
	}
	if got := property(ev, ical.ComponentPropertySummary); got != "高等数学" {
		t.Errorf("SUMMARY = %q", got)
	}
	if got := property(ev, ical.ComponentPropertyLocation); got != "教一-201" {
		t.Errorf("LOCATION = %q", got)
	}
	if got := property(ev, ical.ComponentPropertyDtStart); got != "20250901T080000" {
		t.Errorf("DTSTART = %q, want week 1 Monday 08:00", got)
	}
	if got := property(ev, ical.ComponentPropertyDtEnd); got != "20250901T093500" {
		t.Errorf("DTEND = %q, want 09:35", got)
	}
	rule := property(ev, ical.ComponentPropertyRrule)
	for _, part := range []string{"FREQ=WEEKLY", "INTERVAL=2", "COUNT=9"} {
		if !strings.Contains(rule, part) {
			t.Errorf("RRULE %q missing %s", rule, part)
		}
	}

	ev = byUID[all.ID+"@coursetable"]
	if got := property(ev, ical.ComponentPropertyDtStart); got != "20250903T143500" {
		t.Errorf("DTSTART = %q, want week 1 Wednesday 14:35", got)
	}
	if rule := property(ev, ical.ComponentPropertyRrule); !strings.Contains(rule, "COUNT=18") {
		t.Errorf("RRULE %q should cover all 18 weeks", rule)
	}
}

func TestWrite_ExplicitWeeksExcludeGaps(t *testing.T) {
	e := newEntry(t, course.Params{Title: "形势与政策", DayOfWeek: 2, SlotCode: "1-2", Weeks: course.ExplicitWeeks(2, 3, 10)})

	cal, _, _ := export(t, []*course.Entry{e})
	ev := cal.Events()[0]

	if got := property(ev, ical.ComponentPropertyDtStart); got != "20250909T080000" {
		t.Errorf("DTSTART = %q, want week 2 Tuesday", got)
	}
	if rule := property(ev, ical.ComponentPropertyRrule); !strings.Contains(rule, "COUNT=9") {
		t.Errorf("RRULE %q should span weeks 2-10", rule)
	}

	ex := strings.Split(property(ev, ical.ComponentPropertyExdate), ",")
	want := []string{"20250923T080000", "20250930T080000", "20251007T080000", "20251014T080000", "20251021T080000", "20251028T080000"}
	if len(ex) != len(want) {
		t.Fatalf("EXDATE = %v, want %v", ex, want)
	}
	for i := range want {
		if ex[i] != want[i] {
			t.Errorf("EXDATE[%d] = %s, want %s", i, ex[i], want[i])
		}
	}
}

func TestWrite_ReminderAlarm(t *testing.T) {
	on := newEntry(t, course.Params{Title: "数据结构", DayOfWeek: 3, SlotCode: "1-2", Reminder: true})
	off := newEntry(t, course.Params{Title: "体育", DayOfWeek: 5, SlotCode: "3-4"})

	_, raw, _ := export(t, []*course.Entry{on, off})

	if n := strings.Count(raw, "BEGIN:VALARM"); n != 1 {
		t.Errorf("got %d alarms, want 1", n)
	}
	if !strings.Contains(raw, "TRIGGER:-PT15M") {
		t.Error("alarm should trigger 15 minutes before")
	}
	if !strings.Contains(raw, "ACTION:DISPLAY") {
		t.Error("alarm should be a display alarm")
	}
}

func TestCalendar_SkipsBadEntries(t *testing.T) {
	good := newEntry(t, course.Params{Title: "操作系统", DayOfWeek: 4, SlotCode: "5-6"})
	badSlot := &course.Entry{ID: "b1", Title: "坏节次", DayOfWeek: 1, SlotCode: "13"}
	badDay := &course.Entry{ID: "b2", Title: "坏星期", DayOfWeek: 9, SlotCode: "1"}
	never := &course.Entry{ID: "b3", Title: "无周次", DayOfWeek: 1, SlotCode: "1", Weeks: course.WeekPattern{Kind: course.WeeksExplicit}}

	cal, skipped := newExporter().Calendar([]*course.Entry{good, badSlot, badDay, never})
	if n := len(cal.Events()); n != 1 {
		t.Errorf("got %d events, want 1", n)
	}
	if len(skipped) != 3 {
		t.Fatalf("got %d skipped, want 3", len(skipped))
	}
	if !errors.Is(skipped[1].Err, course.ErrInvalidDay) {
		t.Errorf("bad day error = %v", skipped[1].Err)
	}
	if !errors.Is(skipped[2].Err, occurrence.ErrUnboundedSearch) {
		t.Errorf("empty pattern error = %v", skipped[2].Err)
	}
}

func TestCalendar_Header(t *testing.T) {
	_, raw, _ := export(t, nil)
	for _, want := range []string{"PRODID:" + ProductID, "METHOD:PUBLISH", "X-WR-CALNAME:课程表"} {
		if !strings.Contains(raw, want) {
			t.Errorf("calendar missing %q", want)
		}
	}
}
