package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/coursetable/internal/config"
	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/occurrence"
	"github.com/javiermolinar/coursetable/internal/tui/commands"
)

type fakeRepo struct {
	course.Repository // unimplemented methods panic

	entries  []*course.Entry
	reminder map[string]bool
}

func (f *fakeRepo) ListCourses(ctx context.Context, filter course.Filter) ([]*course.Entry, error) {
	return f.entries, nil
}

func (f *fakeRepo) SetReminder(ctx context.Context, id string, enabled bool) error {
	if f.reminder == nil {
		f.reminder = make(map[string]bool)
	}
	f.reminder[id] = enabled
	return nil
}

var anchor = time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local)

func testEntries() []*course.Entry {
	return []*course.Entry{
		{ID: "math", Title: "高等数学", Location: "教一-201", DayOfWeek: 1, SlotCode: "1-2节", Weeks: course.AllWeeks()},
		{ID: "eng", Title: "大学英语", DayOfWeek: 3, SlotCode: "3-4节", Weeks: course.OddWeeks()},
		{ID: "pe", Title: "体育", Instructor: "王老师", DayOfWeek: 5, SlotCode: "5-6节", Weeks: course.AllWeeks()},
	}
}

// newTestModel returns a model sized 140x29 showing week 2, with "now" at
// Monday 2025-09-08 09:00.
func newTestModel(t *testing.T, entries []*course.Entry) (Model, *fakeRepo) {
	t.Helper()
	r := occurrence.New(anchor, 18)
	r.Now = func() time.Time { return time.Date(2025, 9, 8, 9, 0, 0, 0, time.Local) }

	repo := &fakeRepo{entries: entries}
	m := New(repo, Options{Resolver: r, Grid: config.Default().Grid.Options()})
	m = send(t, m,
		tea.WindowSizeMsg{Width: 140, Height: 29},
		commands.CoursesLoadedMsg{Entries: entries},
	)
	return m, repo
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		next, ok := updated.(Model)
		if !ok {
			t.Fatalf("Update returned %T, want Model", updated)
		}
		m = next
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew_StartsOnCurrentWeek(t *testing.T) {
	m, _ := newTestModel(t, testEntries())

	if m.Week() != 2 {
		t.Errorf("week = %d, want 2", m.Week())
	}
	if m.Cursor() != (Position{Day: 1, Slot: 1}) {
		t.Errorf("cursor = %+v, want Monday slot 1", m.Cursor())
	}
	if m.loading {
		t.Error("model should not be loading after CoursesLoadedMsg")
	}
	if got := len(m.result.Placed); got != 2 {
		t.Fatalf("placed = %d, want 2 (English meets in odd weeks only)", got)
	}
	if e := m.SelectedCourse(); e == nil || e.ID != "math" {
		t.Errorf("selected = %v, want math", e)
	}
}

func TestNew_WeekClampedToTerm(t *testing.T) {
	r := occurrence.New(anchor, 18)
	r.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local) }

	m := New(&fakeRepo{}, Options{Resolver: r})
	if m.Week() != 18 {
		t.Errorf("week = %d, want last term week 18", m.Week())
	}
}

func TestInit_LoadsCourses(t *testing.T) {
	repo := &fakeRepo{entries: testEntries()}
	m := New(repo, Options{Resolver: occurrence.New(anchor, 18)})

	msg := m.Init()()
	loaded, ok := msg.(commands.CoursesLoadedMsg)
	if !ok {
		t.Fatalf("Init produced %T, want CoursesLoadedMsg", msg)
	}
	if len(loaded.Entries) != 3 {
		t.Errorf("loaded %d entries, want 3", len(loaded.Entries))
	}
}

func TestVisibleEntries_Search(t *testing.T) {
	m, _ := newTestModel(t, testEntries())

	m.query = "王老师"
	got := m.visibleEntries()
	if len(got) != 1 || got[0].ID != "pe" {
		t.Errorf("visible = %v, want only pe", got)
	}
}

func TestIsPast(t *testing.T) {
	m, _ := newTestModel(t, testEntries())
	now := m.nowFunc()

	tests := []struct {
		name string
		week int
		id   string
		want bool
	}{
		{"earlier week", 1, "pe", true},
		{"meeting in progress", 2, "math", false},
		{"later this week", 2, "pe", false},
		{"next week", 3, "math", false},
	}
	entries := map[string]*course.Entry{}
	for _, e := range testEntries() {
		entries[e.ID] = e
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.week = tt.week
			if got := m.isPast(entries[tt.id], now); got != tt.want {
				t.Errorf("isPast = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	for mode, want := range map[Mode]string{ModeNormal: "normal", ModeSearch: "search", ModeDetail: "detail"} {
		if got := mode.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", mode, got, want)
		}
	}
}
