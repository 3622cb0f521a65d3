package ui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/db"
	"github.com/javiermolinar/coursetable/internal/occurrence"
)

func TestShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"12345678", "12345678"},
		{"3f2a9c1e-77b0-4d0e-9d8e-1f2a3b4c5d6e", "3f2a9c1e"},
	}
	for _, tt := range tests {
		if got := shortID(tt.id); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"pads ascii", "abc", 5, "abc  "},
		{"pads wide runes by cell width", "高数", 6, "高数  "},
		{"truncates", "abcdefgh", 5, "abcd…"},
		{"exact", "abcde", 5, "abcde"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := padRight(tt.in, tt.width); got != tt.want {
				t.Errorf("padRight(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestSlotText(t *testing.T) {
	DisableColor()
	ok := &course.Entry{SlotCode: "3-4"}
	if got := slotText(ok); got != "3-4节 09:50-11:25" {
		t.Errorf("slotText = %q", got)
	}
	bad := &course.Entry{SlotCode: "9-3"}
	if got := slotText(bad); got != "9-3 (invalid)" {
		t.Errorf("slotText(invalid) = %q", got)
	}
}

func TestPrintCoursesByDay(t *testing.T) {
	DisableColor()
	entries := []*course.Entry{
		{ID: "a", Title: "高等数学", DayOfWeek: 1, SlotCode: "1-2", Weeks: course.AllWeeks(), Location: "教二-101"},
		{ID: "b", Title: "线性代数", DayOfWeek: 1, SlotCode: "5-6", Weeks: course.OddWeeks(), ReminderEnabled: true},
		{ID: "c", Title: "大学英语", DayOfWeek: 3, SlotCode: "3-4", Weeks: course.ExplicitWeeks(1, 3, 5)},
	}

	var buf bytes.Buffer
	printCoursesByDay(&buf, entries)
	out := buf.String()

	if strings.Count(out, "=== 周一 ===") != 1 || strings.Count(out, "=== 周三 ===") != 1 {
		t.Errorf("headings:\n%s", out)
	}
	for _, want := range []string{"○ a", "● b", "@教二-101", "1,3,5"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "线性代数") > strings.Index(out, "=== 周三 ===") {
		t.Errorf("Monday course printed under Wednesday:\n%s", out)
	}
}

func TestPrintCourseDetail(t *testing.T) {
	DisableColor()
	e := &course.Entry{ID: "x1", Title: "体育", DayOfWeek: 5, SlotCode: "5-6", Weeks: course.AllWeeks(), Instructor: "王老师"}
	start := time.Date(2025, 9, 12, 14, 0, 0, 0, time.Local)
	next := &occurrence.Occurrence{Entry: e, Week: 2, Start: start, End: start.Add(95 * time.Minute)}

	var buf bytes.Buffer
	printCourseDetail(&buf, e, next)
	out := buf.String()
	for _, want := range []string{"体育\n", "周五 5-6节", "Instructor 王老师", "Reminder   off", "2025-09-12 第2周 14:00-15:35"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Location") {
		t.Errorf("empty location printed:\n%s", out)
	}
}

func TestFindCourse(t *testing.T) {
	ctx := context.Background()
	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating repo: %v", err)
	}
	defer func() { _ = repo.Close() }()

	for i, id := range []string{"aaaa1111", "aaaa2222", "bbbb3333"} {
		e := &course.Entry{ID: id, Title: id, DayOfWeek: i + 1, SlotCode: "1-2", Weeks: course.AllWeeks(), CreatedAt: time.Now()}
		if err := repo.CreateCourse(ctx, e); err != nil {
			t.Fatalf("CreateCourse: %v", err)
		}
	}

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr error
	}{
		{"full id", "aaaa2222", "aaaa2222", nil},
		{"unique prefix", "bb", "bbbb3333", nil},
		{"ambiguous prefix", "aaaa", "", errAmbiguousID},
		{"unknown", "zz", "", course.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findCourse(ctx, repo, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("findCourse: %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("got %s, want %s", got.ID, tt.want)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    exportFormat
		wantErr bool
	}{
		{"-", formatICS, false},
		{"term.ics", formatICS, false},
		{"TERM.ICS", formatICS, false},
		{"a.yaml", formatYAML, false},
		{"a.yml", formatYAML, false},
		{"a.xlsx", formatXLSX, false},
		{"a.csv", 0, true},
		{"noext", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := formatOf(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
