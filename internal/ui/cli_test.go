package ui

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/coursetable/internal/config"
	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/importer"
)

const samplePath = "../importer/testdata/sample.yaml"

// mondayWeek2 is 09:00 on the Monday of week 2 of a term starting 2025-09-01.
var mondayWeek2 = time.Date(2025, 9, 8, 9, 0, 0, 0, time.Local)

// testCLI runs commands against one database, each with a fresh App.
type testCLI struct {
	cfg *config.Config
	now time.Time
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	DisableColor()
	cfg := config.Default()
	cfg.Term.Start = "2025-09-01"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "data", "coursetable.db")
	return &testCLI{cfg: cfg, now: mondayWeek2}
}

func (c *testCLI) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	a := NewApp(nil, c.cfg)
	a.now = func() time.Time { return c.now }

	var out, errOut bytes.Buffer
	a.root.SetArgs(args)
	a.root.SetOut(&out)
	a.root.SetErr(&errOut)
	err = a.Execute()
	if closeErr := a.Close(); closeErr != nil {
		t.Fatalf("closing app: %v", closeErr)
	}
	return out.String(), errOut.String(), err
}

func (c *testCLI) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := c.run(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\nstderr: %s", args, err, stderr)
	}
	return out
}

// addedID extracts the short ID from add's "Created course <id>: ..." line.
func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[0] != "Created" {
		t.Fatalf("unexpected add output: %q", out)
	}
	return strings.TrimSuffix(fields[2], ":")
}

func TestAddListShowRemove(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun(t, "add", "高等数学", "--day", "周一", "--slot", "1-2节", "--location", "教二-101", "--remind")
	if !strings.Contains(out, "高等数学 周一 1-2节 08:00-09:35 [all]") {
		t.Errorf("add output = %q", out)
	}
	id := addedID(t, out)

	c.mustRun(t, "add", "大学英语", "--day", "3", "--slot", "3-4", "--weeks", "1-16周", "--week-type", "单周")

	out = c.mustRun(t, "list")
	for _, want := range []string{"=== 周一 ===", "=== 周三 ===", "高等数学", "大学英语", "@教二-101", "odd"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out = c.mustRun(t, "list", "--day", "周三")
	if strings.Contains(out, "高等数学") || !strings.Contains(out, "大学英语") {
		t.Errorf("list --day 周三 = %q", out)
	}

	out = c.mustRun(t, "list", "--week", "2")
	if strings.Contains(out, "大学英语") {
		t.Errorf("odd-week course listed in week 2:\n%s", out)
	}

	out = c.mustRun(t, "list", "--search", "教二")
	if !strings.Contains(out, "高等数学") || strings.Contains(out, "大学英语") {
		t.Errorf("list --search = %q", out)
	}

	// 09:00 on Monday of week 2: this week's meeting has started.
	out = c.mustRun(t, "show", id)
	for _, want := range []string{"高等数学", "教二-101", "Reminder   on", "2025-09-15 第3周 08:00-09:35"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = c.mustRun(t, "remove", id)
	if !strings.Contains(out, "Removed course "+id+": 高等数学") {
		t.Errorf("remove output = %q", out)
	}
	if _, _, err := c.run(t, "show", id); !errors.Is(err, course.ErrNotFound) {
		t.Errorf("show after remove: got %v, want ErrNotFound", err)
	}
}

func TestAddRejectsConflict(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun(t, "add", "高等数学", "--day", "周一", "--slot", "1-2节")

	_, _, err := c.run(t, "add", "线性代数", "--day", "Monday", "--slot", "2-3节")
	if !errors.Is(err, course.ErrSlotConflict) {
		t.Fatalf("got %v, want ErrSlotConflict", err)
	}

	// Disjoint week patterns share no week.
	c.mustRun(t, "add", "离散数学", "--day", "周二", "--slot", "1-2节", "--weeks", "odd")
	c.mustRun(t, "add", "日语", "--day", "周二", "--slot", "1-2节", "--weeks", "even")
}

func TestAddValidation(t *testing.T) {
	c := newTestCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing day", []string{"add", "x", "--slot", "1-2"}},
		{"bad day", []string{"add", "x", "--day", "周八", "--slot", "1-2"}},
		{"bad slot", []string{"add", "x", "--day", "1", "--slot", "13-14节"}},
		{"bad weeks", []string{"add", "x", "--day", "1", "--slot", "1-2", "--weeks", "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := c.run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}

	out := c.mustRun(t, "list")
	if !strings.Contains(out, "No courses found.") {
		t.Errorf("rejected adds were stored:\n%s", out)
	}
}

func TestRemind(t *testing.T) {
	c := newTestCLI(t)
	id := addedID(t, c.mustRun(t, "add", "体育", "--day", "周五", "--slot", "5-6节"))

	out := c.mustRun(t, "list", "--reminders")
	if !strings.Contains(out, "No courses found.") {
		t.Errorf("list --reminders before enabling = %q", out)
	}

	out = c.mustRun(t, "remind", id, "on")
	if out != "Reminder on for 体育\n" {
		t.Errorf("remind on = %q", out)
	}
	out = c.mustRun(t, "list", "--reminders")
	if !strings.Contains(out, "体育") {
		t.Errorf("list --reminders = %q", out)
	}

	if _, _, err := c.run(t, "remind", id, "maybe"); err == nil {
		t.Error("expected error for remind maybe")
	}
}

func TestUpcoming(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun(t, "add", "高等数学", "--day", "周一", "--slot", "1-2节", "--remind")
	c.mustRun(t, "add", "体育", "--day", "周五", "--slot", "5-6节", "--remind")
	c.mustRun(t, "add", "大学英语", "--day", "周三", "--slot", "3-4节")

	out := c.mustRun(t, "upcoming")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "09/12") || !strings.Contains(lines[0], "体育") {
		t.Errorf("first reminder = %q, want 体育 on 09/12", lines[0])
	}
	if !strings.Contains(lines[1], "09/15") || !strings.Contains(lines[1], "高等数学") {
		t.Errorf("second reminder = %q, want 高等数学 on 09/15", lines[1])
	}

	out = c.mustRun(t, "upcoming", "--all", "--limit", "1")
	if !strings.Contains(out, "大学英语") || strings.Count(out, "\n") != 1 {
		t.Errorf("upcoming --all --limit 1 = %q", out)
	}
}

func TestWeek(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun(t, "add", "高等数学", "--day", "周一", "--slot", "1-2节", "--location", "教二-101")
	c.mustRun(t, "add", "大学英语", "--day", "周三", "--slot", "3-4节", "--weeks", "odd")

	out := c.mustRun(t, "week", "--width", "140", "--height", "28")
	if !strings.Contains(out, "第2周") || !strings.Contains(out, "高等数学") {
		t.Errorf("week output missing current week or course:\n%s", out)
	}
	if strings.Contains(out, "大学英语") {
		t.Errorf("odd-week course drawn in week 2:\n%s", out)
	}

	out = c.mustRun(t, "week", "3", "--width", "140", "--height", "28")
	if !strings.Contains(out, "第3周") || !strings.Contains(out, "大学英语") {
		t.Errorf("week 3 output:\n%s", out)
	}

	out = c.mustRun(t, "week", "2", "--width", "40", "--height", "10")
	if !strings.Contains(out, "=== 周一 ===") || !strings.Contains(out, "高等数学") {
		t.Errorf("small terminal fallback:\n%s", out)
	}

	if _, _, err := c.run(t, "week", "19"); err == nil {
		t.Error("expected error for week past the term")
	}
}

func TestCheck(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun(t, "import", samplePath)

	out := c.mustRun(t, "check")
	if !strings.Contains(out, "18 courses, no conflicts") {
		t.Errorf("check output = %q", out)
	}
	if _, _, err := c.run(t, "check", "--week", "20"); err == nil {
		t.Error("expected error for week past the term")
	}
}

func TestFindConflictPairs(t *testing.T) {
	e := func(title string, day int, slot string, weeks course.WeekPattern) *course.Entry {
		return &course.Entry{ID: title, Title: title, DayOfWeek: day, SlotCode: slot, Weeks: weeks}
	}
	math := e("math", 1, "1-2", course.AllWeeks())
	physics := e("physics", 1, "2-3", course.OddWeeks())
	chem := e("chem", 1, "2-3", course.EvenWeeks())
	art := e("art", 2, "1-2", course.AllWeeks())
	entries := []*course.Entry{math, physics, chem, art}

	tests := []struct {
		name string
		week int
		want []string
	}{
		{"any week", 0, []string{"math/physics", "math/chem"}},
		{"odd week", 3, []string{"math/physics"}},
		{"even week", 4, []string{"math/chem"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range findConflictPairs(entries, tt.week, 18) {
				got = append(got, p.A.Title+"/"+p.B.Title)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImport(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun(t, "import", samplePath)
	if !strings.Contains(out, "Imported 18 courses") {
		t.Errorf("import output = %q", out)
	}

	// Every course now overlaps itself.
	out, stderr, err := c.run(t, "import", samplePath)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if !strings.Contains(out, "Imported 0 courses") {
		t.Errorf("second import output = %q", out)
	}
	if strings.Count(stderr, "overlaps a stored course") != 18 {
		t.Errorf("second import stderr:\n%s", stderr)
	}

	out = c.mustRun(t, "import", samplePath, "--replace")
	if !strings.Contains(out, "Replaced timetable with 18 courses") {
		t.Errorf("import --replace output = %q", out)
	}

	out = c.mustRun(t, "list", "--day", "周五")
	for _, want := range []string{"软件工程", "人工智能导论", "Web开发技术", "形势与政策"} {
		if !strings.Contains(out, want) {
			t.Errorf("Friday missing %q:\n%s", want, out)
		}
	}
}

func TestImportBadRowsAndDryRun(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "courses.yaml")
	data := `courses:
  - title: 高等数学
    day: 周一
    slot: 1-2节
  - title: 线性代数
    day: 周一
    slot: 2-3节
  - title: 坏数据
    day: 周八
    slot: 1-2节
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	out, stderr, err := c.run(t, "import", path, "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !strings.Contains(out, "Read 2 of 3 courses") || !strings.Contains(out, "高等数学 1-2节 08:00-09:35 overlaps 线性代数") {
		t.Errorf("dry run output:\n%s", out)
	}
	if !strings.Contains(stderr, "坏数据") {
		t.Errorf("bad row not reported:\n%s", stderr)
	}

	out = c.mustRun(t, "list")
	if !strings.Contains(out, "No courses found.") {
		t.Errorf("dry run stored courses:\n%s", out)
	}

	if _, _, err := c.run(t, "import", path, "--replace"); !errors.Is(err, course.ErrSlotConflict) {
		t.Errorf("replace with overlapping rows: got %v, want ErrSlotConflict", err)
	}
	if _, _, err := c.run(t, "import", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExport(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun(t, "import", samplePath)
	dir := t.TempDir()

	t.Run("ics", func(t *testing.T) {
		path := filepath.Join(dir, "term.ics")
		out := c.mustRun(t, "export", path)
		if !strings.Contains(out, "Exported 18 courses") {
			t.Errorf("export output = %q", out)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := strings.Count(string(data), "BEGIN:VEVENT"); got != 18 {
			t.Errorf("got %d events, want 18", got)
		}
	})

	t.Run("stdout", func(t *testing.T) {
		out := c.mustRun(t, "export", "-")
		if !strings.HasPrefix(out, "BEGIN:VCALENDAR") {
			t.Errorf("export - does not start with a calendar: %.40q", out)
		}
	})

	t.Run("yaml round trip", func(t *testing.T) {
		path := filepath.Join(dir, "backup.yaml")
		c.mustRun(t, "export", path)

		other := newTestCLI(t)
		out := other.mustRun(t, "import", path)
		if !strings.Contains(out, "Imported 18 courses") {
			t.Errorf("re-import output = %q", out)
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "backup.xlsx")
		c.mustRun(t, "export", path)
		records, err := importer.ReadXLSXFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 18 {
			t.Errorf("got %d rows, want 18", len(records))
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, _, err := c.run(t, "export", filepath.Join(dir, "term.csv"))
		if !errors.Is(err, importer.ErrUnsupportedFormat) {
			t.Errorf("got %v, want ErrUnsupportedFormat", err)
		}
	})
}

func TestWatchOnce(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun(t, "add", "高等数学", "--day", "周一", "--slot", "1-2节", "--location", "教二-101", "--remind")

	// Week 2 Monday 07:50: class at 08:00 is inside the 15 minute window.
	c.now = time.Date(2025, 9, 8, 7, 50, 0, 0, time.Local)
	out := c.mustRun(t, "watch", "--once")
	if out != "高等数学  第2周 周一 08:00-09:35 @ 教二-101\n" {
		t.Errorf("watch --once = %q", out)
	}

	c.now = time.Date(2025, 9, 8, 7, 0, 0, 0, time.Local)
	out = c.mustRun(t, "watch", "--once")
	if out != "No reminders due.\n" {
		t.Errorf("watch --once early = %q", out)
	}
}

func TestVersion(t *testing.T) {
	c := newTestCLI(t)
	out := c.mustRun(t, "version")
	if out != "coursetable dev (commit: none)\n" {
		t.Errorf("version = %q", out)
	}
}

func TestParseOnOff(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"OFF", false, false},
		{" yes ", true, false},
		{"no", false, false},
		{"true", true, false},
		{"0", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOnOff(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
