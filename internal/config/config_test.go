package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Term.Start != "2025-09-01" {
		t.Errorf("expected term start 2025-09-01, got %s", cfg.Term.Start)
	}
	if cfg.Term.TotalWeeks != 18 {
		t.Errorf("expected 18 weeks, got %d", cfg.Term.TotalWeeks)
	}
	if cfg.Reminder.AdvanceMinutes != 15 {
		t.Errorf("expected 15 advance minutes, got %d", cfg.Reminder.AdvanceMinutes)
	}
	if cfg.Reminder.Schedule != "@every 1m" {
		t.Errorf("expected schedule @every 1m, got %s", cfg.Reminder.Schedule)
	}
	if cfg.Server.Listen != ":8080" {
		t.Errorf("expected listen :8080, got %s", cfg.Server.Listen)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Term.TotalWeeks != 18 {
		t.Errorf("expected default total weeks, got %d", cfg.Term.TotalWeeks)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[term]
start = "2026-02-23"
total_weeks = 16

[grid]
label_width = 10
padding = 1

[reminder]
advance_minutes = 30
schedule = "*/5 * * * *"

[server]
listen = "127.0.0.1:9090"

[storage]
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Term.Start != "2026-02-23" || cfg.Term.TotalWeeks != 16 {
		t.Errorf("unexpected term %+v", cfg.Term)
	}
	if cfg.Grid.LabelWidth != 10 || cfg.Grid.Padding != 1 {
		t.Errorf("unexpected grid %+v", cfg.Grid)
	}
	if cfg.Grid.MinDayWidth != Default().Grid.MinDayWidth {
		t.Errorf("unset grid fields should keep defaults, got %+v", cfg.Grid)
	}
	if cfg.Reminder.Advance() != 30*time.Minute {
		t.Errorf("expected 30m advance, got %v", cfg.Reminder.Advance())
	}
	if cfg.Server.Listen != "127.0.0.1:9090" {
		t.Errorf("expected listen 127.0.0.1:9090, got %s", cfg.Server.Listen)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[term\nstart ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("COURSETABLE_TERM_START", "2026-03-02")
	t.Setenv("COURSETABLE_TOTAL_WEEKS", "20")
	t.Setenv("COURSETABLE_ADVANCE_MINUTES", "5")
	t.Setenv("COURSETABLE_LISTEN", ":7000")
	t.Setenv("COURSETABLE_UI_THEME", "latte")

	cfg, err := LoadFrom("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Term.Start != "2026-03-02" {
		t.Errorf("expected env term start, got %s", cfg.Term.Start)
	}
	if cfg.Term.TotalWeeks != 20 {
		t.Errorf("expected 20 weeks, got %d", cfg.Term.TotalWeeks)
	}
	if cfg.Reminder.AdvanceMinutes != 5 {
		t.Errorf("expected 5 minutes, got %d", cfg.Reminder.AdvanceMinutes)
	}
	if cfg.Server.Listen != ":7000" {
		t.Errorf("expected :7000, got %s", cfg.Server.Listen)
	}
	if cfg.UI.Theme != "latte" {
		t.Errorf("expected latte, got %s", cfg.UI.Theme)
	}
}

func TestLoadFrom_BadEnvInteger(t *testing.T) {
	t.Setenv("COURSETABLE_TOTAL_WEEKS", "eighteen")
	_, err := LoadFrom("/nonexistent/config.toml")
	if err == nil || !strings.Contains(err.Error(), "COURSETABLE_TOTAL_WEEKS") {
		t.Errorf("expected error naming the variable, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("COURSETABLE_LISTEN=:6001\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Register cleanup of the variable the file sets.
	t.Setenv("COURSETABLE_LISTEN", "")
	if err := os.Unsetenv("COURSETABLE_LISTEN"); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("COURSETABLE_LISTEN"); got != ":6001" {
		t.Errorf("expected :6001 from .env, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"term start not monday", func(c *Config) { c.Term.Start = "2025-09-03" }, "term start"},
		{"term start garbage", func(c *Config) { c.Term.Start = "september" }, "term start"},
		{"zero weeks", func(c *Config) { c.Term.TotalWeeks = 0 }, "total_weeks"},
		{"too many weeks", func(c *Config) { c.Term.TotalWeeks = 60 }, "total_weeks"},
		{"negative padding", func(c *Config) { c.Grid.Padding = -1 }, "negative"},
		{"zero min day width", func(c *Config) { c.Grid.MinDayWidth = 0 }, "min_day_width"},
		{"day width below min", func(c *Config) { c.Grid.DayWidth = 3 }, "day_width"},
		{"negative advance", func(c *Config) { c.Reminder.AdvanceMinutes = -5 }, "advance_minutes"},
		{"bad cron", func(c *Config) { c.Reminder.Schedule = "every minute" }, "schedule"},
		{"empty listen", func(c *Config) { c.Server.Listen = "" }, "listen"},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, "db_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestTermAnchor(t *testing.T) {
	cfg := Default()
	anchor, err := cfg.Term.Anchor()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.Weekday() != time.Monday || anchor.Day() != 1 || anchor.Month() != time.September {
		t.Errorf("unexpected anchor %v", anchor)
	}
}

func TestGridOptions(t *testing.T) {
	opts := Default().Grid.Options()
	if opts.Columns != 7 || opts.Rows != 12 {
		t.Errorf("expected 7x12 grid, got %dx%d", opts.Columns, opts.Rows)
	}
	if opts.PreferredDayWidth != 18 || opts.LabelWidth != 14 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test/path", filepath.Join(home, "test/path")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subdir", "config.toml")

	cfg := Default()
	cfg.Term.Start = "2026-02-23"
	cfg.Reminder.AdvanceMinutes = 45
	cfg.Storage.DBPath = "/tmp/courses.db"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.Term.Start != "2026-02-23" {
		t.Errorf("expected term start 2026-02-23, got %s", loaded.Term.Start)
	}
	if loaded.Reminder.AdvanceMinutes != 45 {
		t.Errorf("expected 45, got %d", loaded.Reminder.AdvanceMinutes)
	}
	if loaded.Storage.DBPath != "/tmp/courses.db" {
		t.Errorf("expected /tmp/courses.db, got %s", loaded.Storage.DBPath)
	}
}
