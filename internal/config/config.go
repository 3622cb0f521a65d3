// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/dateutil"
	"github.com/javiermolinar/coursetable/internal/grid"
	"github.com/javiermolinar/coursetable/internal/timeslot"
)

// Config holds the application configuration.
type Config struct {
	Term     TermConfig     `toml:"term"`
	Grid     GridConfig     `toml:"grid"`
	Reminder ReminderConfig `toml:"reminder"`
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
}

// TermConfig anchors week numbers to the calendar.
type TermConfig struct {
	Start      string `toml:"start"`       // Monday of week 1, "YYYY-MM-DD"
	TotalWeeks int    `toml:"total_weeks"` // e.g., 18
}

// GridConfig holds timetable grid geometry in terminal cells.
type GridConfig struct {
	LabelWidth   int `toml:"label_width"`
	HeaderHeight int `toml:"header_height"`
	DayWidth     int `toml:"day_width"`  // preferred, 0 fills the terminal
	RowHeight    int `toml:"row_height"` // preferred, 0 fills the terminal
	MinDayWidth  int `toml:"min_day_width"`
	MinRowHeight int `toml:"min_row_height"`
	Padding      int `toml:"padding"`
}

// ReminderConfig holds reminder watcher settings.
type ReminderConfig struct {
	AdvanceMinutes int    `toml:"advance_minutes"` // notify this long before class
	Schedule       string `toml:"schedule"`        // cron spec, e.g., "@every 1m"
}

// ServerConfig holds REST API settings.
type ServerConfig struct {
	Listen string `toml:"listen"` // e.g., ":8080"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte", "light"
}

// LogConfig holds logging settings for long-running commands.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Term: TermConfig{
			Start:      "2025-09-01",
			TotalWeeks: course.DefaultTotalWeeks,
		},
		Grid: GridConfig{
			LabelWidth:   14,
			HeaderHeight: 2,
			DayWidth:     18,
			RowHeight:    2,
			MinDayWidth:  6,
			MinRowHeight: 1,
			Padding:      0,
		},
		Reminder: ReminderConfig{
			AdvanceMinutes: 15,
			Schedule:       "@every 1m",
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "frappe",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "coursetable.db"
	}
	return filepath.Join(home, ".local", "share", "coursetable", "coursetable.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "coursetable", "config.toml")
}

// Load loads configuration from the default path, merging with defaults, a
// .env file in the working directory, and env vars.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return LoadFrom(DefaultConfigPath())
}

// LoadDotEnv exports the variables of a dotenv file into the process
// environment. Variables already set are left alone. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("COURSETABLE_TERM_START"); v != "" {
		cfg.Term.Start = v
	}
	if err := envInt("COURSETABLE_TOTAL_WEEKS", &cfg.Term.TotalWeeks); err != nil {
		return err
	}

	if err := envInt("COURSETABLE_ADVANCE_MINUTES", &cfg.Reminder.AdvanceMinutes); err != nil {
		return err
	}
	if v := os.Getenv("COURSETABLE_REMINDER_SCHEDULE"); v != "" {
		cfg.Reminder.Schedule = v
	}

	if v := os.Getenv("COURSETABLE_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("COURSETABLE_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("COURSETABLE_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("COURSETABLE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", name, v)
	}
	*dst = n
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Term.Anchor(); err != nil {
		return fmt.Errorf("term start: %w", err)
	}
	if c.Term.TotalWeeks < 1 || c.Term.TotalWeeks > 53 {
		return fmt.Errorf("total_weeks must be between 1 and 53, got %d", c.Term.TotalWeeks)
	}

	g := c.Grid
	if g.LabelWidth < 0 || g.HeaderHeight < 0 || g.Padding < 0 {
		return errors.New("grid label_width, header_height and padding cannot be negative")
	}
	if g.MinDayWidth < 1 || g.MinRowHeight < 1 {
		return errors.New("grid min_day_width and min_row_height must be at least 1")
	}
	if g.DayWidth != 0 && g.DayWidth < g.MinDayWidth {
		return fmt.Errorf("grid day_width %d is below min_day_width %d", g.DayWidth, g.MinDayWidth)
	}
	if g.RowHeight != 0 && g.RowHeight < g.MinRowHeight {
		return fmt.Errorf("grid row_height %d is below min_row_height %d", g.RowHeight, g.MinRowHeight)
	}

	if c.Reminder.AdvanceMinutes < 0 {
		return fmt.Errorf("advance_minutes cannot be negative, got %d", c.Reminder.AdvanceMinutes)
	}
	if _, err := cron.ParseStandard(c.Reminder.Schedule); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", c.Reminder.Schedule, err)
	}

	if c.Server.Listen == "" {
		return errors.New("server listen address must be set")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// Anchor returns the Monday of week 1 in the local time zone.
func (t TermConfig) Anchor() (time.Time, error) {
	return dateutil.ParseTermStart(t.Start, time.Local)
}

// Advance returns the reminder lead time.
func (r ReminderConfig) Advance() time.Duration {
	return time.Duration(r.AdvanceMinutes) * time.Minute
}

// Options converts the grid settings into layout options for a full week of
// periods.
func (g GridConfig) Options() grid.Options {
	return grid.Options{
		Columns:            course.DaysPerWeek,
		Rows:               timeslot.MaxSlots,
		LabelWidth:         g.LabelWidth,
		HeaderHeight:       g.HeaderHeight,
		PreferredDayWidth:  g.DayWidth,
		MinDayWidth:        g.MinDayWidth,
		PreferredRowHeight: g.RowHeight,
		MinRowHeight:       g.MinRowHeight,
		Padding:            g.Padding,
		PaletteSize:        grid.DefaultPaletteSize,
	}
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
