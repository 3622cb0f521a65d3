// Package ui provides the coursetable command line.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursetable/internal/config"
	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/db"
	"github.com/javiermolinar/coursetable/internal/logging"
	"github.com/javiermolinar/coursetable/internal/occurrence"
	"github.com/javiermolinar/coursetable/internal/tui"
	"github.com/javiermolinar/coursetable/internal/tui/theme"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo    course.Repository
	config  *config.Config
	root    *cobra.Command
	log     *zap.Logger
	debug   bool // Enable debug logging
	noColor bool

	// now is injectable for testing.
	now func() time.Time
}

// NewApp creates a new CLI application. A nil repo is opened on first use
// from the configured database path.
func NewApp(repo course.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg, log: zap.NewNop(), now: time.Now}

	a.root = &cobra.Command{
		Use:   "coursetable",
		Short: "A university course timetable",
		Long: `Coursetable keeps your weekly course timetable.

Run without arguments to open the interactive week grid. Courses meet on a
weekday and a range of class periods (节次), in all, odd, even or listed
term weeks.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runTUI()
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to "+logging.DebugLogPath+")")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.removeCmd())
	a.root.AddCommand(a.remindCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.upcomingCmd())
	a.root.AddCommand(a.checkCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.watchCmd())
	a.root.AddCommand(a.serveCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coursetable %s (commit: %s)\n", Version, Commit)
		},
	}
}

// setup applies the global flags before any command runs.
func (a *App) setup(_ *cobra.Command, _ []string) error {
	if a.noColor {
		DisableColor()
	}
	if !a.debug {
		return nil
	}
	log, err := logging.New(logging.Options{Mode: logging.Debug})
	if err != nil {
		return err
	}
	a.log = log
	a.log.Debug("debug logging enabled", zap.String("db", a.config.Storage.DBPath))
	return nil
}

// serviceLogger returns the logger for long-running commands: the debug log
// when --debug is set, console output otherwise.
func (a *App) serviceLogger() (*zap.Logger, error) {
	if a.debug {
		return a.log, nil
	}
	log, err := logging.New(logging.Options{Mode: logging.Console, Level: a.config.Log.Level})
	if err != nil {
		return nil, err
	}
	a.log = log
	return log, nil
}

// ensureRepo opens the configured database unless a repository is set.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	dbPath := a.config.Storage.DBPath
	if dbPath == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(dbPath, db.WithTotalWeeks(a.config.Term.TotalWeeks), db.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	a.repo = repo
	return nil
}

// resolver builds the occurrence resolver for the configured term.
func (a *App) resolver() (*occurrence.Resolver, error) {
	anchor, err := a.config.Term.Anchor()
	if err != nil {
		return nil, fmt.Errorf("term start: %w", err)
	}
	r := occurrence.New(anchor, a.config.Term.TotalWeeks)
	r.Now = a.now
	return r, nil
}

func (a *App) runTUI() error {
	if err := a.ensureRepo(); err != nil {
		return err
	}
	r, err := a.resolver()
	if err != nil {
		return err
	}
	t, err := theme.Load(a.config.UI.Theme)
	if err != nil {
		return fmt.Errorf("loading theme: %w", err)
	}
	return tui.Run(a.repo, tui.Options{
		Resolver: r,
		Grid:     a.config.Grid.Options(),
		Theme:    t,
		Log:      a.log,
	})
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the repository and flushes the logger.
func (a *App) Close() error {
	logging.Sync(a.log)
	if a.repo == nil {
		return nil
	}
	return a.repo.Close()
}
