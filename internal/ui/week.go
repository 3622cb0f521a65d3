package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/grid"
	"github.com/javiermolinar/coursetable/internal/tui"
	"github.com/javiermolinar/coursetable/internal/tui/theme"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "week [n]",
		Short: "Print the timetable grid of a term week",
		Long: `Print the week grid without starting the interactive view.

Defaults to the current term week and the terminal size. Conflicting
courses are marked with "!" and listed below the grid.`,
		Example: `  coursetable week
  coursetable week 5 --width 120 --height 28`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			r, err := a.resolver()
			if err != nil {
				return err
			}

			week := min(r.CurrentWeek(a.now()), r.TotalWeeks)
			if len(args) == 1 {
				week, err = strconv.Atoi(args[0])
				if err != nil || week < 1 || week > r.TotalWeeks {
					return fmt.Errorf("week must be between 1 and %d, got %q", r.TotalWeeks, args[0])
				}
			}

			entries, err := a.repo.ListCourses(context.Background(), course.Filter{})
			if err != nil {
				return fmt.Errorf("listing courses: %w", err)
			}

			tw, th := termSize()
			if width <= 0 {
				width = tw
			}
			if height <= 0 {
				height = th - 1 // room for the title line
			}

			t, err := theme.Load(a.config.UI.Theme)
			if err != nil {
				return fmt.Errorf("loading theme: %w", err)
			}
			out := cmd.OutOrStdout()
			rendered, res, err := tui.Snapshot(entries, tui.Options{
				Resolver: r,
				Grid:     a.config.Grid.Options(),
				Theme:    t,
				Log:      a.log,
			}, week, width, height)
			if errors.Is(err, grid.ErrInvalidViewport) {
				return a.printWeekList(out, entries, week)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, rendered)
			printLayoutNotes(out, res)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Grid width in columns (default: terminal width)")
	cmd.Flags().IntVar(&height, "height", 0, "Grid height in lines (default: terminal height)")

	return cmd
}

// printWeekList is the fallback for terminals too small for the grid.
func (a *App) printWeekList(w io.Writer, entries []*course.Entry, week int) error {
	active := course.ActiveIn(entries, week, a.config.Term.TotalWeeks)
	fmt.Fprintln(w, formatHeader(fmt.Sprintf("第%d周", week)))
	if len(active) == 0 {
		fmt.Fprintln(w, "No courses this week.")
		return nil
	}
	printCoursesByDay(w, active)
	return nil
}

// printLayoutNotes lists conflicts and entries left out of the grid.
func printLayoutNotes(w io.Writer, res grid.Result) {
	for _, c := range res.Conflicts {
		a, b := res.Placed[c.First].Entry, res.Placed[c.Second].Entry
		fmt.Fprintf(w, "%s %s %s overlaps %s %s\n",
			formatWarn("!"), a.Title, slotText(a), b.Title, slotText(b))
	}
	for _, sk := range res.Skipped {
		fmt.Fprintf(w, "%s %s (%s): %v\n", formatMuted("not shown:"), sk.Entry.Title, shortID(sk.Entry.ID), sk.Err)
	}
}
