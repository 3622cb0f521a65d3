package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/course"
)

func (a *App) listCmd() *cobra.Command {
	var (
		search    string
		day       string
		week      int
		reminders bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses",
		Long: `List stored courses grouped by weekday.

Filters combine: --search matches title, instructor or location,
--day keeps one weekday, --week keeps courses meeting in that term week.`,
		Example: `  coursetable list
  coursetable list --search 张老师
  coursetable list --day 周三 --week 5
  coursetable list --reminders`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			f := course.Filter{
				Search:       search,
				Week:         week,
				TotalWeeks:   a.config.Term.TotalWeeks,
				ReminderOnly: reminders,
			}
			if day != "" {
				d, err := course.ParseDay(day)
				if err != nil {
					return err
				}
				f.Day = d
			}
			if week < 0 || week > a.config.Term.TotalWeeks {
				return fmt.Errorf("week must be between 1 and %d, got %d", a.config.Term.TotalWeeks, week)
			}

			entries, err := a.repo.ListCourses(context.Background(), f)
			if err != nil {
				return fmt.Errorf("listing courses: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No courses found.")
				return nil
			}
			printCoursesByDay(out, entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Match title, instructor or location")
	cmd.Flags().StringVar(&day, "day", "", "Only this weekday (周一..周日, Monday..Sunday or 1..7)")
	cmd.Flags().IntVarP(&week, "week", "w", 0, "Only courses meeting in this term week")
	cmd.Flags().BoolVar(&reminders, "reminders", false, "Only courses with reminders enabled")

	return cmd
}
