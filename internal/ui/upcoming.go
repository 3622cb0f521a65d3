package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/occurrence"
)

func (a *App) upcomingCmd() *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the next meeting of each course with reminders",
		Long: `List the next meeting of every reminder-enabled course, soonest first,
with the time its reminder fires.`,
		Example: `  coursetable upcoming
  coursetable upcoming --all --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			r, err := a.resolver()
			if err != nil {
				return err
			}

			entries, err := a.repo.ListCourses(context.Background(), course.Filter{ReminderOnly: !all})
			if err != nil {
				return fmt.Errorf("listing courses: %w", err)
			}

			reminders, skipped := r.Upcoming(entries, a.now(), a.config.Reminder.Advance())
			if limit > 0 && limit < len(reminders) {
				reminders = reminders[:limit]
			}

			out := cmd.OutOrStdout()
			if len(reminders) == 0 {
				fmt.Fprintln(out, "No upcoming courses.")
			}
			for _, rem := range reminders {
				printReminderRow(out, rem)
			}
			for _, sk := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (%s): %v\n", formatMuted("skipped"), sk.Entry.Title, shortID(sk.Entry.ID), sk.Err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Show at most this many (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "Include courses without reminders")

	return cmd
}

func printReminderRow(w io.Writer, r occurrence.Reminder) {
	where := ""
	if r.Entry.Location != "" {
		where = "  @" + r.Entry.Location
	}
	fmt.Fprintf(w, "  %s  %s %s-%s  第%-2d周  remind %s  %s%s\n",
		r.Start.Format("01/02"),
		course.DayName(r.Entry.DayOfWeek),
		r.Start.Format("15:04"),
		r.End.Format("15:04"),
		r.Week,
		formatReminder(r.RemindAt.Format("15:04")),
		formatTitle(r.Entry.Title),
		where,
	)
}
