package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/importer"
)

func (a *App) addCmd() *cobra.Command {
	var rec importer.Record

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a course",
		Long: `Add a recurring course to the timetable.

The course is rejected if it overlaps an existing course on the same day
in any week both meet.`,
		Example: `  coursetable add 高等数学 --day 周一 --slot 1-2节 --weeks 1-16周 --week-type 单周 --location 教二-101
  coursetable add "Linear Algebra" --day 3 --slot 5-6 --weeks all --remind`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			rec.Title = args[0]
			e, err := rec.Entry(a.config.Term.TotalWeeks)
			if err != nil {
				return err
			}

			ctx := context.Background()
			if err := a.repo.CreateCourse(ctx, e); err != nil {
				return fmt.Errorf("creating course: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created course %s: %s %s %s [%s]\n",
				shortID(e.ID),
				e.Title,
				course.DayName(e.DayOfWeek),
				slotText(e),
				e.Weeks,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&rec.Day, "day", "", "Weekday: 周一..周日, Monday..Sunday or 1..7 (required)")
	cmd.Flags().StringVar(&rec.Slot, "slot", "", "Class periods, e.g. 1-2节, 第3节, 5 (required)")
	cmd.Flags().StringVar(&rec.Weeks, "weeks", "all", "Weeks: all, odd, even, 1-16周 or 1,3,5")
	cmd.Flags().StringVar(&rec.WeekType, "week-type", "", "Week type overriding --weeks: 全周, 单周 or 双周")
	cmd.Flags().StringVar(&rec.Location, "location", "", "Classroom")
	cmd.Flags().StringVar(&rec.Instructor, "instructor", "", "Instructor name")
	cmd.Flags().BoolVar(&rec.Reminder, "remind", false, "Enable reminders for this course")
	cmd.Flags().StringVar(&rec.Contact, "contact", "", "Instructor contact")
	cmd.Flags().StringVar(&rec.Property, "property", "", "Course type, e.g. 必修 or 选修")
	cmd.Flags().StringVar(&rec.Remarks, "remarks", "", "Free-form notes")

	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("slot")

	return cmd
}
