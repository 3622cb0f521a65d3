package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/course"
)

// errConflictsFound makes check exit non-zero when the timetable overlaps.
var errConflictsFound = errors.New("timetable has conflicts")

// conflictPair is two stored courses that overlap.
type conflictPair struct {
	A, B *course.Entry
}

// findConflictPairs returns every overlapping pair in entries, in input
// order. week 0 checks every week of the term.
func findConflictPairs(entries []*course.Entry, week, totalWeeks int) []conflictPair {
	var pairs []conflictPair
	for i, e := range entries {
		for _, other := range course.FindConflicts(e, entries[i+1:], week, totalWeeks) {
			pairs = append(pairs, conflictPair{A: e, B: other})
		}
	}
	return pairs
}

func (a *App) checkCmd() *cobra.Command {
	var week int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the timetable for overlapping courses",
		Long: `Report every pair of courses that meet on the same day in overlapping
periods during a week both are active, and every course whose period
code cannot be read.

Exits with an error when conflicts are found.`,
		Example: `  coursetable check
  coursetable check --week 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			total := a.config.Term.TotalWeeks
			if week < 0 || week > total {
				return fmt.Errorf("week must be between 1 and %d, got %d", total, week)
			}

			entries, err := a.repo.ListCourses(context.Background(), course.Filter{})
			if err != nil {
				return fmt.Errorf("listing courses: %w", err)
			}

			out := cmd.OutOrStdout()
			invalid := printInvalid(out, entries)
			pairs := findConflictPairs(entries, week, total)
			for _, p := range pairs {
				fmt.Fprintf(out, "%s %s %s [%s]  ↔  %s %s [%s]\n",
					formatWarn("✗"),
					p.A.Title, slotText(p.A), p.A.Weeks,
					p.B.Title, slotText(p.B), p.B.Weeks)
			}

			if len(pairs) > 0 {
				return fmt.Errorf("%w: %d overlapping pairs", errConflictsFound, len(pairs))
			}
			fmt.Fprintf(out, "%s %d courses, no conflicts", formatOK("✓"), len(entries))
			if invalid > 0 {
				fmt.Fprintf(out, " (%d with unreadable periods)", invalid)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&week, "week", "w", 0, "Only check this term week")

	return cmd
}

// printInvalid warns about entries whose slot codes do not decode and returns
// how many there are.
func printInvalid(w io.Writer, entries []*course.Entry) int {
	n := 0
	for _, e := range entries {
		if _, err := e.Slots(); err != nil {
			fmt.Fprintf(w, "%s %s (%s): %v\n", formatWarn("?"), e.Title, shortID(e.ID), err)
			n++
		}
	}
	return n
}
