package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/occurrence"
)

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a course and its next meeting",
		Long: `Show every field of a course and when it meets next.

The id may be any unique prefix, such as the eight characters list prints.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			r, err := a.resolver()
			if err != nil {
				return err
			}

			e, err := findCourse(context.Background(), a.repo, args[0])
			if err != nil {
				return err
			}

			var next *occurrence.Occurrence
			if occ, err := r.Next(e, a.now()); err == nil {
				next = &occ
			}
			printCourseDetail(cmd.OutOrStdout(), e, next)
			return nil
		},
	}
}

func (a *App) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [id]",
		Aliases: []string{"rm"},
		Short:   "Remove a course",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			e, err := findCourse(ctx, a.repo, args[0])
			if err != nil {
				return err
			}
			if err := a.repo.DeleteCourse(ctx, e.ID); err != nil {
				return fmt.Errorf("removing course: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed course %s: %s\n", shortID(e.ID), e.Title)
			return nil
		},
	}
}

func (a *App) remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "remind [id] [on|off]",
		Short:     "Turn reminders for a course on or off",
		Example:   "  coursetable remind 3f2a9c1e on",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseOnOff(args[1])
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			e, err := findCourse(ctx, a.repo, args[0])
			if err != nil {
				return err
			}
			if err := a.repo.SetReminder(ctx, e.ID, enabled); err != nil {
				return fmt.Errorf("updating reminder: %w", err)
			}

			state := "off"
			if enabled {
				state = formatReminder("on")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder %s for %s\n", state, e.Title)
			return nil
		},
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return b, nil
}
