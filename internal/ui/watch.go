package ui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/reminder"
)

func (a *App) watchCmd() *cobra.Command {
	var (
		once     bool
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print course reminders as they come due",
		Long: `Check reminder-enabled courses on a cron schedule and print each
meeting once, when it starts within the configured advance time.

Runs until interrupted. --once checks a single time and exits.`,
		Example: `  coursetable watch
  coursetable watch --schedule "@every 30s"
  coursetable watch --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := a.serviceLogger()
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}
			r, err := a.resolver()
			if err != nil {
				return err
			}

			w := reminder.New(a.repo, r, reminder.WriterNotifier{W: cmd.OutOrStdout()}, a.config.Reminder.Advance(), log)
			w.Now = a.now

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sent, err := w.Check(ctx)
			if err != nil {
				return err
			}
			if once {
				if sent == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No reminders due.")
				}
				return nil
			}

			if schedule == "" {
				schedule = a.config.Reminder.Schedule
			}
			if err := w.Start(ctx, schedule); err != nil {
				return err
			}
			<-ctx.Done()
			w.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Check once and exit")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule (default from config, e.g. \"@every 1m\")")

	return cmd
}
