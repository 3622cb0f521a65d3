package ui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursetable/internal/server"
)

func (a *App) serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timetable over a JSON API",
		Long: `Start the REST API: course CRUD, week listings, upcoming reminders
and the laid-out week grid.

Runs until interrupted.`,
		Example: `  coursetable serve
  coursetable serve --listen 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
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
			if listen == "" {
				listen = a.config.Server.Listen
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(a.repo, server.Options{
				Resolver: r,
				Advance:  a.config.Reminder.Advance(),
				Log:      log,
			})
			return srv.Listen(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config)")

	return cmd
}
