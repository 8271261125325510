package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/melkeydev/logistics-admin/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin dashboard",
		Example: `  # Demo data, no database required
  logistics-admin serve

  # Against the config file on another port
  logistics-admin serve --config prod.yaml --port 8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root.configPath, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			authSvc, err := a.authService()
			if err != nil {
				return err
			}
			srv, err := server.New(server.Options{
				Connector:    a.connector,
				Auth:         authSvc,
				Publisher:    a.publisher,
				Hub:          a.hub,
				Logger:       a.logger,
				RowLimit:     a.cfg.Database.RowLimit,
				CookieName:   a.cfg.Server.CookieName,
				SecureCookie: a.cfg.Server.SecureCookie,
			})
			if err != nil {
				return err
			}

			if port == "" {
				port = a.cfg.Server.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(":" + port) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on (default from config: 3000)")
	return cmd
}
