package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/mediantree/internal/httpapi"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve projects and estimates over JSON/HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.config().Server.Addr
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			srv := &httpapi.Server{
				Projects:  app.Projects,
				Tasks:     app.Tasks,
				Estimates: app.Estimates,
				Logger:    logger,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")

	return cmd
}
