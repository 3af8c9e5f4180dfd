package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"assetimport/internal/app"
)

func newServeCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the import HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			if port != "" {
				rt.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return a.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "addr", "", "Listen address, e.g. :8080 (overrides ASSETIMPORT_SERVER_PORT)")
	return cmd
}
