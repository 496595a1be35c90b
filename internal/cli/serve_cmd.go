// internal/cli/serve_cmd.go
package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"admin-console/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console API and websocket to a browser front end",
		Long:  "Serve the console API and websocket. Every client must present CONSOLE_ACCESS_TOKEN\nas a bearer token, or as the access_token query parameter on /ws.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			logger, err := newLogger(cfg, zapcore.InfoLevel)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := app.NewServer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	return cmd
}
