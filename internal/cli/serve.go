package cli

import (
	"context"
	"fmt"

	"github.com/dhima/notification-dispatcher/internal/api"
	"github.com/dhima/notification-dispatcher/internal/app"
	"github.com/dhima/notification-dispatcher/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := SignalContext(cmd.Context())
			defer stop()
			return Serve(ctx, cfg, logger)
		},
	}
}

// Serve runs the API until ctx is cancelled.
func Serve(ctx context.Context, cfg config.App, logger *zap.Logger) error {
	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build components: %w", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.Error("failed to close components", zap.Error(err))
		}
	}()

	return api.NewServer(components).Serve(ctx)
}
