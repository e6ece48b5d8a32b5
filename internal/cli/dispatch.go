package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dhima/notification-dispatcher/internal/app"
	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDispatchCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one dispatch and print its summary as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := SignalContext(cmd.Context())
			defer stop()

			components, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("build components: %w", err)
			}
			defer func() {
				if err := components.Close(); err != nil {
					logger.Error("failed to close components", zap.Error(err))
				}
			}()

			var summary *models.DispatchSummary
			if date == "" {
				summary, err = components.Engine.RunToday(ctx)
			} else {
				day, parseErr := models.ParseDate(date)
				if parseErr != nil {
					return fmt.Errorf("invalid --date: %w", parseErr)
				}
				summary, err = components.Engine.RunDispatch(ctx, day)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "dispatch date as YYYY-MM-DD (default: today in DISPATCH_TIMEZONE)")
	return cmd
}
