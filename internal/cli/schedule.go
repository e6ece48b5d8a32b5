package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhima/notification-dispatcher/internal/app"
	"github.com/dhima/notification-dispatcher/internal/lock"
	"github.com/dhima/notification-dispatcher/internal/scheduler"
	"github.com/dhima/notification-dispatcher/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Dispatch every day on DISPATCH_CRON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := SignalContext(cmd.Context())
			defer stop()
			return Schedule(ctx, cfg, logger)
		},
	}
}

// Schedule runs the cron trigger until ctx is cancelled. With REDIS_ADDR set, replicas
// share a per-day lock so that each day is dispatched once.
func Schedule(ctx context.Context, cfg config.App, logger *zap.Logger) error {
	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build components: %w", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.Error("failed to close components", zap.Error(err))
		}
	}()

	var locker lock.Locker = lock.NoopLocker{}
	if cfg.RedisAddr != "" {
		rdb, err := lock.NewRedisClient(ctx, lock.RedisOpts{Addr: cfg.RedisAddr})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		locker = lock.NewRedisLocker(rdb)
		logger.Info("using redis dispatch lock", zap.String("addr", cfg.RedisAddr))
	}

	engine, err := scheduler.NewEngine(cfg.Dispatch.Cron, cfg.Dispatch.Timezone, components.Engine, locker, logger.Named("scheduler"))
	if err != nil {
		return err
	}

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
