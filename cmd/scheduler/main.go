package main

import (
	"context"
	"log"

	"github.com/dhima/notification-dispatcher/internal/cli"
	"github.com/dhima/notification-dispatcher/internal/logging"
	"github.com/dhima/notification-dispatcher/pkg/config"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.FromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := cli.Schedule(ctx, cfg, logger); err != nil {
		logger.Fatal("scheduler stopped", zap.Error(err))
	}
}
