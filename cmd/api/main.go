package main

import (
	"context"
	"log"

	"github.com/dhima/notification-dispatcher/internal/cli"
	"github.com/dhima/notification-dispatcher/internal/logging"
	"github.com/dhima/notification-dispatcher/pkg/config"
	"go.uber.org/zap"
)

// @title Notification Dispatcher API
// @version 1.0
// @description Daily event notification dispatcher.
// @description
// @description ## Features
// @description - **Dispatch**: Sends one rendered message per (event, recipient) pair for a date, isolating failures per recipient
// @description - **Delivery Log**: Append-only audit of every attempt, queryable by event, recipient, run and status
// @description - **Catalog**: Events, one template per event type and recipients linked to events
// @description - **Kafka Integration**: Optional publishing of delivery outcomes for external consumers

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	cfg := config.FromEnv()
	logger, err := logging.FromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := cli.Serve(ctx, cfg, logger); err != nil {
		logger.Fatal("api server stopped", zap.Error(err))
	}
}
