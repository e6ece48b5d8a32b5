// Package cli holds the notifyctl commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dhima/notification-dispatcher/internal/logging"
	"github.com/dhima/notification-dispatcher/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgPath string

// NewRootCmd builds the notifyctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notifyctl",
		Short:         "Daily event notification dispatcher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (environment variables override it)")
	root.AddCommand(newServeCmd())
	root.AddCommand(newDispatchCmd())
	root.AddCommand(newScheduleCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

// Execute runs notifyctl with os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func loadConfig() (config.App, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.App{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.FromConfig(cfg)
	if err != nil {
		return config.App{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
