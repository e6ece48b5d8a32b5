// Package app assembles the dispatcher's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhima/notification-dispatcher/internal/audit"
	"github.com/dhima/notification-dispatcher/internal/catalog"
	"github.com/dhima/notification-dispatcher/internal/delivery"
	"github.com/dhima/notification-dispatcher/internal/dispatch"
	"github.com/dhima/notification-dispatcher/internal/metrics"
	"github.com/dhima/notification-dispatcher/internal/scheduler"
	"github.com/dhima/notification-dispatcher/internal/storage"
	"github.com/dhima/notification-dispatcher/pkg/config"
	"github.com/dhima/notification-dispatcher/platform/events"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Components holds everything a process needs to dispatch and serve queries.
type Components struct {
	Config   config.App
	Logger   *zap.Logger
	DB       *sqlx.DB
	Store    *storage.Client
	Registry *prometheus.Registry
	Engine   *dispatch.Engine
	Catalog  *catalog.Service
	Audit    *audit.Service

	publisher *events.Publisher
}

// Build opens the database and wires the dispatch engine and services. SQLite databases
// are migrated on open. The caller must Close the result.
func Build(ctx context.Context, cfg config.App, logger *zap.Logger) (*Components, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	loc, err := scheduler.LoadLocation(cfg.Dispatch.Timezone)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseDriver == storage.DriverSQLite {
		if err := storage.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	c := &Components{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Store:  storage.NewClient(db),
	}

	resolver, err := storage.NewRecipientResolver(c.Store, cfg.Dispatch.RecipientPolicy)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	transport, err := delivery.FromConfig(cfg.Mail, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []dispatch.Option{
		dispatch.WithMetrics(metrics.New(c.Registry)),
		dispatch.WithLocation(loc),
		dispatch.WithWorkers(cfg.Dispatch.Workers),
		dispatch.WithSubject(cfg.Mail.Subject),
	}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		c.publisher = events.NewPublisher(brokers, cfg.KafkaTopic, logger)
		opts = append(opts, dispatch.WithPublisher(c.publisher))
		logger.Info("publishing delivery outcomes",
			zap.Strings("brokers", brokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	c.Engine = dispatch.NewEngine(c.Store, resolver, transport, logger.Named("dispatch"), opts...)
	c.Catalog = catalog.NewService(c.Store, resolver, logger.Named("catalog"))
	c.Audit = audit.NewService(c.Store, logger.Named("audit"))

	logger.Info("components ready",
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.String("recipient_policy", cfg.Dispatch.RecipientPolicy),
		zap.String("mail_transport", cfg.Mail.Transport),
		zap.String("timezone", loc.String()),
		zap.Int("workers", cfg.Dispatch.Workers))

	return c, nil
}

// Close releases the publisher and database connection.
func (c *Components) Close() error {
	var errs []error
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
