// Package scheduler fires the daily dispatch on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dhima/notification-dispatcher/internal/lock"
	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/pkg/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultLockTTL covers the spread between replicas firing the same schedule.
const DefaultLockTTL = time.Hour

// Dispatcher runs the dispatch for one calendar date.
type Dispatcher interface {
	RunDispatch(ctx context.Context, date time.Time) (*models.DispatchSummary, error)
}

// Engine triggers Dispatcher whenever the cron expression fires.
type Engine struct {
	spec       string
	loc        *time.Location
	dispatcher Dispatcher
	locker     lock.Locker
	logger     *zap.Logger
	clock      clock.Clock
	lockTTL    time.Duration
}

// NewEngine validates the schedule and builds a scheduler.
func NewEngine(spec, timezone string, dispatcher Dispatcher, locker lock.Locker, logger *zap.Logger) (*Engine, error) {
	return NewEngineWithClock(spec, timezone, dispatcher, locker, logger, clock.RealClock{})
}

// NewEngineWithClock is NewEngine with an injectable clock.
func NewEngineWithClock(spec, timezone string, dispatcher Dispatcher, locker lock.Locker, logger *zap.Logger, clk clock.Clock) (*Engine, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	return &Engine{
		spec:       spec,
		loc:        loc,
		dispatcher: dispatcher,
		locker:     locker,
		logger:     logger,
		clock:      clk,
		lockTTL:    DefaultLockTTL,
	}, nil
}

// Next returns the next fire time after the engine clock's now.
func (e *Engine) Next() time.Time {
	next, _ := NextFireTime(e.spec, e.loc.String(), e.clock.Now())
	return next
}

// Run blocks until ctx is done, firing the dispatch on schedule. A run in progress when ctx
// ends is allowed to observe the cancellation and finish.
func (e *Engine) Run(ctx context.Context) error {
	cl := cronLogger{s: e.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(e.loc),
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(e.spec, func() {
		if err := e.Fire(ctx); err != nil {
			e.logger.Error("scheduled dispatch failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule dispatch: %w", err)
	}

	e.logger.Info("scheduler started",
		zap.String("cron", e.spec),
		zap.String("timezone", e.loc.String()),
		zap.Time("next_fire_at", e.Next()))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	e.logger.Info("scheduler stopped")
	return ctx.Err()
}

// Fire runs one dispatch for today unless another replica already holds today's lock.
// The lock is kept after a successful run so that the day is dispatched once, and released
// after a failed run so that a later trigger may retry.
func (e *Engine) Fire(ctx context.Context) error {
	today := clock.Today(e.clock, e.loc)
	day := models.FormatDate(today)
	release, err := e.locker.Acquire(ctx, "dispatch:"+day, e.lockTTL)
	if errors.Is(err, lock.ErrLocked) {
		e.logger.Info("dispatch already claimed by another replica", zap.String("date", day))
		return nil
	}
	if err != nil {
		return err
	}

	// the locked day is the dispatched day, even when the tick straddles midnight
	summary, err := e.dispatcher.RunDispatch(ctx, today)
	if err != nil {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			e.logger.Warn("failed to release dispatch lock", zap.Error(relErr))
		}
		return fmt.Errorf("dispatch %s: %w", day, err)
	}

	e.logger.Info("scheduled dispatch completed",
		zap.String("run_id", summary.RunID),
		zap.String("date", summary.Date),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed))
	return nil
}
