package fakes

import (
	"context"
	"sync"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/pkg/clock"
)

// FakeDispatcher records dispatch calls and returns a canned summary or error.
type FakeDispatcher struct {
	mu      sync.Mutex
	Summary *models.DispatchSummary
	Err     error
	Dates   []time.Time
	Clock   clock.Clock
	// CtxErrs holds ctx.Err() as seen at the start of each run.
	CtxErrs []error
	// Deadlines holds whether each run's context carried a deadline.
	Deadlines []bool
}

func (d *FakeDispatcher) RunDispatch(ctx context.Context, date time.Time) (*models.DispatchSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Dates = append(d.Dates, date)
	d.CtxErrs = append(d.CtxErrs, ctx.Err())
	_, hasDeadline := ctx.Deadline()
	d.Deadlines = append(d.Deadlines, hasDeadline)
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Summary != nil {
		cpy := *d.Summary
		return &cpy, nil
	}
	return &models.DispatchSummary{
		RunID:       "01JBQ4Z8M5YV7Q2W3E4R5T6Y7U",
		Date:        models.FormatDate(date),
		NothingToDo: true,
		Message:     models.NothingToDoMessage,
	}, nil
}

func (d *FakeDispatcher) RunToday(ctx context.Context) (*models.DispatchSummary, error) {
	c := d.Clock
	if c == nil {
		c = clock.RealClock{}
	}
	return d.RunDispatch(ctx, clock.Today(c, time.UTC))
}

// Calls returns how many runs were requested.
func (d *FakeDispatcher) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Dates)
}
