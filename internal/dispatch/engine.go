// Package dispatch matches the day's events to their recipients, renders and sends one message
// per pair, and appends a delivery log row for every attempt.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dhima/notification-dispatcher/internal/delivery"
	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/internal/render"
	"github.com/dhima/notification-dispatcher/internal/storage"
	"github.com/dhima/notification-dispatcher/pkg/clock"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSubject is the subject line of every notification unless overridden.
	DefaultSubject = "Event Reminder"
	// DefaultWorkers bounds concurrent sends per event.
	DefaultWorkers = 4
)

// Engine runs dispatches. It is safe for concurrent use; each run keeps its own state.
type Engine struct {
	store      Store
	recipients RecipientResolver
	transport  delivery.Transport
	publisher  OutcomePublisher
	metrics    Recorder
	logger     *zap.Logger
	clock      clock.Clock
	location   *time.Location
	workers    int
	subject    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher forwards every persisted delivery log to p.
func WithPublisher(p OutcomePublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithMetrics records run and delivery observations in r.
func WithMetrics(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.metrics = r
		}
	}
}

// WithClock replaces the wall clock used for timestamps and "today".
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLocation sets the timezone in which RunToday determines the calendar date.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithWorkers bounds how many recipients of one event are sent to concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSubject sets the subject line of sent messages.
func WithSubject(s string) Option {
	return func(e *Engine) {
		if s != "" {
			e.subject = s
		}
	}
}

// NewEngine builds an engine over its collaborators.
func NewEngine(store Store, recipients RecipientResolver, transport delivery.Transport, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		recipients: recipients,
		transport:  transport,
		metrics:    noopRecorder{},
		logger:     logger,
		clock:      clock.RealClock{},
		location:   time.UTC,
		workers:    DefaultWorkers,
		subject:    DefaultSubject,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// RunToday dispatches for the current calendar date in the engine's location.
func (e *Engine) RunToday(ctx context.Context) (*models.DispatchSummary, error) {
	return e.RunDispatch(ctx, clock.Today(e.clock, e.location))
}

// RunDispatch sends notifications for every event scheduled on date.
//
// Only a failure to list the day's events fails the run. Everything below that level is
// reported through the summary counters and diagnostics.
func (e *Engine) RunDispatch(ctx context.Context, date time.Time) (*models.DispatchSummary, error) {
	started := e.clock.Now().UTC()
	day := models.DateOf(date, date.Location())
	summary := &models.DispatchSummary{
		RunID:     ulid.MustNew(ulid.Timestamp(started), ulid.DefaultEntropy()).String(),
		Date:      models.FormatDate(day),
		StartedAt: started,
	}
	logger := e.logger.With(zap.String("run_id", summary.RunID), zap.String("date", summary.Date))

	events, err := e.store.ListEventsByDate(ctx, day)
	if err != nil {
		err = &RepositoryError{Op: "list events by date", Err: err}
		logger.Error("dispatch run failed", zap.Error(err))
		e.metrics.ObserveRun(nil, err)
		return nil, err
	}

	if len(events) == 0 {
		summary.NothingToDo = true
		summary.Message = models.NothingToDoMessage
		summary.FinishedAt = e.clock.Now().UTC()
		logger.Info("no events scheduled")
		e.metrics.ObserveRun(summary, nil)
		return summary, nil
	}

	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	summary.Message = models.DispatchedMessage

	for _, ev := range events {
		if ctx.Err() != nil {
			break
		}
		summary.EventsProcessed++
		e.dispatchEvent(ctx, logger, summary, ev)
	}

	summary.Cancelled = ctx.Err() != nil
	summary.FinishedAt = e.clock.Now().UTC()

	logger.Info("dispatch run finished",
		zap.Int("events_processed", summary.EventsProcessed),
		zap.Int("events_skipped", summary.EventsSkipped),
		zap.Int("events_failed", summary.EventsFailed),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("unaudited", summary.Unaudited),
		zap.Bool("cancelled", summary.Cancelled))
	e.metrics.ObserveRun(summary, nil)

	return summary, nil
}

// outcome is the result of one (event, recipient) pair. A zero outcome means the pair was
// never attempted.
type outcome struct {
	attempted bool
	status    models.DeliveryStatus
	logErr    error
}

func (e *Engine) dispatchEvent(ctx context.Context, logger *zap.Logger, summary *models.DispatchSummary, ev models.Event) {
	logger = logger.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.EventType))

	tmpl, err := e.store.GetTemplateByEventType(ctx, ev.EventType)
	if tmpl == nil && err == nil {
		err = storage.ErrTemplateNotFound
	}
	if err != nil {
		if errors.Is(err, storage.ErrTemplateNotFound) {
			summary.EventsSkipped++
			summary.Diagnostics = append(summary.Diagnostics, models.Diagnostic{
				Kind:      models.DiagnosticTemplateNotFound,
				EventID:   ev.ID,
				EventType: ev.EventType,
				Message:   fmt.Sprintf("no template for event type %q", ev.EventType),
			})
			logger.Warn("skipping event without template")
			return
		}
		e.eventFailed(logger, summary, ev, &RepositoryError{Op: "get template", Err: err})
		return
	}

	recipients, err := e.recipients.ListRecipientsForEvent(ctx, ev.ID)
	if err != nil {
		e.eventFailed(logger, summary, ev, &RepositoryError{Op: "list recipients", Err: err})
		return
	}

	outcomes := make([]outcome, len(recipients))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, r := range recipients {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = e.deliver(ctx, logger, summary.RunID, ev, tmpl.Content, r)
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		if !o.attempted {
			continue
		}
		summary.Attempted++
		if o.status == models.DeliveryStatusSuccess {
			summary.Sent++
		} else {
			summary.Failed++
		}
		if o.logErr != nil {
			summary.Unaudited++
			summary.Diagnostics = append(summary.Diagnostics, models.Diagnostic{
				Kind:        models.DiagnosticLogWriteFailed,
				EventID:     ev.ID,
				EventType:   ev.EventType,
				RecipientID: recipients[i].ID,
				Message:     o.logErr.Error(),
			})
		}
	}
}

func (e *Engine) eventFailed(logger *zap.Logger, summary *models.DispatchSummary, ev models.Event, err error) {
	summary.EventsFailed++
	summary.Diagnostics = append(summary.Diagnostics, models.Diagnostic{
		Kind:      models.DiagnosticRepositoryError,
		EventID:   ev.ID,
		EventType: ev.EventType,
		Message:   err.Error(),
	})
	logger.Error("event could not be dispatched", zap.Error(err))
}

// deliver attempts one pair and records its outcome.
func (e *Engine) deliver(ctx context.Context, logger *zap.Logger, runID string, ev models.Event, content string, r models.Recipient) outcome {
	if ctx.Err() != nil {
		return outcome{}
	}
	logger = logger.With(zap.String("recipient_id", r.ID))

	sendErr := e.send(ctx, logger, ev, content, r)

	entry := models.DeliveryLog{
		RunID:       runID,
		RecipientID: r.ID,
		EventID:     ev.ID,
		Status:      models.DeliveryStatusSuccess,
		SentAt:      e.clock.Now().UTC(),
	}
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Status = models.DeliveryStatusError
		entry.ErrorMessage = &msg
		logger.Warn("delivery failed", zap.Error(sendErr))
	}
	e.metrics.ObserveDelivery(entry.Status)

	// The attempt already happened; its audit row must survive cancellation.
	auditCtx := context.WithoutCancel(ctx)
	id, err := e.store.AppendDeliveryLog(auditCtx, &entry)
	if err != nil {
		err = &RepositoryError{Op: "append delivery log", Err: err}
		logger.Error("delivery outcome not audited", zap.String("status", string(entry.Status)), zap.Error(err))
		return outcome{attempted: true, status: entry.Status, logErr: err}
	}
	entry.ID = id

	if e.publisher != nil {
		if err := e.publisher.PublishDelivery(auditCtx, entry); err != nil {
			logger.Warn("failed to publish delivery outcome", zap.String("delivery_id", id), zap.Error(err))
		}
	}
	return outcome{attempted: true, status: entry.Status}
}

// send renders and transmits one message. A panic in either step becomes an error.
func (e *Engine) send(ctx context.Context, logger *zap.Logger, ev models.Event, content string, r models.Recipient) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("recovered panic during delivery", zap.Any("panic", rec))
			err = &TransportError{Address: r.Email, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	body, err := render.Render(content, map[string]string{
		"employee_name": r.Name,
		"event_type":    ev.EventType,
		"event_date":    ev.Date(),
	})
	if err != nil {
		return &RenderError{EventType: ev.EventType, Err: err}
	}
	if err := e.transport.Send(ctx, r.Email, e.subject, body); err != nil {
		return &TransportError{Address: r.Email, Err: err}
	}
	return nil
}
