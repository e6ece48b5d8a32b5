package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dhima/notification-dispatcher/internal/delivery"
	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/internal/render"
	"github.com/dhima/notification-dispatcher/internal/testutil/fakes"
	"github.com/dhima/notification-dispatcher/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var runDate = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

type countingRecorder struct {
	mu         sync.Mutex
	deliveries map[models.DeliveryStatus]int
	runs       int
	runErrs    int
}

func (r *countingRecorder) ObserveDelivery(status models.DeliveryStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deliveries == nil {
		r.deliveries = make(map[models.DeliveryStatus]int)
	}
	r.deliveries[status]++
}

func (r *countingRecorder) ObserveRun(_ *models.DispatchSummary, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	if err != nil {
		r.runErrs++
	}
}

func newEngine(repo *fakes.FakeRepository, tr *fakes.FakeTransport, opts ...Option) *Engine {
	opts = append([]Option{WithClock(clock.NewFixed(time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)))}, opts...)
	return NewEngine(repo, repo, tr, zap.NewNop(), opts...)
}

func birthdayFixture() *fakes.FakeRepository {
	repo := fakes.NewFakeRepository()
	repo.AddEvent("ev-1", "Birthday", "2025-01-02")
	repo.AddTemplate("Birthday", "Happy Birthday, {employee_name}!")
	repo.AddRecipient("r-1", "John Doe", "john@example.com", "ev-1")
	repo.AddRecipient("r-2", "Jane Smith", "jane@example.com", "ev-1")
	return repo
}

func TestRunDispatch_BirthdayScenario_SendsAndLogsEveryRecipient(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	tr := fakes.NewFakeTransport()
	pub := &fakes.FakePublisher{}
	rec := &countingRecorder{}
	eng := newEngine(repo, tr, WithPublisher(pub), WithMetrics(rec))

	// Act
	summary, err := eng.RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.False(t, summary.NothingToDo)
	assert.Equal(t, models.DispatchedMessage, summary.Message)
	assert.Equal(t, "2025-01-02", summary.Date)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.EventsProcessed)
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, summary.Diagnostics)

	bodies := map[string]string{}
	for _, m := range tr.Messages() {
		assert.Equal(t, DefaultSubject, m.Subject)
		bodies[m.To] = m.Body
	}
	assert.Equal(t, map[string]string{
		"john@example.com": "Happy Birthday, John Doe!",
		"jane@example.com": "Happy Birthday, Jane Smith!",
	}, bodies)

	logs := repo.DeliveryLogs()
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, summary.RunID, l.RunID)
		assert.Equal(t, "ev-1", l.EventID)
		assert.Equal(t, models.DeliveryStatusSuccess, l.Status)
		assert.Nil(t, l.ErrorMessage)
		assert.False(t, l.SentAt.IsZero())
	}

	assert.Len(t, pub.Published(), 2)
	assert.Equal(t, 2, rec.deliveries[models.DeliveryStatusSuccess])
	assert.Equal(t, 1, rec.runs)
}

func TestRunDispatch_WhenOnlyTomorrowHasEvents_ThenNothingToDo(t *testing.T) {
	// Arrange
	repo := fakes.NewFakeRepository()
	repo.AddEvent("ev-1", "Birthday", "2025-01-03")
	repo.AddTemplate("Birthday", "Happy Birthday, {employee_name}!")
	repo.AddRecipient("r-1", "John Doe", "john@example.com", "ev-1")
	tr := fakes.NewFakeTransport()

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.True(t, summary.NothingToDo)
	assert.Equal(t, models.NothingToDoMessage, summary.Message)
	assert.Zero(t, summary.EventsProcessed)
	assert.Zero(t, summary.Attempted)
	assert.Zero(t, summary.Sent)
	assert.Zero(t, summary.Failed)
	assert.Empty(t, repo.DeliveryLogs())
	assert.Zero(t, tr.Calls())
}

func TestRunDispatch_WhenAddressInvalid_ThenOnlyThatRecipientFails(t *testing.T) {
	// Arrange
	repo := fakes.NewFakeRepository()
	repo.AddEvent("ev-1", "Birthday", "2025-01-02")
	repo.AddTemplate("Birthday", "Happy Birthday, {employee_name}!")
	repo.AddRecipient("r-1", "John Doe", "john@example.com", "ev-1")
	repo.AddRecipient("r-2", "Broken", "invalid-email-format", "ev-1")
	tr := fakes.NewFakeTransport()

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)

	byRecipient := map[string]models.DeliveryLog{}
	for _, l := range repo.DeliveryLogs() {
		byRecipient[l.RecipientID] = l
	}
	require.Len(t, byRecipient, 2)
	assert.Equal(t, models.DeliveryStatusSuccess, byRecipient["r-1"].Status)
	failed := byRecipient["r-2"]
	assert.Equal(t, models.DeliveryStatusError, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Contains(t, *failed.ErrorMessage, delivery.ErrInvalidAddress.Error())
}

func TestRunDispatch_WhenTemplateMissing_ThenOnlyThatEventIsSkipped(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	repo.AddEvent("ev-2", "Retirement", "2025-01-02")
	repo.AddRecipient("r-3", "Old Timer", "old@example.com", "ev-2")
	tr := fakes.NewFakeTransport()

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.EventsProcessed)
	assert.Equal(t, 1, summary.EventsSkipped)
	assert.Equal(t, 2, summary.Sent)
	require.Len(t, summary.Diagnostics, 1)
	assert.Equal(t, models.DiagnosticTemplateNotFound, summary.Diagnostics[0].Kind)
	assert.Equal(t, "ev-2", summary.Diagnostics[0].EventID)

	for _, l := range repo.DeliveryLogs() {
		assert.Equal(t, "ev-1", l.EventID)
	}
}

func TestRunDispatch_LogCountEqualsResolvedRecipients(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	repo.AddEvent("ev-0", "Birthday", "2025-01-02")
	repo.AddRecipient("r-3", "Ann Lee", "ann@example.com", "ev-0", "ev-1")
	repo.AddEvent("ev-9", "Birthday", "2025-01-02") // no recipients
	tr := fakes.NewFakeTransport()

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, summary.EventsProcessed)
	assert.Equal(t, 4, summary.Attempted)
	assert.Len(t, repo.DeliveryLogs(), 4)
}

func TestRunDispatch_WhenRerunForSameDate_ThenLogsAreDuplicated(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	tr := fakes.NewFakeTransport()
	eng := newEngine(repo, tr)

	// Act
	first, err := eng.RunDispatch(context.Background(), runDate)
	require.NoError(t, err)
	second, err := eng.RunDispatch(context.Background(), runDate)
	require.NoError(t, err)

	// Assert
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Len(t, repo.DeliveryLogs(), 4)
	assert.Len(t, tr.Messages(), 4)
}

func TestRunDispatch_WhenLogWriteFails_ThenOutcomeCountedAsUnaudited(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	repo.AppendFailFor["r-2"] = true
	tr := fakes.NewFakeTransport()

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Unaudited)
	require.Len(t, summary.Diagnostics, 1)
	assert.Equal(t, models.DiagnosticLogWriteFailed, summary.Diagnostics[0].Kind)
	assert.Equal(t, "r-2", summary.Diagnostics[0].RecipientID)
	assert.Len(t, repo.DeliveryLogs(), 1)
}

func TestRunDispatch_WhenListingEventsFails_ThenRunFails(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	repo.ListEventsErr = errors.New("connection refused")
	rec := &countingRecorder{}

	// Act
	summary, err := newEngine(repo, fakes.NewFakeTransport(), WithMetrics(rec)).RunDispatch(context.Background(), runDate)

	// Assert
	assert.Nil(t, summary)
	var repoErr *RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "list events by date", repoErr.Op)
	assert.Equal(t, 1, rec.runErrs)
	assert.Empty(t, repo.DeliveryLogs())
}

func TestRunDispatch_WhenTemplateLookupFails_ThenEventCountedAsFailed(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	repo.TemplateErr = errors.New("timeout")
	tr := fakes.NewFakeTransport()

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EventsFailed)
	require.Len(t, summary.Diagnostics, 1)
	assert.Equal(t, models.DiagnosticRepositoryError, summary.Diagnostics[0].Kind)
	assert.Zero(t, tr.Calls())
}

func TestRunDispatch_WhenRecipientLookupFails_ThenEventCountedAsFailed(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	repo.RecipientsErr = errors.New("timeout")

	// Act
	summary, err := newEngine(repo, fakes.NewFakeTransport()).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EventsFailed)
	assert.Equal(t, models.DiagnosticRepositoryError, summary.Diagnostics[0].Kind)
}

func TestRunDispatch_WhenTemplateCannotRender_ThenErrorLogged(t *testing.T) {
	// Arrange
	repo := fakes.NewFakeRepository()
	repo.AddEvent("ev-1", "Birthday", "2025-01-02")
	repo.AddTemplate("Birthday", "Hello {nickname}")
	repo.AddRecipient("r-1", "John Doe", "john@example.com", "ev-1")
	tr := fakes.NewFakeTransport()

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, tr.Calls())
	logs := repo.DeliveryLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.DeliveryStatusError, logs[0].Status)
	assert.Contains(t, *logs[0].ErrorMessage, render.ErrMissingVariable.Error())
}

func TestRunDispatch_RendersEventTypeAndDate(t *testing.T) {
	// Arrange
	repo := fakes.NewFakeRepository()
	repo.AddEvent("ev-1", "Work Anniversary", "2025-01-02")
	repo.AddTemplate("Work Anniversary", "{employee_name}: {event_type} on {event_date}")
	repo.AddRecipient("r-1", "John Doe", "john@example.com", "ev-1")
	tr := fakes.NewFakeTransport()

	// Act
	_, err := newEngine(repo, tr, WithSubject("Heads up")).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	msgs := tr.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "John Doe: Work Anniversary on 2025-01-02", msgs[0].Body)
	assert.Equal(t, "Heads up", msgs[0].Subject)
}

func TestRunDispatch_WhenTransportPanics_ThenRecoveredAsErrorOutcome(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	tr := fakes.NewFakeTransport()
	tr.PanicFor["jane@example.com"] = true

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	for _, l := range repo.DeliveryLogs() {
		if l.RecipientID == "r-2" {
			require.NotNil(t, l.ErrorMessage)
			assert.Contains(t, *l.ErrorMessage, "panic")
		}
	}
}

func TestRunDispatch_WhenTransportFails_ThenTypedErrorMessageStored(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	tr := fakes.NewFakeTransport()
	tr.FailFor["john@example.com"] = errors.New("mailbox unavailable")

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	for _, l := range repo.DeliveryLogs() {
		if l.RecipientID == "r-1" {
			assert.Equal(t, "send to john@example.com: mailbox unavailable", *l.ErrorMessage)
		}
	}
}

func TestRunDispatch_WhenCancelledBeforeStart_ThenNoAttempts(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	tr := fakes.NewFakeTransport()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	summary, err := newEngine(repo, tr).RunDispatch(ctx, runDate)

	// Assert
	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	assert.Zero(t, summary.EventsProcessed)
	assert.Zero(t, tr.Calls())
	assert.Empty(t, repo.DeliveryLogs())
}

func TestRunDispatch_WhenCancelledMidRun_ThenInFlightAttemptStillAudited(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	repo.AddRecipient("r-3", "Ann Lee", "ann@example.com", "ev-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr := fakes.NewFakeTransport()
	tr.OnSend = func(context.Context, string) { cancel() }

	// Act
	summary, err := newEngine(repo, tr, WithWorkers(1)).RunDispatch(ctx, runDate)

	// Assert
	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	assert.Equal(t, 1, summary.Attempted)
	assert.Equal(t, 1, tr.Calls())
	assert.Len(t, repo.DeliveryLogs(), 1)
	assert.Zero(t, summary.Unaudited)
}

func TestRunDispatch_BoundsConcurrentSends(t *testing.T) {
	// Arrange
	repo := fakes.NewFakeRepository()
	repo.AddEvent("ev-1", "Birthday", "2025-01-02")
	repo.AddTemplate("Birthday", "Hi {employee_name}")
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		repo.AddRecipient(id, "Name "+id, id+"@example.com", "ev-1")
	}
	var inFlight, peak atomic.Int32
	tr := fakes.NewFakeTransport()
	tr.OnSend = func(context.Context, string) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
	}

	// Act
	summary, err := newEngine(repo, tr, WithWorkers(2)).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Sent)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunDispatch_WhenPublisherFails_ThenDeliveryStillSucceeds(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	pub := &fakes.FakePublisher{FailAll: true}

	// Act
	summary, err := newEngine(repo, fakes.NewFakeTransport(), WithPublisher(pub)).RunDispatch(context.Background(), runDate)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sent)
	assert.Len(t, repo.DeliveryLogs(), 2)
}

func TestRunToday_UsesClockInConfiguredLocation(t *testing.T) {
	// Arrange
	repo := birthdayFixture()
	tokyo := time.FixedZone("JST", 9*60*60)
	eng := NewEngine(repo, repo, fakes.NewFakeTransport(), zap.NewNop(),
		WithClock(clock.NewFixed(time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC))),
		WithLocation(tokyo))

	// Act
	summary, err := eng.RunToday(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", summary.Date)
	assert.Equal(t, 2, summary.Sent)
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	assert.ErrorIs(t, &RenderError{EventType: "Birthday", Err: cause}, cause)
	assert.ErrorIs(t, &TransportError{Address: "a@example.com", Err: cause}, cause)
	assert.ErrorIs(t, &RepositoryError{Op: "op", Err: cause}, cause)
}
