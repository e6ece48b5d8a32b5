package dispatch

import (
	"context"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
)

// EventSource lists the events scheduled for a calendar date.
type EventSource interface {
	ListEventsByDate(ctx context.Context, date time.Time) ([]models.Event, error)
}

// TemplateSource looks up the template for an event type.
type TemplateSource interface {
	GetTemplateByEventType(ctx context.Context, eventType string) (*models.Template, error)
}

// RecipientResolver maps an event to the recipients that should receive it.
type RecipientResolver interface {
	ListRecipientsForEvent(ctx context.Context, eventID string) ([]models.Recipient, error)
}

// DeliveryLogWriter appends audit rows. Implementations must be safe for concurrent use.
type DeliveryLogWriter interface {
	AppendDeliveryLog(ctx context.Context, entry *models.DeliveryLog) (string, error)
}

// Store is the repository surface the engine reads from and writes to.
type Store interface {
	EventSource
	TemplateSource
	DeliveryLogWriter
}

// OutcomePublisher forwards persisted delivery logs to downstream consumers.
type OutcomePublisher interface {
	PublishDelivery(ctx context.Context, entry models.DeliveryLog) error
}

// Recorder receives run and delivery observations.
type Recorder interface {
	ObserveDelivery(status models.DeliveryStatus)
	ObserveRun(summary *models.DispatchSummary, err error)
}

type noopRecorder struct{}

func (noopRecorder) ObserveDelivery(models.DeliveryStatus) {}
func (noopRecorder) ObserveRun(*models.DispatchSummary, error) {}
