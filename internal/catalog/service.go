// Package catalog manages the events, templates and recipients that dispatch runs read.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/internal/render"
	"github.com/dhima/notification-dispatcher/pkg/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TemplateVariables are the placeholders a template may reference.
var TemplateVariables = []string{"employee_name", "event_type", "event_date"}

// Store defines the storage methods required by the catalog service.
type Store interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByDate(ctx context.Context, date time.Time) ([]models.Event, error)
	CreateTemplate(ctx context.Context, tmpl *models.Template) error
	ListTemplates(ctx context.Context) ([]models.Template, error)
	CreateRecipient(ctx context.Context, recipient *models.Recipient) error
	GetRecipient(ctx context.Context, recipientID string) (*models.Recipient, error)
	ListRecipients(ctx context.Context) ([]models.Recipient, error)
	LinkRecipient(ctx context.Context, eventID, recipientID string) error
}

// RecipientResolver maps an event to its recipients under the configured policy.
type RecipientResolver interface {
	ListRecipientsForEvent(ctx context.Context, eventID string) ([]models.Recipient, error)
}

// Service encapsulates catalog business logic.
type Service struct {
	store    Store
	resolver RecipientResolver
	logger   *zap.Logger
	clock    clock.Clock
}

// NewService creates a catalog service.
func NewService(store Store, resolver RecipientResolver, logger *zap.Logger) *Service {
	return NewServiceWithClock(store, resolver, logger, clock.RealClock{})
}

// NewServiceWithClock creates a catalog service with an injectable clock.
func NewServiceWithClock(store Store, resolver RecipientResolver, logger *zap.Logger, clk clock.Clock) *Service {
	return &Service{store: store, resolver: resolver, logger: logger, clock: clk}
}

// CreateEvent validates and stores a new event.
func (s *Service) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	eventType := strings.TrimSpace(req.EventType)
	if eventType == "" {
		return nil, NewValidationError("event_type is required")
	}
	date, err := parseRequestDate(req.EventDate)
	if err != nil {
		return nil, err
	}

	event := models.Event{
		ID:        uuid.New().String(),
		EventType: eventType,
		EventDate: date,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.CreateEvent(ctx, &event); err != nil {
		return nil, err
	}
	s.logger.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.EventType),
		zap.String("event_date", event.Date()))
	return &event, nil
}

// ListEvents returns every event, or only those on query.Date when set.
func (s *Service) ListEvents(ctx context.Context, query models.ListEventsQuery) ([]models.Event, error) {
	if query.Date == "" {
		return s.store.ListEvents(ctx)
	}
	date, err := parseRequestDate(query.Date)
	if err != nil {
		return nil, err
	}
	return s.store.ListEventsByDate(ctx, date)
}

// CreateTemplate validates the template's placeholders and stores it. A second template for
// the same event type fails with storage.ErrTemplateExists.
func (s *Service) CreateTemplate(ctx context.Context, req models.CreateTemplateRequest) (*models.Template, error) {
	eventType := strings.TrimSpace(req.EventType)
	if eventType == "" {
		return nil, NewValidationError("event_type is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, NewValidationError("content is required")
	}
	names, err := render.Placeholders(req.Content)
	if err != nil {
		return nil, NewValidationError("content: %v", err)
	}
	for _, name := range names {
		if !isTemplateVariable(name) {
			return nil, NewValidationError("content: unknown placeholder {%s}; allowed: %s", name, strings.Join(TemplateVariables, ", "))
		}
	}

	tmpl := models.Template{
		ID:        uuid.New().String(),
		EventType: eventType,
		Content:   req.Content,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.CreateTemplate(ctx, &tmpl); err != nil {
		return nil, err
	}
	s.logger.Info("template created", zap.String("template_id", tmpl.ID), zap.String("event_type", eventType))
	return &tmpl, nil
}

// ListTemplates returns all templates.
func (s *Service) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return s.store.ListTemplates(ctx)
}

// CreateRecipient stores a recipient. The address is kept as given; a bad address
// surfaces as a failed delivery when dispatched.
func (s *Service) CreateRecipient(ctx context.Context, req models.CreateRecipientRequest) (*models.Recipient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, NewValidationError("email is required")
	}

	r := models.Recipient{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     req.Email,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.CreateRecipient(ctx, &r); err != nil {
		return nil, err
	}
	s.logger.Info("recipient created", zap.String("recipient_id", r.ID))
	return &r, nil
}

// ListRecipients returns the whole directory.
func (s *Service) ListRecipients(ctx context.Context) ([]models.Recipient, error) {
	return s.store.ListRecipients(ctx)
}

// LinkRecipient attaches an existing recipient to an existing event.
func (s *Service) LinkRecipient(ctx context.Context, eventID string, req models.LinkRecipientRequest) error {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return err
	}
	if _, err := s.store.GetRecipient(ctx, req.RecipientID); err != nil {
		return err
	}
	if err := s.store.LinkRecipient(ctx, eventID, req.RecipientID); err != nil {
		return err
	}
	s.logger.Info("recipient linked", zap.String("event_id", eventID), zap.String("recipient_id", req.RecipientID))
	return nil
}

// ListRecipientsForEvent returns who a dispatch of eventID would notify.
func (s *Service) ListRecipientsForEvent(ctx context.Context, eventID string) ([]models.Recipient, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.resolver.ListRecipientsForEvent(ctx, eventID)
}

// parseRequestDate accepts exactly YYYY-MM-DD.
func parseRequestDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(models.DateLayout) {
		return time.Time{}, NewValidationError("invalid date %q: expected YYYY-MM-DD", s)
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, NewValidationError("%s", err.Error())
	}
	return d, nil
}

func isTemplateVariable(name string) bool {
	for _, v := range TemplateVariables {
		if v == name {
			return true
		}
	}
	return false
}
