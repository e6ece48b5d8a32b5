package fakes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/internal/storage"
)

// FakeRepository is an in-memory implementation of the storage.Client surface.
// Error fields, when set, are returned by the matching method.
type FakeRepository struct {
	mu         sync.Mutex
	Events     []models.Event
	Templates  map[string]models.Template // by event type
	Recipients []models.Recipient
	Links      map[string][]string // event id -> recipient ids
	Logs       []models.DeliveryLog

	ListEventsErr error
	TemplateErr   error
	RecipientsErr error
	AppendErr     error
	AppendFailFor map[string]bool // recipient ids whose log write fails
	ListLogsErr   error
	nextLogID     int
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		Templates:     make(map[string]models.Template),
		Links:         make(map[string][]string),
		AppendFailFor: make(map[string]bool),
	}
}

// AddEvent stores an event dated date (YYYY-MM-DD).
func (f *FakeRepository) AddEvent(id, eventType, date string) models.Event {
	d, err := models.ParseDate(date)
	if err != nil {
		panic(err)
	}
	ev := models.Event{ID: id, EventType: eventType, EventDate: d, CreatedAt: time.Now().UTC()}
	f.mu.Lock()
	f.Events = append(f.Events, ev)
	f.mu.Unlock()
	return ev
}

func (f *FakeRepository) AddTemplate(eventType, content string) models.Template {
	t := models.Template{ID: "tmpl-" + eventType, EventType: eventType, Content: content}
	f.mu.Lock()
	f.Templates[eventType] = t
	f.mu.Unlock()
	return t
}

// AddRecipient stores a recipient and links it to the given events.
func (f *FakeRepository) AddRecipient(id, name, email string, eventIDs ...string) models.Recipient {
	r := models.Recipient{ID: id, Name: name, Email: email}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Recipients = append(f.Recipients, r)
	for _, ev := range eventIDs {
		f.Links[ev] = append(f.Links[ev], id)
	}
	return r
}

// DeliveryLogs returns a copy of the appended logs.
func (f *FakeRepository) DeliveryLogs() []models.DeliveryLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DeliveryLog(nil), f.Logs...)
}

func (f *FakeRepository) CreateEvent(_ context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	f.Events = append(f.Events, *event)
	return nil
}

func (f *FakeRepository) GetEvent(_ context.Context, eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.Events {
		if ev.ID == eventID {
			cpy := ev
			return &cpy, nil
		}
	}
	return nil, storage.ErrEventNotFound
}

func (f *FakeRepository) ListEvents(_ context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListEventsErr != nil {
		return nil, f.ListEventsErr
	}
	return append([]models.Event{}, f.Events...), nil
}

func (f *FakeRepository) ListEventsByDate(_ context.Context, date time.Time) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListEventsErr != nil {
		return nil, f.ListEventsErr
	}
	out := make([]models.Event, 0)
	want := models.FormatDate(date)
	for _, ev := range f.Events {
		if ev.Date() == want {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *FakeRepository) CreateTemplate(_ context.Context, tmpl *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Templates[tmpl.EventType]; ok {
		return storage.ErrTemplateExists
	}
	f.Templates[tmpl.EventType] = *tmpl
	return nil
}

func (f *FakeRepository) GetTemplateByEventType(_ context.Context, eventType string) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TemplateErr != nil {
		return nil, f.TemplateErr
	}
	t, ok := f.Templates[eventType]
	if !ok {
		return nil, storage.ErrTemplateNotFound
	}
	return &t, nil
}

func (f *FakeRepository) ListTemplates(_ context.Context) ([]models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Template, 0, len(f.Templates))
	for _, t := range f.Templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventType < out[j].EventType })
	return out, nil
}

func (f *FakeRepository) CreateRecipient(_ context.Context, r *models.Recipient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Recipients = append(f.Recipients, *r)
	return nil
}

func (f *FakeRepository) GetRecipient(_ context.Context, recipientID string) (*models.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Recipients {
		if r.ID == recipientID {
			cpy := r
			return &cpy, nil
		}
	}
	return nil, storage.ErrRecipientNotFound
}

func (f *FakeRepository) ListRecipients(_ context.Context) ([]models.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RecipientsErr != nil {
		return nil, f.RecipientsErr
	}
	return append([]models.Recipient{}, f.Recipients...), nil
}

func (f *FakeRepository) LinkRecipient(_ context.Context, eventID, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.Links[eventID] {
		if id == recipientID {
			return nil
		}
	}
	f.Links[eventID] = append(f.Links[eventID], recipientID)
	return nil
}

func (f *FakeRepository) ListLinkedRecipients(_ context.Context, eventID string) ([]models.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RecipientsErr != nil {
		return nil, f.RecipientsErr
	}
	out := make([]models.Recipient, 0)
	for _, id := range f.Links[eventID] {
		for _, r := range f.Recipients {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// ListRecipientsForEvent resolves through links, so the fake is also a RecipientResolver.
func (f *FakeRepository) ListRecipientsForEvent(ctx context.Context, eventID string) ([]models.Recipient, error) {
	return f.ListLinkedRecipients(ctx, eventID)
}

func (f *FakeRepository) AppendDeliveryLog(ctx context.Context, entry *models.DeliveryLog) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AppendErr != nil {
		return "", f.AppendErr
	}
	if f.AppendFailFor[entry.RecipientID] {
		return "", errors.New("delivery log write failed")
	}
	f.nextLogID++
	e := *entry
	e.ID = fmt.Sprintf("log-%d", f.nextLogID)
	f.Logs = append(f.Logs, e)
	return e.ID, nil
}

func (f *FakeRepository) GetDeliveryLog(_ context.Context, id string) (*models.DeliveryLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.Logs {
		if l.ID == id {
			cpy := l
			return &cpy, nil
		}
	}
	return nil, storage.ErrDeliveryLogNotFound
}

func (f *FakeRepository) ListDeliveryLogs(_ context.Context, q models.ListDeliveriesQuery) ([]models.DeliveryLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListLogsErr != nil {
		return nil, 0, f.ListLogsErr
	}
	out := make([]models.DeliveryLog, 0)
	for _, l := range f.Logs {
		if q.EventID != "" && l.EventID != q.EventID {
			continue
		}
		if q.RecipientID != "" && l.RecipientID != q.RecipientID {
			continue
		}
		if q.RunID != "" && l.RunID != q.RunID {
			continue
		}
		if q.Status != "" && string(l.Status) != q.Status {
			continue
		}
		out = append(out, l)
	}
	total := int64(len(out))
	page, limit := q.PageBounds()
	start := (page - 1) * limit
	if start > len(out) {
		return []models.DeliveryLog{}, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}
