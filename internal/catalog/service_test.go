package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/internal/storage"
	"github.com/dhima/notification-dispatcher/internal/testutil/fakes"
	"github.com/dhima/notification-dispatcher/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixed() time.Time { return time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC) }

func newService(repo *fakes.FakeRepository) *Service {
	return NewServiceWithClock(repo, repo, zap.NewNop(), clock.NewFixed(fixed()))
}

func TestCreateEvent_StoresTrimmedTypeAndDate(t *testing.T) {
	repo := fakes.NewFakeRepository()
	svc := newService(repo)

	ev, err := svc.CreateEvent(context.Background(), models.CreateEventRequest{EventType: "  Birthday ", EventDate: "2025-01-02"})

	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Birthday", ev.EventType)
	assert.Equal(t, "2025-01-02", ev.Date())
	assert.Equal(t, fixed(), ev.CreatedAt)
	assert.Len(t, repo.Events, 1)
}

func TestCreateEvent_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateEventRequest
	}{
		{name: "blank type", req: models.CreateEventRequest{EventType: "  ", EventDate: "2025-01-02"}},
		{name: "bad date", req: models.CreateEventRequest{EventType: "Birthday", EventDate: "02/01/2025"}},
		{name: "timestamp instead of date", req: models.CreateEventRequest{EventType: "Birthday", EventDate: "2025-01-02T00:00:00Z"}},
		{name: "impossible date", req: models.CreateEventRequest{EventType: "Birthday", EventDate: "2025-02-30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(fakes.NewFakeRepository())

			_, err := svc.CreateEvent(context.Background(), tt.req)

			var ve ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestListEvents_FiltersByDate(t *testing.T) {
	repo := fakes.NewFakeRepository()
	repo.AddEvent("ev-1", "Birthday", "2025-01-02")
	repo.AddEvent("ev-2", "Birthday", "2025-01-03")
	svc := newService(repo)

	all, err := svc.ListEvents(context.Background(), models.ListEventsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	today, err := svc.ListEvents(context.Background(), models.ListEventsQuery{Date: "2025-01-03"})
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "ev-2", today[0].ID)

	_, err = svc.ListEvents(context.Background(), models.ListEventsQuery{Date: "tomorrow"})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCreateTemplate_ValidatesPlaceholders(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "all variables", content: "{employee_name}: {event_type} on {event_date}"},
		{name: "no placeholders", content: "Have a great day!"},
		{name: "unknown placeholder", content: "Hi {nickname}", wantErr: true},
		{name: "unclosed brace", content: "Hi {employee_name", wantErr: true},
		{name: "format spec", content: "Hi {employee_name:>5}", wantErr: true},
		{name: "empty", content: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(fakes.NewFakeRepository())

			tmpl, err := svc.CreateTemplate(context.Background(), models.CreateTemplateRequest{EventType: "Birthday", Content: tt.content})

			if tt.wantErr {
				var ve ValidationError
				assert.ErrorAs(t, err, &ve)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.content, tmpl.Content)
		})
	}
}

func TestCreateTemplate_DuplicateEventTypeConflicts(t *testing.T) {
	repo := fakes.NewFakeRepository()
	svc := newService(repo)
	req := models.CreateTemplateRequest{EventType: "Birthday", Content: "Happy Birthday, {employee_name}!"}

	_, err := svc.CreateTemplate(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.CreateTemplate(context.Background(), req)

	assert.ErrorIs(t, err, storage.ErrTemplateExists)
}

func TestCreateRecipient_KeepsEmailAsGiven(t *testing.T) {
	repo := fakes.NewFakeRepository()
	svc := newService(repo)

	r, err := svc.CreateRecipient(context.Background(), models.CreateRecipientRequest{Name: "Broken", Email: "invalid-email-format"})

	require.NoError(t, err)
	assert.Equal(t, "invalid-email-format", r.Email)

	_, err = svc.CreateRecipient(context.Background(), models.CreateRecipientRequest{Name: " ", Email: "a@example.com"})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLinkRecipient_RequiresExistingEventAndRecipient(t *testing.T) {
	repo := fakes.NewFakeRepository()
	repo.AddEvent("ev-1", "Birthday", "2025-01-02")
	repo.AddRecipient("r-1", "John Doe", "john@example.com")
	svc := newService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, svc.LinkRecipient(ctx, "missing", models.LinkRecipientRequest{RecipientID: "r-1"}), storage.ErrEventNotFound)
	assert.ErrorIs(t, svc.LinkRecipient(ctx, "ev-1", models.LinkRecipientRequest{RecipientID: "missing"}), storage.ErrRecipientNotFound)

	require.NoError(t, svc.LinkRecipient(ctx, "ev-1", models.LinkRecipientRequest{RecipientID: "r-1"}))
	got, err := svc.ListRecipientsForEvent(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r-1", got[0].ID)

	_, err = svc.ListRecipientsForEvent(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrEventNotFound))
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("field %s is bad", "x")
	assert.Equal(t, "field x is bad", err.Error())
}
