package storage

import (
	"context"
	"fmt"

	"github.com/dhima/notification-dispatcher/internal/models"
)

const (
	// PolicyLinked resolves recipients through the event_recipients join table.
	PolicyLinked = "linked"
	// PolicyAll sends every event of the day to every recipient.
	PolicyAll = "all"
)

// RecipientResolver maps an event to the recipients that should be notified about it.
type RecipientResolver interface {
	ListRecipientsForEvent(ctx context.Context, eventID string) ([]models.Recipient, error)
}

// LinkedRecipients resolves an event's recipients from explicit links.
type LinkedRecipients struct {
	client *Client
}

// ListRecipientsForEvent returns the recipients linked to eventID.
func (r LinkedRecipients) ListRecipientsForEvent(ctx context.Context, eventID string) ([]models.Recipient, error) {
	return r.client.ListLinkedRecipients(ctx, eventID)
}

// AllRecipients resolves every event to the whole recipient directory.
type AllRecipients struct {
	client *Client
}

// ListRecipientsForEvent returns all recipients regardless of eventID.
func (r AllRecipients) ListRecipientsForEvent(ctx context.Context, _ string) ([]models.Recipient, error) {
	return r.client.ListRecipients(ctx)
}

// NewRecipientResolver returns the resolver for policy.
func NewRecipientResolver(client *Client, policy string) (RecipientResolver, error) {
	switch policy {
	case "", PolicyLinked:
		return LinkedRecipients{client: client}, nil
	case PolicyAll:
		return AllRecipients{client: client}, nil
	default:
		return nil, fmt.Errorf("unknown recipient policy %q", policy)
	}
}
