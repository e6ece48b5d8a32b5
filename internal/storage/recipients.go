package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
)

// ErrRecipientNotFound is returned when a recipient is not found.
var ErrRecipientNotFound = errors.New("recipient not found")

type recipientRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

func (r recipientRow) toModel() models.Recipient {
	return models.Recipient{ID: r.ID, Name: r.Name, Email: r.Email, CreatedAt: r.CreatedAt}
}

// CreateRecipient inserts a recipient. The email address is stored as given.
func (c *Client) CreateRecipient(ctx context.Context, recipient *models.Recipient) error {
	if recipient.CreatedAt.IsZero() {
		recipient.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO recipients (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		recipient.ID,
		recipient.Name,
		recipient.Email,
		recipient.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}
	return nil
}

// GetRecipient retrieves a single recipient by ID.
func (c *Client) GetRecipient(ctx context.Context, recipientID string) (*models.Recipient, error) {
	var row recipientRow
	err := c.db.GetContext(ctx, &row,
		`SELECT id, name, email, created_at FROM recipients WHERE id = ?`, recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecipientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}

	recipient := row.toModel()
	return &recipient, nil
}

// ListRecipients returns every recipient ordered by name then id.
func (c *Client) ListRecipients(ctx context.Context) ([]models.Recipient, error) {
	return c.listRecipients(ctx,
		`SELECT id, name, email, created_at FROM recipients ORDER BY name ASC, id ASC`)
}

// LinkRecipient associates a recipient with an event. Linking twice is a no-op.
func (c *Client) LinkRecipient(ctx context.Context, eventID, recipientID string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO event_recipients (event_id, recipient_id, created_at) VALUES (?, ?, ?)`,
		eventID,
		recipientID,
		time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to link recipient: %w", err)
	}
	return nil
}

// ListLinkedRecipients returns the recipients linked to eventID through event_recipients,
// ordered by name then id. An unknown event yields an empty slice.
func (c *Client) ListLinkedRecipients(ctx context.Context, eventID string) ([]models.Recipient, error) {
	return c.listRecipients(ctx, `
		SELECT r.id, r.name, r.email, r.created_at
		FROM recipients r
		INNER JOIN event_recipients er ON er.recipient_id = r.id
		WHERE er.event_id = ?
		ORDER BY r.name ASC, r.id ASC`,
		eventID)
}

func (c *Client) listRecipients(ctx context.Context, query string, args ...interface{}) ([]models.Recipient, error) {
	var rows []recipientRow
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}

	recipients := make([]models.Recipient, 0, len(rows))
	for _, r := range rows {
		recipients = append(recipients, r.toModel())
	}
	return recipients, nil
}
