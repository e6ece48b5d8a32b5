package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
)

var (
	// ErrTemplateNotFound is returned when no template exists for an event type.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrTemplateExists is returned when a template for the event type already exists.
	ErrTemplateExists = errors.New("template already exists for event type")
)

type templateRow struct {
	ID        string    `db:"id"`
	EventType string    `db:"event_type"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (r templateRow) toModel() models.Template {
	return models.Template{ID: r.ID, EventType: r.EventType, Content: r.Content, CreatedAt: r.CreatedAt}
}

// CreateTemplate inserts a template. At most one template may exist per event type.
func (c *Client) CreateTemplate(ctx context.Context, tmpl *models.Template) error {
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO templates (id, event_type, content, created_at) VALUES (?, ?, ?, ?)`,
		tmpl.ID,
		tmpl.EventType,
		tmpl.Content,
		tmpl.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTemplateExists
		}
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// GetTemplateByEventType returns the template for eventType or ErrTemplateNotFound.
func (c *Client) GetTemplateByEventType(ctx context.Context, eventType string) (*models.Template, error) {
	var row templateRow
	err := c.db.GetContext(ctx, &row,
		`SELECT id, event_type, content, created_at FROM templates WHERE event_type = ?`, eventType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	tmpl := row.toModel()
	return &tmpl, nil
}

// ListTemplates returns every template ordered by event type.
func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var rows []templateRow
	if err := c.db.SelectContext(ctx, &rows,
		`SELECT id, event_type, content, created_at FROM templates ORDER BY event_type ASC`); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make([]models.Template, 0, len(rows))
	for _, r := range rows {
		templates = append(templates, r.toModel())
	}
	return templates, nil
}
