package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
)

// ErrEventNotFound is returned when an event is not found.
var ErrEventNotFound = errors.New("event not found")

type eventRow struct {
	ID        string    `db:"id"`
	EventType string    `db:"event_type"`
	EventDate string    `db:"event_date"`
	CreatedAt time.Time `db:"created_at"`
}

func (r eventRow) toModel() (models.Event, error) {
	date, err := models.ParseDate(r.EventDate)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s: %w", r.ID, err)
	}
	return models.Event{ID: r.ID, EventType: r.EventType, EventDate: date, CreatedAt: r.CreatedAt}, nil
}

// CreateEvent inserts a new event.
func (c *Client) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO events (id, event_type, event_date, created_at) VALUES (?, ?, ?, ?)`,
		event.ID,
		event.EventType,
		event.Date(),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEvent retrieves a single event by ID.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var row eventRow
	err := c.db.GetContext(ctx, &row,
		`SELECT id, event_type, event_date, created_at FROM events WHERE id = ?`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	event, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEventsByDate returns the events falling on date, ordered by id ascending.
// An empty slice (never nil) is returned when nothing matches.
func (c *Client) ListEventsByDate(ctx context.Context, date time.Time) ([]models.Event, error) {
	return c.listEvents(ctx,
		`SELECT id, event_type, event_date, created_at FROM events WHERE event_date = ? ORDER BY id ASC`,
		models.FormatDate(date))
}

// ListEvents returns every event ordered by date then id.
func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	return c.listEvents(ctx,
		`SELECT id, event_type, event_date, created_at FROM events ORDER BY event_date ASC, id ASC`)
}

func (c *Client) listEvents(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	var rows []eventRow
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]models.Event, 0, len(rows))
	for _, r := range rows {
		event, err := r.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
