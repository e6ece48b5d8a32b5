package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/google/uuid"
)

// ErrDeliveryLogNotFound is returned when a delivery log is not found.
var ErrDeliveryLogNotFound = errors.New("delivery log not found")

type deliveryLogRow struct {
	ID           string         `db:"id"`
	RunID        string         `db:"run_id"`
	RecipientID  string         `db:"recipient_id"`
	EventID      string         `db:"event_id"`
	Status       string         `db:"status"`
	ErrorMessage sql.NullString `db:"error_message"`
	SentAt       time.Time      `db:"sent_at"`
}

func (r deliveryLogRow) toModel() models.DeliveryLog {
	entry := models.DeliveryLog{
		ID:          r.ID,
		RunID:       r.RunID,
		RecipientID: r.RecipientID,
		EventID:     r.EventID,
		Status:      models.DeliveryStatus(r.Status),
		SentAt:      r.SentAt,
	}
	if r.ErrorMessage.Valid {
		msg := r.ErrorMessage.String
		entry.ErrorMessage = &msg
	}
	return entry
}

const deliveryLogColumns = `id, run_id, recipient_id, event_id, status, error_message, sent_at`

// AppendDeliveryLog inserts one audit row and returns its id. Rows are never updated.
// The id and sent_at are filled in when empty.
func (c *Client) AppendDeliveryLog(ctx context.Context, entry *models.DeliveryLog) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO delivery_logs (`+deliveryLogColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RunID,
		entry.RecipientID,
		entry.EventID,
		entry.Status,
		entry.ErrorMessage,
		entry.SentAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to append delivery log: %w", err)
	}
	return entry.ID, nil
}

// GetDeliveryLog retrieves a single delivery log by ID.
func (c *Client) GetDeliveryLog(ctx context.Context, id string) (*models.DeliveryLog, error) {
	var row deliveryLogRow
	err := c.db.GetContext(ctx, &row,
		`SELECT `+deliveryLogColumns+` FROM delivery_logs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliveryLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery log: %w", err)
	}

	entry := row.toModel()
	return &entry, nil
}

// ListDeliveryLogs retrieves delivery logs with filtering and pagination, newest first.
// Returns the page of logs and the total count for pagination.
func (c *Client) ListDeliveryLogs(ctx context.Context, query models.ListDeliveriesQuery) ([]models.DeliveryLog, int64, error) {
	whereClauses := []string{}
	args := []interface{}{}

	if query.EventID != "" {
		whereClauses = append(whereClauses, "event_id = ?")
		args = append(args, query.EventID)
	}
	if query.RecipientID != "" {
		whereClauses = append(whereClauses, "recipient_id = ?")
		args = append(args, query.RecipientID)
	}
	if query.RunID != "" {
		whereClauses = append(whereClauses, "run_id = ?")
		args = append(args, query.RunID)
	}
	if query.Status != "" {
		whereClauses = append(whereClauses, "status = ?")
		args = append(args, query.Status)
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	var totalCount int64
	if err := c.db.GetContext(ctx, &totalCount,
		fmt.Sprintf("SELECT COUNT(*) FROM delivery_logs %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count delivery logs: %w", err)
	}

	page, limit := query.PageBounds()
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM delivery_logs
		%s
		ORDER BY sent_at DESC, id ASC
		LIMIT ? OFFSET ?
	`, deliveryLogColumns, whereClause)
	args = append(args, limit, offset)

	var rows []deliveryLogRow
	if err := c.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list delivery logs: %w", err)
	}

	logs := make([]models.DeliveryLog, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, r.toModel())
	}
	return logs, totalCount, nil
}
