package models

import "time"

// DeliveryStatus represents the outcome of one delivery attempt.
type DeliveryStatus string

const (
	DeliveryStatusSuccess DeliveryStatus = "success"
	DeliveryStatusError   DeliveryStatus = "error"
)

// DeliveryLog is the append-only audit record of one attempted notification.
// ErrorMessage is set if and only if Status is DeliveryStatusError.
type DeliveryLog struct {
	ID           string         `json:"id"`
	RunID        string         `json:"run_id"`
	RecipientID  string         `json:"recipient_id"`
	EventID      string         `json:"event_id"`
	Status       DeliveryStatus `json:"status"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	SentAt       time.Time      `json:"sent_at"`
}

// DeliveryLogResponse represents a single delivery log entry.
type DeliveryLogResponse struct {
	ID           string         `json:"id" example:"770e8400-e29b-41d4-a716-446655440000"`
	RunID        string         `json:"run_id" example:"01JBQ4Z8M5YV7Q2W3E4R5T6Y7U"`
	RecipientID  string         `json:"recipient_id" example:"660e8400-e29b-41d4-a716-446655440000"`
	EventID      string         `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status       DeliveryStatus `json:"status" example:"error"`
	ErrorMessage *string        `json:"error_message,omitempty" example:"invalid recipient address"`
	SentAt       time.Time      `json:"sent_at" example:"2025-11-05T08:00:01Z"`
} // @name DeliveryLogResponse

// ListDeliveriesQuery represents query parameters for listing delivery logs.
type ListDeliveriesQuery struct {
	EventID     string `form:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RecipientID string `form:"recipient_id" example:"660e8400-e29b-41d4-a716-446655440000"`
	RunID       string `form:"run_id" example:"01JBQ4Z8M5YV7Q2W3E4R5T6Y7U"`
	Status      string `form:"status" binding:"omitempty,oneof=success error" example:"error"`
	Page        int    `form:"page" binding:"omitempty,min=1" example:"1"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
} // @name ListDeliveriesQuery

const (
	// DefaultPageSize applies when a query names no limit.
	DefaultPageSize = 20
	// MaxPageSize caps the limit of one page.
	MaxPageSize = 100
)

// PageBounds returns the effective page (>= 1) and limit (1..MaxPageSize) of q.
// Storage uses it for LIMIT/OFFSET and the audit layer for pagination metadata.
func (q ListDeliveriesQuery) PageBounds() (page, limit int) {
	page, limit = q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// Pagination represents pagination metadata.
type Pagination struct {
	CurrentPage  int   `json:"current_page" example:"1"`
	PageSize     int   `json:"page_size" example:"20"`
	TotalPages   int   `json:"total_pages" example:"5"`
	TotalRecords int64 `json:"total_records" example:"100"`
} // @name Pagination

// ToResponse converts a delivery log to its API representation.
func (d DeliveryLog) ToResponse() DeliveryLogResponse {
	return DeliveryLogResponse{
		ID:           d.ID,
		RunID:        d.RunID,
		RecipientID:  d.RecipientID,
		EventID:      d.EventID,
		Status:       d.Status,
		ErrorMessage: d.ErrorMessage,
		SentAt:       d.SentAt,
	}
}
