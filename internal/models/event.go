package models

import (
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Event represents a dated occurrence that may trigger notifications.
type Event struct {
	ID        string    `json:"id"`
	EventType string    `json:"event_type"`
	EventDate time.Time `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Date returns the event date in DateLayout.
func (e Event) Date() string {
	return FormatDate(e.EventDate)
}

// Template is the message text used for every event of one type.
type Template struct {
	ID        string    `json:"id"`
	EventType string    `json:"event_type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Recipient is a person eligible to receive notifications.
type Recipient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRecipient links a recipient to an event.
type EventRecipient struct {
	EventID     string    `json:"event_id"`
	RecipientID string    `json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateEventRequest represents the request to create an event.
type CreateEventRequest struct {
	EventType string `json:"event_type" binding:"required,max=50" example:"Birthday"`
	EventDate string `json:"event_date" binding:"required" example:"2025-11-05"`
} // @name CreateEventRequest

// EventResponse represents a single event.
type EventResponse struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventType string    `json:"event_type" example:"Birthday"`
	EventDate string    `json:"event_date" example:"2025-11-05"`
	CreatedAt time.Time `json:"created_at" example:"2025-11-01T10:00:00Z"`
} // @name EventResponse

// ListEventsQuery represents query parameters for listing events.
type ListEventsQuery struct {
	Date string `form:"date" example:"2025-11-05"`
} // @name ListEventsQuery

// CreateTemplateRequest represents the request to create a template.
type CreateTemplateRequest struct {
	EventType string `json:"event_type" binding:"required,max=50" example:"Birthday"`
	Content   string `json:"content" binding:"required" example:"Happy Birthday, {employee_name}!"`
} // @name CreateTemplateRequest

// CreateRecipientRequest represents the request to create a recipient.
type CreateRecipientRequest struct {
	Name  string `json:"name" binding:"required,max=100" example:"John Doe"`
	Email string `json:"email" binding:"required" example:"john@example.com"`
} // @name CreateRecipientRequest

// LinkRecipientRequest attaches an existing recipient to an event.
type LinkRecipientRequest struct {
	RecipientID string `json:"recipient_id" binding:"required" example:"660e8400-e29b-41d4-a716-446655440000"`
} // @name LinkRecipientRequest

// ToResponse converts an event to its API representation.
func (e Event) ToResponse() EventResponse {
	return EventResponse{
		ID:        e.ID,
		EventType: e.EventType,
		EventDate: e.Date(),
		CreatedAt: e.CreatedAt,
	}
}
