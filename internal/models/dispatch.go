package models

import "time"

// NothingToDoMessage is reported when no event falls on the dispatch date.
const NothingToDoMessage = "No events scheduled for today."

// DispatchedMessage is reported when at least one event was considered.
const DispatchedMessage = "Emails sent successfully."

// DiagnosticKind classifies a non-fatal problem surfaced by a dispatch run.
type DiagnosticKind string

const (
	DiagnosticTemplateNotFound DiagnosticKind = "template_not_found"
	DiagnosticRepositoryError  DiagnosticKind = "repository_error"
	DiagnosticLogWriteFailed   DiagnosticKind = "log_write_failed"
)

// Diagnostic describes an event-level or audit-level problem of a run.
type Diagnostic struct {
	Kind        DiagnosticKind `json:"kind" example:"template_not_found"`
	EventID     string         `json:"eventId,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventType   string         `json:"eventType,omitempty" example:"Birthday"`
	RecipientID string         `json:"recipientId,omitempty"`
	Message     string         `json:"message" example:"no template for event type \"Birthday\""`
} // @name Diagnostic

// DispatchSummary aggregates the outcome of one dispatch run.
type DispatchSummary struct {
	RunID           string       `json:"runId" example:"01JBQ4Z8M5YV7Q2W3E4R5T6Y7U"`
	Date            string       `json:"date" example:"2025-11-05"`
	NothingToDo     bool         `json:"nothingToDo" example:"false"`
	Message         string       `json:"message" example:"Emails sent successfully."`
	EventsProcessed int          `json:"eventsProcessed" example:"2"`
	EventsSkipped   int          `json:"eventsSkipped" example:"0"`
	EventsFailed    int          `json:"eventsFailed" example:"0"`
	Attempted       int          `json:"attempted" example:"4"`
	Sent            int          `json:"sent" example:"3"`
	Failed          int          `json:"failed" example:"1"`
	Unaudited       int          `json:"unaudited" example:"0"`
	Cancelled       bool         `json:"cancelled" example:"false"`
	Diagnostics     []Diagnostic `json:"diagnostics,omitempty"`
	StartedAt       time.Time    `json:"startedAt" example:"2025-11-05T08:00:00Z"`
	FinishedAt      time.Time    `json:"finishedAt" example:"2025-11-05T08:00:02Z"`
} // @name DispatchSummary

// DispatchRequest is the optional body of a dispatch trigger call.
type DispatchRequest struct {
	Date string `json:"date,omitempty" example:"2025-11-05"`
} // @name DispatchRequest
