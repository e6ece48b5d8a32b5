// Package response writes the JSON envelopes shared by every API handler.
package response

import (
	"net/http"

	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey mirrors middleware.RequestIDKey without importing the middleware package.
const requestIDKey = "request_id"

// SuccessResponse wraps a successful payload.
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON reply. TraceID echoes the request ID.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

// PaginatedResponse wraps one page of a list.
type PaginatedResponse struct {
	Data       interface{}       `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Success writes data with the given status.
func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, SuccessResponse{Data: data, Message: message})
}

// OK writes data with 200.
func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data, "")
}

// Created writes data with 201.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message)
}

// Paginated writes one page of data with 200.
func Paginated(c *gin.Context, data interface{}, pagination models.Pagination) {
	c.JSON(http.StatusOK, PaginatedResponse{Data: data, Pagination: pagination})
}

// Error writes an error body tagged with the request's trace ID.
func Error(c *gin.Context, statusCode int, err string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Error:   err,
		Details: details,
		TraceID: GetRequestID(c),
	})
}

func BadRequest(c *gin.Context, err string, details interface{}) {
	Error(c, http.StatusBadRequest, err, details)
}

// ValidationErrors rejects a request with per-field reasons.
func ValidationErrors(c *gin.Context, errs []ValidationError) {
	BadRequest(c, "validation failed", errs)
}

func NotFound(c *gin.Context, err string) {
	Error(c, http.StatusNotFound, err, nil)
}

func Conflict(c *gin.Context, err string, details interface{}) {
	Error(c, http.StatusConflict, err, details)
}

// InternalServerError hides the cause; handlers log it before calling.
func InternalServerError(c *gin.Context, err string) {
	Error(c, http.StatusInternalServerError, err, nil)
}

// ServiceUnavailable reports an infrastructure failure without details.
func ServiceUnavailable(c *gin.Context, err string) {
	Error(c, http.StatusServiceUnavailable, err, nil)
}

// GetRequestID returns the ID set by the request ID middleware, or a fresh one when the
// middleware did not run.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return uuid.New().String()
}
