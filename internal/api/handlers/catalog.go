package handlers

import (
	"context"
	"errors"

	"github.com/dhima/notification-dispatcher/internal/api/response"
	"github.com/dhima/notification-dispatcher/internal/catalog"
	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogService is the catalog surface used by CatalogHandler.
type CatalogService interface {
	CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error)
	ListEvents(ctx context.Context, query models.ListEventsQuery) ([]models.Event, error)
	CreateTemplate(ctx context.Context, req models.CreateTemplateRequest) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	CreateRecipient(ctx context.Context, req models.CreateRecipientRequest) (*models.Recipient, error)
	ListRecipients(ctx context.Context) ([]models.Recipient, error)
	LinkRecipient(ctx context.Context, eventID string, req models.LinkRecipientRequest) error
	ListRecipientsForEvent(ctx context.Context, eventID string) ([]models.Recipient, error)
}

// CatalogHandler manages events, templates and recipients.
type CatalogHandler struct {
	service CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With(zap.String("handler", "catalog")),
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Catalog
// @Accept json
// @Produce json
// @Param event body models.CreateEventRequest true "Event"
// @Success 201 {object} response.SuccessResponse{data=models.EventResponse}
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Router /api/v1/events [post]
func (h *CatalogHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if !h.bind(c, &req, "create event") {
		return
	}
	ev, err := h.service.CreateEvent(c.Request.Context(), req)
	if h.handleServiceError(c, err, "create event") {
		return
	}
	response.Created(c, ev.ToResponse(), "event created")
}

// ListEvents godoc
// @Summary List events
// @Tags Catalog
// @Produce json
// @Param date query string false "Only events on this date (YYYY-MM-DD)"
// @Success 200 {object} response.SuccessResponse{data=[]models.EventResponse}
// @Failure 400 {object} response.ErrorResponse "Invalid date"
// @Router /api/v1/events [get]
func (h *CatalogHandler) ListEvents(c *gin.Context) {
	var query models.ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}
	events, err := h.service.ListEvents(c.Request.Context(), query)
	if h.handleServiceError(c, err, "list events") {
		return
	}
	out := make([]models.EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ToResponse())
	}
	response.OK(c, out)
}

// LinkRecipient godoc
// @Summary Link a recipient to an event
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param link body models.LinkRecipientRequest true "Recipient to link"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 404 {object} response.ErrorResponse "Event or recipient not found"
// @Router /api/v1/events/{id}/recipients [post]
func (h *CatalogHandler) LinkRecipient(c *gin.Context) {
	var req models.LinkRecipientRequest
	if !h.bind(c, &req, "link recipient") {
		return
	}
	eventID := c.Param("id")
	err := h.service.LinkRecipient(c.Request.Context(), eventID, req)
	if h.handleServiceError(c, err, "link recipient") {
		return
	}
	response.Created(c, gin.H{"event_id": eventID, "recipient_id": req.RecipientID}, "recipient linked")
}

// ListEventRecipients godoc
// @Summary List who an event notifies
// @Description Resolves recipients with the configured recipient policy.
// @Tags Catalog
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.SuccessResponse{data=[]models.Recipient}
// @Failure 404 {object} response.ErrorResponse "Event not found"
// @Router /api/v1/events/{id}/recipients [get]
func (h *CatalogHandler) ListEventRecipients(c *gin.Context) {
	recipients, err := h.service.ListRecipientsForEvent(c.Request.Context(), c.Param("id"))
	if h.handleServiceError(c, err, "list event recipients") {
		return
	}
	response.OK(c, recipients)
}

// CreateTemplate godoc
// @Summary Create a template
// @Description Placeholders: {employee_name}, {event_type}, {event_date}. One template per event type.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param template body models.CreateTemplateRequest true "Template"
// @Success 201 {object} response.SuccessResponse{data=models.Template}
// @Failure 400 {object} response.ErrorResponse "Invalid template"
// @Failure 409 {object} response.ErrorResponse "Template already exists for event type"
// @Router /api/v1/templates [post]
func (h *CatalogHandler) CreateTemplate(c *gin.Context) {
	var req models.CreateTemplateRequest
	if !h.bind(c, &req, "create template") {
		return
	}
	tmpl, err := h.service.CreateTemplate(c.Request.Context(), req)
	if h.handleServiceError(c, err, "create template") {
		return
	}
	response.Created(c, tmpl, "template created")
}

// ListTemplates godoc
// @Summary List templates
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.SuccessResponse{data=[]models.Template}
// @Router /api/v1/templates [get]
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if h.handleServiceError(c, err, "list templates") {
		return
	}
	response.OK(c, templates)
}

// CreateRecipient godoc
// @Summary Create a recipient
// @Tags Catalog
// @Accept json
// @Produce json
// @Param recipient body models.CreateRecipientRequest true "Recipient"
// @Success 201 {object} response.SuccessResponse{data=models.Recipient}
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Router /api/v1/recipients [post]
func (h *CatalogHandler) CreateRecipient(c *gin.Context) {
	var req models.CreateRecipientRequest
	if !h.bind(c, &req, "create recipient") {
		return
	}
	r, err := h.service.CreateRecipient(c.Request.Context(), req)
	if h.handleServiceError(c, err, "create recipient") {
		return
	}
	response.Created(c, r, "recipient created")
}

// ListRecipients godoc
// @Summary List recipients
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.SuccessResponse{data=[]models.Recipient}
// @Router /api/v1/recipients [get]
func (h *CatalogHandler) ListRecipients(c *gin.Context) {
	recipients, err := h.service.ListRecipients(c.Request.Context())
	if h.handleServiceError(c, err, "list recipients") {
		return
	}
	response.OK(c, recipients)
}

func (h *CatalogHandler) bind(c *gin.Context, req interface{}, operation string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("invalid "+operation+" request",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid request body", err.Error())
		return false
	}
	return true
}

func (h *CatalogHandler) handleServiceError(c *gin.Context, err error, operation string) bool {
	if err == nil {
		return false
	}

	var validationErr catalog.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, "validation failed", validationErr.Error())
	case errors.Is(err, storage.ErrEventNotFound):
		response.NotFound(c, "event not found")
	case errors.Is(err, storage.ErrRecipientNotFound):
		response.NotFound(c, "recipient not found")
	case errors.Is(err, storage.ErrTemplateExists):
		response.Conflict(c, "template already exists", "one template per event type")
	default:
		h.logger.Error(operation+" failed",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.InternalServerError(c, "internal server error")
	}
	return true
}
