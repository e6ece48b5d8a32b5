package handlers

import (
	"context"

	"github.com/dhima/notification-dispatcher/internal/api/response"
	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeliveryQueryService is the audit surface used by DeliveryHandler.
type DeliveryQueryService interface {
	QueryDeliveries(ctx context.Context, query models.ListDeliveriesQuery) ([]models.DeliveryLog, models.Pagination, error)
	GetDelivery(ctx context.Context, id string) (*models.DeliveryLog, error)
}

// DeliveryHandler handles delivery log queries.
type DeliveryHandler struct {
	service DeliveryQueryService
	logger  *zap.Logger
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(service DeliveryQueryService, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		service: service,
		logger:  logger.With(zap.String("handler", "delivery")),
	}
}

// ListDeliveries godoc
// @Summary List delivery logs
// @Description Retrieves delivery logs, newest first, with filtering and pagination.
// @Tags Deliveries
// @Produce json
// @Param event_id query string false "Filter by event ID"
// @Param recipient_id query string false "Filter by recipient ID"
// @Param run_id query string false "Filter by dispatch run ID"
// @Param status query string false "Filter by status" Enums(success, error)
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Items per page" default(20) minimum(1) maximum(100)
// @Success 200 {object} response.PaginatedResponse{data=[]models.DeliveryLogResponse}
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/deliveries [get]
func (h *DeliveryHandler) ListDeliveries(c *gin.Context) {
	var query models.ListDeliveriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid list deliveries query",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}

	logs, pagination, err := h.service.QueryDeliveries(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("failed to list deliveries",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.InternalServerError(c, "internal server error")
		return
	}

	out := make([]models.DeliveryLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.ToResponse())
	}
	response.Paginated(c, out, pagination)
}

// GetDelivery godoc
// @Summary Get a delivery log
// @Description Retrieves one delivery log entry by ID, including the error message of a failed attempt.
// @Tags Deliveries
// @Produce json
// @Param id path string true "Delivery log ID"
// @Success 200 {object} response.SuccessResponse{data=models.DeliveryLogResponse}
// @Failure 404 {object} response.ErrorResponse "Delivery log not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/deliveries/{id} [get]
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	id := c.Param("id")

	entry, err := h.service.GetDelivery(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get delivery",
			zap.Error(err),
			zap.String("delivery_id", id),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.InternalServerError(c, "internal server error")
		return
	}
	if entry == nil {
		response.NotFound(c, "delivery log not found")
		return
	}
	response.OK(c, entry.ToResponse())
}
