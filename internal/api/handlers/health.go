package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dhima/notification-dispatcher/internal/api/response"
	"github.com/dhima/notification-dispatcher/internal/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new health check handler. db may be nil, in which case the
// handler only reports liveness.
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Service  string `json:"service" example:"notification-dispatcher"`
	Version  string `json:"version" example:"1.0.0"`
	Database string `json:"database,omitempty" example:"ok"`
} // @name HealthResponse

// Health godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API service and its database
// @Tags System
// @Produce json
// @Success 200 {object} response.SuccessResponse{data=HealthResponse}
// @Failure 503 {object} response.SuccessResponse{data=HealthResponse}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "ok",
		Service: logging.ServiceName,
		Version: Version,
	}
	if h.db == nil {
		response.OK(c, resp)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "unreachable"
		response.Success(c, http.StatusServiceUnavailable, resp, "")
		return
	}
	resp.Database = "ok"
	response.OK(c, resp)
}
