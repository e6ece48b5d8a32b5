package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsHandler exposes collected metrics in the Prometheus text format.
type MetricsHandler struct {
	handler http.Handler
	logger  *zap.Logger
}

// NewMetricsHandler creates a new metrics handler serving everything gathered by g.
func NewMetricsHandler(g prometheus.Gatherer, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{
		handler: promhttp.HandlerFor(g, promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(logger),
		}),
		logger: logger,
	}
}

// Metrics godoc
// @Summary Get dispatcher metrics
// @Description Returns run, delivery and audit counters in the Prometheus exposition format
// @Tags System
// @Produce plain
// @Success 200 {string} string "Prometheus metrics"
// @Router /metrics [get]
func (h *MetricsHandler) Metrics(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}
