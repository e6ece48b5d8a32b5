package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dhima/notification-dispatcher/internal/api/middleware"
	"github.com/dhima/notification-dispatcher/internal/api/response"
	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// Dispatcher runs dispatches on behalf of HTTP triggers.
type Dispatcher interface {
	RunDispatch(ctx context.Context, date time.Time) (*models.DispatchSummary, error)
	RunToday(ctx context.Context) (*models.DispatchSummary, error)
}

const dispatchRequestSchema = `{
	"type": "object",
	"properties": {
		"date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
	},
	"additionalProperties": false
}`

var dispatchSchema = mustSchema(dispatchRequestSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}
	return schema
}

// DefaultRunTimeout bounds a dispatch started over HTTP once it no longer follows the client.
const DefaultRunTimeout = 5 * time.Minute

// DispatchHandler triggers dispatch runs.
type DispatchHandler struct {
	dispatcher Dispatcher
	logger     *zap.Logger
	runTimeout time.Duration
}

// NewDispatchHandler creates a new dispatch handler.
func NewDispatchHandler(dispatcher Dispatcher, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("handler", "dispatch")),
		runTimeout: DefaultRunTimeout,
	}
}

// Dispatch godoc
// @Summary Run a dispatch
// @Description Sends notifications for every event on the given date (default: today in the configured timezone) and returns the run summary. Re-running a date sends again.
// @Tags Dispatch
// @Accept json
// @Produce json
// @Param date query string false "Dispatch date (YYYY-MM-DD)"
// @Param request body models.DispatchRequest false "Optional dispatch date"
// @Success 200 {object} response.SuccessResponse{data=models.DispatchSummary}
// @Failure 400 {object} response.ErrorResponse "Invalid date or body"
// @Failure 503 {object} response.ErrorResponse "Dispatch run failed"
// @Router /api/v1/dispatch [post]
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	date := c.Query("date")
	if len(strings.TrimSpace(string(raw))) > 0 {
		req, fieldErrs, err := decodeDispatchRequest(raw)
		if err != nil {
			response.BadRequest(c, "invalid request body", err.Error())
			return
		}
		if len(fieldErrs) > 0 {
			h.logger.Warn("dispatch request failed schema validation",
				zap.Int("errors", len(fieldErrs)),
				zap.String("request_id", response.GetRequestID(c)))
			response.ValidationErrors(c, fieldErrs)
			return
		}
		if req.Date != "" {
			date = req.Date
		}
	}

	h.run(c, date, func(c *gin.Context, summary *models.DispatchSummary) {
		response.OK(c, summary)
	})
}

// SendEmails godoc
// @Summary Run today's dispatch (legacy)
// @Description Dispatches for today and replies with the bare run summary, whose message field carries the legacy status text.
// @Tags Dispatch
// @Produce json
// @Success 200 {object} models.DispatchSummary
// @Failure 503 {object} response.ErrorResponse "Dispatch run failed"
// @Router /api/v1/send-emails [get]
func (h *DispatchHandler) SendEmails(c *gin.Context) {
	h.run(c, "", func(c *gin.Context, summary *models.DispatchSummary) {
		c.JSON(http.StatusOK, summary)
	})
}

// run executes the dispatch detached from the client connection. A disconnect must not
// truncate the day's batch; only runTimeout can cut it short.
func (h *DispatchHandler) run(c *gin.Context, date string, reply func(*gin.Context, *models.DispatchSummary)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.runTimeout)
	defer cancel()

	var (
		summary *models.DispatchSummary
		err     error
	)
	if date == "" {
		summary, err = h.dispatcher.RunToday(ctx)
	} else {
		day, parseErr := parseQueryDate(date)
		if parseErr != nil {
			response.BadRequest(c, "invalid date", parseErr.Error())
			return
		}
		summary, err = h.dispatcher.RunDispatch(ctx, day)
	}
	if err != nil {
		h.logger.Error("dispatch run failed",
			zap.Error(err),
			zap.String("request_id", middleware.FromContext(ctx)))
		response.ServiceUnavailable(c, "dispatch run failed")
		return
	}

	h.logger.Info("dispatch run completed",
		zap.String("run_id", summary.RunID),
		zap.String("date", summary.Date),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.String("request_id", middleware.FromContext(ctx)))
	reply(c, summary)
}

func decodeDispatchRequest(raw []byte) (models.DispatchRequest, []response.ValidationError, error) {
	var req models.DispatchRequest
	result, err := dispatchSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return req, nil, err
	}
	if !result.Valid() {
		errs := make([]response.ValidationError, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, response.ValidationError{Field: desc.Field(), Message: desc.Description()})
		}
		return req, errs, nil
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, nil, err
	}
	return req, nil, nil
}

func parseQueryDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
