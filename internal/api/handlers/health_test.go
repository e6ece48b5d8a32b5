package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func serveHealth(t *testing.T, db Pinger) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	_, router := gin.CreateTestContext(w)

	handler := NewHealthHandler(db, zap.NewNop())
	router.GET("/health", handler.Health)
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var wrapper struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wrapper))
	return w, wrapper.Data
}

func TestHealth_WhenNoDatabase_ThenReturns200WithLiveness(t *testing.T) {
	// Act
	w, resp := serveHealth(t, nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "notification-dispatcher", resp.Service)
	assert.Equal(t, Version, resp.Version)
	assert.Empty(t, resp.Database)
}

func TestHealth_WhenDatabaseReachable_ThenReportsOK(t *testing.T) {
	// Act
	w, resp := serveHealth(t, pingerFunc(func(context.Context) error { return nil }))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Database)
}

func TestHealth_WhenDatabaseDown_ThenReturns503Degraded(t *testing.T) {
	// Act
	w, resp := serveHealth(t, pingerFunc(func(context.Context) error { return errors.New("connection refused") }))

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unreachable", resp.Database)
}
