package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/dhima/notification-dispatcher/docs" // swagger spec
	"github.com/dhima/notification-dispatcher/internal/api/handlers"
	"github.com/dhima/notification-dispatcher/internal/api/middleware"
	"github.com/dhima/notification-dispatcher/internal/app"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// Server orchestrates HTTP routing for the dispatcher API.
type Server struct {
	components *app.Components
	logger     *zap.Logger
	router     *gin.Engine
}

// NewServer builds the router over already wired components.
func NewServer(components *app.Components) *Server {
	if components.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		components: components,
		logger:     components.Logger,
	}
	s.setupRouter()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with middleware and routes.
func (s *Server) setupRouter() {
	router := gin.New()

	// Global middleware (order matters!)
	// 1. Recovery - must be first to catch panics from other middleware
	router.Use(ginzap.RecoveryWithZap(s.logger, true))

	// 2. Request ID - inject unique ID for tracing
	router.Use(middleware.RequestID())

	// 3. Logging - log all requests with structured fields
	router.Use(ginzap.GinzapWithConfig(s.logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
		Context: func(c *gin.Context) []zap.Field {
			return []zap.Field{zap.String("request_id", c.GetString(middleware.RequestIDKey))}
		},
	}))

	// 4. CORS - handle cross-origin requests
	router.Use(cors.New(cors.Config{
		AllowOrigins:  s.components.Config.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// Health and metrics endpoints (no /api/v1 prefix)
	router.GET("/health", handlers.NewHealthHandler(s.components.DB, s.logger).Health)
	router.GET("/metrics", handlers.NewMetricsHandler(s.components.Registry, s.logger).Metrics)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		dispatchHandler := handlers.NewDispatchHandler(s.components.Engine, s.logger)
		v1.POST("/dispatch", dispatchHandler.Dispatch)
		v1.GET("/send-emails", dispatchHandler.SendEmails)

		deliveryHandler := handlers.NewDeliveryHandler(s.components.Audit, s.logger)
		deliveries := v1.Group("/deliveries")
		{
			deliveries.GET("", deliveryHandler.ListDeliveries)
			deliveries.GET("/:id", deliveryHandler.GetDelivery)
		}

		catalogHandler := handlers.NewCatalogHandler(s.components.Catalog, s.logger)
		events := v1.Group("/events")
		{
			events.POST("", catalogHandler.CreateEvent)
			events.GET("", catalogHandler.ListEvents)
			events.POST("/:id/recipients", catalogHandler.LinkRecipient)
			events.GET("/:id/recipients", catalogHandler.ListEventRecipients)
		}
		templates := v1.Group("/templates")
		{
			templates.POST("", catalogHandler.CreateTemplate)
			templates.GET("", catalogHandler.ListTemplates)
		}
		recipients := v1.Group("/recipients")
		{
			recipients.POST("", catalogHandler.CreateRecipient)
			recipients.GET("", catalogHandler.ListRecipients)
		}
	}

	s.router = router
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
// In-flight dispatches are allowed to finish within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	addr := ":" + s.components.Config.APIPort
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server",
			zap.String("address", addr),
			zap.String("environment", s.components.Config.Environment),
			zap.String("log_level", s.components.Config.LogLevel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("server stopped")
	return nil
}
