// Package api exposes the analysis service over HTTP: analysis endpoints,
// health, statistics and Prometheus metrics.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sonory/soundscape-go/internal/analyzer"
	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/logging"
	"github.com/sonory/soundscape-go/internal/observability"
)

// ServiceName is reported in health and stats payloads.
const ServiceName = "soundscape-go"

// ServiceVersion is reported in health payloads.
const ServiceVersion = "0.1.0"

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Settings *conf.Settings
	Analyzer *analyzer.Analyzer

	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates the API controller and registers all routes.
func New(settings *conf.Settings, anlz *analyzer.Analyzer, metrics *observability.Metrics) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	log := logging.ForService("api")
	if log == nil {
		log = slog.Default().With("service", "api")
	}

	c := &Controller{
		Echo:     e,
		Settings: settings,
		Analyzer: anlz,
		metrics:  metrics,
		logger:   log,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(c.requestIDMiddleware)

	c.Group = e.Group("/api/v1")
	c.initRoutes()

	return c
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	c.Group.POST("/analyze/audio", c.AnalyzeAudio)
	c.Group.POST("/analyze/audio/upload", c.AnalyzeAudioUpload)
	c.Group.GET("/health", c.HealthCheck)
	c.Group.GET("/stats", c.Stats)

	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// requestIDMiddleware assigns a request id to every request and logs the
// request outcome.
func (c *Controller) requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		requestID := uuid.New().String()
		ctx.Set("request_id", requestID)
		ctx.Response().Header().Set("X-Request-ID", requestID)

		start := time.Now()
		err := next(ctx)

		c.logger.Debug("request handled",
			"request_id", requestID,
			"method", ctx.Request().Method,
			"path", ctx.Request().URL.Path,
			"status", ctx.Response().Status,
			"duration_ms", time.Since(start).Milliseconds())

		return err
	}
}

// Start begins serving HTTP on the configured port. Blocks until shutdown.
func (c *Controller) Start() error {
	addr := ":" + c.Settings.WebServer.Port
	c.logger.Info("starting HTTP server", "addr", addr)
	if err := c.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (c *Controller) Shutdown(ctx context.Context) error {
	return c.Echo.Shutdown(ctx)
}
