// Package server exposes the catalog over HTTP. Handlers are a thin
// serialization layer over the registry and the project stores; all
// catalog semantics live below.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/quest/internal/registry"
)

// Server provides the HTTP endpoints for the catalog.
type Server struct {
	echo   *echo.Echo
	reg    *registry.Registry
	logger *zap.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server over the given registry.
func NewServer(reg *registry.Registry, logger *zap.Logger, cfg *Config) (*Server, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(newMetrics().middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:   e,
		reg:    reg,
		logger: logger,
		config: cfg,
	}

	s.registerRoutes()

	return s, nil
}

// Echo returns the underlying echo instance, for tests and for mounting
// extra routes.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/v1")

	v1.GET("/projects", s.handleListProjects)
	v1.POST("/projects", s.handleCreateProject)
	// Static route must be registered alongside the :name route; echo
	// prefers the static match.
	v1.GET("/projects/active", s.handleGetActive)
	v1.PUT("/projects/active", s.handleSetActive)
	v1.GET("/projects/:name", s.handleGetProject)
	v1.DELETE("/projects/:name", s.handleDeleteProject)

	v1.GET("/collections", s.handleListCollections)
	v1.POST("/collections", s.handleCreateCollection)
	v1.GET("/collections/:name", s.handleGetCollection)
	v1.DELETE("/collections/:name", s.handleDeleteCollection)

	v1.GET("/features", s.handleListFeatures)
	v1.POST("/features", s.handleCreateFeature)
	v1.GET("/features/:id", s.handleGetFeature)
	v1.DELETE("/features/:id", s.handleDeleteFeature)

	v1.GET("/datasets", s.handleListDatasets)
	v1.POST("/datasets", s.handleCreateDataset)
	v1.GET("/datasets/:id", s.handleGetDataset)

	v1.GET("/filters", s.handleListFilters)
	v1.POST("/filters/:name", s.handleApplyFilter)

	v1.GET("/uri", s.handleParseURI)
	v1.POST("/uri/classify", s.handleClassifyURIs)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
