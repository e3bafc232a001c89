package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
	apperrors "github.com/haninggrk/livekenceng-bot-gacor/internal/errors"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/platform/config"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/platform/correlation"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/websocket"
)

// ReadyChecker reports whether an optional backing service is reachable.
type ReadyChecker func(ctx context.Context) error

type Server struct {
	echo       *echo.Echo
	config     *config.Config
	app        domain.AppService
	hub        *websocket.StatusHub
	readyCheck ReadyChecker
	startTime  time.Time
}

// NewServer wires the operator API. readyCheck may be nil when no backing
// service needs probing.
func NewServer(cfg *config.Config, app domain.AppService, hub *websocket.StatusHub, readyCheck ReadyChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(correlation.Middleware())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:       e,
		config:     cfg,
		app:        app,
		hub:        hub,
		readyCheck: readyCheck,
		startTime:  time.Now(),
	}

	srv.registerRoutes()
	return srv
}

// Start begins serving on the configured port. Blocks until Shutdown.
func (s *Server) Start() error {
	addr := ":" + s.config.Port
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
