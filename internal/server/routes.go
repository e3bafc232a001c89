package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Loop control
	s.echo.GET("/api/loops", s.handleStatusAll)
	s.echo.GET("/api/loops/:account", s.handleStatus)
	s.echo.POST("/api/loops/:account/start", s.handleStart)
	s.echo.POST("/api/loops/:account/stop", s.handleStop)
	s.echo.PUT("/api/loops/:account/delay", s.handleSetDelay)
	s.echo.POST("/api/loops/:account/switch", s.handleSwitch)

	// Catalog reads + refresh
	s.echo.GET("/api/accounts", s.handleListAccounts)
	s.echo.GET("/api/niches", s.handleListNiches)
	s.echo.GET("/api/product-sets", s.handleListProductSets)
	s.echo.POST("/api/catalog/refresh", s.handleRefreshCatalog)

	// Status stream
	s.echo.GET("/ws/status", s.handleStatusStream)
}
