package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/platform/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	return writeJSON(c, 200, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
		"build":  version.Get(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	if s.readyCheck == nil {
		return writeJSON(c, 200, map[string]string{"status": "ready"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := s.readyCheck(ctx); err != nil {
		return writeJSON(c, 503, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return writeJSON(c, 200, map[string]string{"status": "ready"})
}
