package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStatusStream upgrades the connection and feeds it every loop status
// change. Clients first receive a snapshot of all known loops.
func (s *Server) handleStatusStream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	if err := s.hub.Register(conn); err != nil {
		slog.Warn("Status stream registration rejected", "error", err)
		conn.Close()
		return nil
	}

	for _, status := range s.app.StatusAll() {
		s.hub.PublishStatus(status)
	}

	// Drain reads until the client disconnects; the stream is write-only.
	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}
