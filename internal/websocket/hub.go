// Package websocket streams loop status snapshots to connected operators,
// replacing the desktop frontend's live status display.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/metrics"
)

const writeTimeout = 5 * time.Second

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn  *websocket.Conn
	errCh chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

// clientWriter serializes writes to one connection so a slow client never
// blocks the hub; a full send buffer drops that client.
type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// --- Hub ---

// StatusHub is a single-goroutine actor owning all status stream connections.
// Loops publish snapshots into it; every connected operator receives them.
type StatusHub struct {
	cmdCh      chan hubCmd
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
	done       chan struct{}
}

// NewStatusHub creates and starts the hub.
func NewStatusHub(maxClients int) *StatusHub {
	hub := &StatusHub{
		cmdCh:      make(chan hubCmd, 256),
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go hub.run()
	return hub
}

// PublishStatus implements domain.StatusSink.
func (h *StatusHub) PublishStatus(status domain.LoopStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		slog.Error("Failed to marshal loop status", "error", err)
		return
	}
	select {
	case h.cmdCh <- cmdBroadcast{data: data}:
	case <-h.done:
	}
}

// Register adds a connection to the stream, rejecting it when the client
// limit is reached.
func (h *StatusHub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	select {
	case h.cmdCh <- cmdRegister{conn: conn, errCh: errCh}:
	case <-h.done:
		return fmt.Errorf("status hub stopped")
	}
	// The hub may shut down after the command was queued but before it ran.
	select {
	case err := <-errCh:
		return err
	case <-h.done:
		return fmt.Errorf("status hub stopped")
	}
}

// Unregister removes a connection from the stream.
func (h *StatusHub) Unregister(conn *websocket.Conn) {
	select {
	case h.cmdCh <- cmdUnregister{conn: conn}:
	case <-h.done:
	}
}

// ClientCount reports the number of connected clients.
func (h *StatusHub) ClientCount() int {
	replyCh := make(chan int, 1)
	select {
	case h.cmdCh <- cmdClientCount{replyCh: replyCh}:
	case <-h.done:
		return 0
	}
	select {
	case n := <-replyCh:
		return n
	case <-h.done:
		return 0
	}
}

// Stop disconnects all clients and shuts the hub down.
func (h *StatusHub) Stop() {
	select {
	case h.cmdCh <- cmdStop{}:
	case <-h.done:
	}
}

func (h *StatusHub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			if len(h.clients) >= h.maxClients {
				c.errCh <- fmt.Errorf("status stream full (%d clients)", h.maxClients)
				continue
			}
			h.clients[c.conn] = newClientWriter(c.conn)
			metrics.StatusStreamClients.Set(float64(len(h.clients)))
			c.errCh <- nil

		case cmdUnregister:
			if cw, ok := h.clients[c.conn]; ok {
				cw.stop()
				delete(h.clients, c.conn)
				metrics.StatusStreamClients.Set(float64(len(h.clients)))
			}

		case cmdBroadcast:
			for conn, cw := range h.clients {
				select {
				case cw.sendCh <- c.data:
				default:
					// Slow client: drop it rather than stall the stream.
					cw.stop()
					delete(h.clients, conn)
					metrics.StatusStreamClients.Set(float64(len(h.clients)))
				}
			}

		case cmdClientCount:
			c.replyCh <- len(h.clients)

		case cmdStop:
			for conn, cw := range h.clients {
				cw.stop()
				delete(h.clients, conn)
			}
			metrics.StatusStreamClients.Set(0)
			close(h.done)
			return
		}
	}
}
