package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
)

func newTestConnPair(t *testing.T) (server *ws.Conn, client *ws.Conn) {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		ready <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-ready
	t.Cleanup(func() { serverConn.Close() })

	return serverConn, clientConn
}

func sampleStatus() domain.LoopStatus {
	return domain.LoopStatus{
		AccountID:      7,
		Phase:          domain.PhaseRunning,
		Condition:      domain.ConditionRotating,
		CurrentSetName: "Best Sellers",
		NextSetName:    "New Arrivals",
		DelaySeconds:   60,
	}
}

func TestStatusHub_BroadcastsToRegisteredClients(t *testing.T) {
	hub := NewStatusHub(10)
	t.Cleanup(hub.Stop)

	server, client := newTestConnPair(t)
	require.NoError(t, hub.Register(server))

	hub.PublishStatus(sampleStatus())

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)

	var got domain.LoopStatus
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, 7, got.AccountID)
	assert.Equal(t, domain.PhaseRunning, got.Phase)
	assert.Equal(t, "Best Sellers", got.CurrentSetName)
}

func TestStatusHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewStatusHub(10)
	t.Cleanup(hub.Stop)

	serverA, clientA := newTestConnPair(t)
	serverB, clientB := newTestConnPair(t)
	require.NoError(t, hub.Register(serverA))
	require.NoError(t, hub.Register(serverB))
	assert.Equal(t, 2, hub.ClientCount())

	hub.PublishStatus(sampleStatus())

	for _, client := range []*ws.Conn{clientA, clientB} {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := client.ReadMessage()
		require.NoError(t, err)
	}
}

func TestStatusHub_RejectsOverLimit(t *testing.T) {
	hub := NewStatusHub(1)
	t.Cleanup(hub.Stop)

	serverA, _ := newTestConnPair(t)
	serverB, _ := newTestConnPair(t)

	require.NoError(t, hub.Register(serverA))
	err := hub.Register(serverB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
	assert.Equal(t, 1, hub.ClientCount())
}

func TestStatusHub_Unregister(t *testing.T) {
	hub := NewStatusHub(10)
	t.Cleanup(hub.Stop)

	server, _ := newTestConnPair(t)
	require.NoError(t, hub.Register(server))
	require.Equal(t, 1, hub.ClientCount())

	hub.Unregister(server)
	assert.Equal(t, 0, hub.ClientCount())

	// Unregistering twice is harmless.
	hub.Unregister(server)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestStatusHub_StopClosesConnections(t *testing.T) {
	hub := NewStatusHub(10)

	server, client := newTestConnPair(t)
	require.NoError(t, hub.Register(server))

	hub.Stop()

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestStatusHub_RegisterAfterStop(t *testing.T) {
	hub := NewStatusHub(10)
	hub.Stop()

	// Give the actor time to drain and close.
	require.Eventually(t, func() bool {
		server, _ := newTestConnPair(t)
		return hub.Register(server) != nil
	}, time.Second, 10*time.Millisecond)
}

func TestStatusHub_PublishWithNoClients(t *testing.T) {
	hub := NewStatusHub(10)
	t.Cleanup(hub.Stop)

	// Broadcasting into an empty hub must not block or panic.
	for i := 0; i < 10; i++ {
		hub.PublishStatus(sampleStatus())
	}
	assert.Equal(t, 0, hub.ClientCount())
}
