package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
	apperrors "github.com/haninggrk/livekenceng-bot-gacor/internal/errors"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/platform/config"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/websocket"
)

// --- Mocks ---

type startCall struct {
	AccountID int
	NicheID   int
	Delay     time.Duration
}

type mockApp struct {
	mu         sync.Mutex
	startErr   error
	stopErr    error
	switchErr  error
	refreshErr error
	listErr    error

	startCalls   []startCall
	stopClear    []bool
	delays       []time.Duration
	switchIdx    []int
	refreshCalls int

	status   domain.LoopStatus
	statuses []domain.LoopStatus
	accounts []domain.ShopeeAccount
	niches   []domain.Niche
	sets     []domain.ProductSet
}

func (m *mockApp) StartLoop(ctx context.Context, accountID, nicheID int, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls = append(m.startCalls, startCall{accountID, nicheID, delay})
	return m.startErr
}

func (m *mockApp) StopLoop(ctx context.Context, accountID int, clearProducts bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopClear = append(m.stopClear, clearProducts)
	return m.stopErr
}

func (m *mockApp) SetDelay(accountID int, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, delay)
}

func (m *mockApp) SwitchTo(ctx context.Context, accountID, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switchIdx = append(m.switchIdx, index)
	return m.switchErr
}

func (m *mockApp) Status(accountID int) domain.LoopStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := m.status
	status.AccountID = accountID
	return status
}

func (m *mockApp) StatusAll() []domain.LoopStatus { return m.statuses }

func (m *mockApp) RefreshProductSets(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls++
	return m.refreshErr
}

func (m *mockApp) ListAccounts(ctx context.Context) ([]domain.ShopeeAccount, error) {
	return m.accounts, m.listErr
}

func (m *mockApp) ListNiches(ctx context.Context) ([]domain.Niche, error) {
	return m.niches, m.listErr
}

func (m *mockApp) ListProductSets(ctx context.Context) ([]domain.ProductSet, error) {
	return m.sets, m.listErr
}

// --- Harness ---

type serverHarness struct {
	server *Server
	app    *mockApp
	hub    *websocket.StatusHub
}

func newServerHarness(t *testing.T) *serverHarness {
	t.Helper()
	app := &mockApp{status: domain.LoopStatus{Phase: domain.PhaseIdle, DelaySeconds: 60}}
	hub := websocket.NewStatusHub(10)
	t.Cleanup(hub.Stop)

	cfg := &config.Config{Port: "0", DefaultDelay: 60 * time.Second}
	return &serverHarness{
		server: NewServer(cfg, app, hub, nil),
		app:    app,
		hub:    hub,
	}
}

func (h *serverHarness) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.server.echo.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// --- Loop control ---

func TestHandleStart(t *testing.T) {
	h := newServerHarness(t)

	rec := h.do(http.MethodPost, "/api/loops/7/start", `{"niche_id":3,"delay_seconds":30}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.app.startCalls, 1)
	assert.Equal(t, startCall{7, 3, 30 * time.Second}, h.app.startCalls[0])

	var status domain.LoopStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 7, status.AccountID)
}

func TestHandleStart_DefaultDelay(t *testing.T) {
	h := newServerHarness(t)

	rec := h.do(http.MethodPost, "/api/loops/7/start", `{"niche_id":0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.app.startCalls, 1)
	assert.Equal(t, 60*time.Second, h.app.startCalls[0].Delay)
}

func TestHandleStart_AlreadyRunning(t *testing.T) {
	h := newServerHarness(t)
	h.app.startErr = domain.ErrLoopAlreadyRunning

	rec := h.do(http.MethodPost, "/api/loops/7/start", `{}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.TypeConflict, decodeError(t, rec).Type)
}

func TestHandleStart_UnknownAccount(t *testing.T) {
	h := newServerHarness(t)
	h.app.startErr = domain.ErrAccountNotFound

	rec := h.do(http.MethodPost, "/api/loops/7/start", `{}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStart_InvalidAccountParam(t *testing.T) {
	h := newServerHarness(t)

	for _, path := range []string{"/api/loops/abc/start", "/api/loops/-1/start", "/api/loops/0/start"} {
		rec := h.do(http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Empty(t, h.app.startCalls)
	}
}

func TestHandleStop(t *testing.T) {
	h := newServerHarness(t)

	rec := h.do(http.MethodPost, "/api/loops/7/stop", `{"clear_products":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{true}, h.app.stopClear)
}

func TestHandleStop_NotRunning(t *testing.T) {
	h := newServerHarness(t)
	h.app.stopErr = domain.ErrLoopNotRunning

	rec := h.do(http.MethodPost, "/api/loops/7/stop", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.TypeValidation, decodeError(t, rec).Type)
}

func TestHandleSetDelay(t *testing.T) {
	h := newServerHarness(t)

	rec := h.do(http.MethodPut, "/api/loops/7/delay", `{"delay_seconds":5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []time.Duration{5 * time.Second}, h.app.delays)
}

func TestHandleSetDelay_RejectsBelowOneSecond(t *testing.T) {
	h := newServerHarness(t)

	for _, body := range []string{`{"delay_seconds":0}`, `{"delay_seconds":-5}`, `{}`} {
		rec := h.do(http.MethodPut, "/api/loops/7/delay", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, h.app.delays)
}

func TestHandleSwitch(t *testing.T) {
	h := newServerHarness(t)

	rec := h.do(http.MethodPost, "/api/loops/7/switch", `{"index":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2}, h.app.switchIdx)
}

func TestHandleSwitch_OutOfRange(t *testing.T) {
	h := newServerHarness(t)
	h.app.switchErr = domain.ErrIndexOutOfRange

	rec := h.do(http.MethodPost, "/api/loops/7/switch", `{"index":9}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStatusAll(t *testing.T) {
	h := newServerHarness(t)
	h.app.statuses = []domain.LoopStatus{
		{AccountID: 1, Phase: domain.PhaseRunning},
		{AccountID: 2, Phase: domain.PhaseIdle},
	}

	rec := h.do(http.MethodGet, "/api/loops", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var statuses []domain.LoopStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	assert.Len(t, statuses, 2)
}

// --- Catalog ---

func TestHandleListAccounts(t *testing.T) {
	h := newServerHarness(t)
	h.app.accounts = []domain.ShopeeAccount{{ID: 1, Name: "toko", IsActive: true}}

	rec := h.do(http.MethodGet, "/api/accounts", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var accounts []domain.ShopeeAccount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "toko", accounts[0].Name)
}

func TestHandleListAccounts_GatewayError(t *testing.T) {
	h := newServerHarness(t)
	h.app.listErr = &domain.GatewayError{Kind: domain.GatewayAuthMismatch, Status: 401, Message: "device mismatch"}

	rec := h.do(http.MethodGet, "/api/accounts", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.TypeExternal, resp.Type)
	assert.Equal(t, "auth_mismatch", resp.Context["gateway_error_kind"])
}

func TestHandleRefreshCatalog(t *testing.T) {
	h := newServerHarness(t)

	rec := h.do(http.MethodPost, "/api/catalog/refresh", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, h.app.refreshCalls)
}

// --- Health ---

func TestHandleLiveness(t *testing.T) {
	h := newServerHarness(t)

	rec := h.do(http.MethodGet, "/health/live", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleReadiness_NoCheck(t *testing.T) {
	h := newServerHarness(t)

	rec := h.do(http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadiness_FailingCheck(t *testing.T) {
	app := &mockApp{}
	hub := websocket.NewStatusHub(10)
	t.Cleanup(hub.Stop)
	cfg := &config.Config{Port: "0", DefaultDelay: 60 * time.Second}
	srv := NewServer(cfg, app, hub, func(ctx context.Context) error {
		return context.DeadlineExceeded
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- Status stream ---

func TestHandleStatusStream(t *testing.T) {
	h := newServerHarness(t)
	h.app.statuses = []domain.LoopStatus{{AccountID: 7, Phase: domain.PhaseRunning}}

	srv := httptest.NewServer(h.server.echo)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/status"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// The initial snapshot arrives without any loop activity.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var status domain.LoopStatus
	require.NoError(t, json.Unmarshal(msg, &status))
	assert.Equal(t, 7, status.AccountID)
}
