package rotation

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
)

// Manager keys loops by account so multiple accounts rotate independently.
// Loops are created lazily and survive stops, keeping their ledger position
// for the next run.
type Manager struct {
	sessions domain.SessionGateway
	apps     domain.ApplicationGateway
	clock    clockwork.Clock
	sink     domain.StatusSink

	mu    sync.Mutex
	loops map[int]*Loop
}

func NewManager(sessions domain.SessionGateway, apps domain.ApplicationGateway, clock clockwork.Clock, sink domain.StatusSink) *Manager {
	return &Manager{
		sessions: sessions,
		apps:     apps,
		clock:    clock,
		sink:     sink,
		loops:    make(map[int]*Loop),
	}
}

// Start launches a run for the account. Fails with ErrLoopAlreadyRunning if a
// run is in flight.
func (m *Manager) Start(ctx context.Context, accountID int, sets []domain.ProductSet, delay time.Duration) error {
	return m.loop(accountID).Start(ctx, sets, delay)
}

// Stop requests a graceful stop for the account's loop.
func (m *Manager) Stop(accountID int) error {
	loop, ok := m.peek(accountID)
	if !ok {
		return domain.ErrLoopNotRunning
	}
	return loop.Stop()
}

// SetDelay updates the inter-tick delay for the account's loop.
func (m *Manager) SetDelay(accountID int, delay time.Duration) {
	m.loop(accountID).SetDelay(delay)
}

// SwitchTo performs the manual product-set override for the account's loop.
func (m *Manager) SwitchTo(ctx context.Context, accountID, index int) error {
	return m.loop(accountID).SwitchTo(ctx, index)
}

// Rebuild refreshes the ledger contents for the account's loop, if any.
func (m *Manager) Rebuild(accountID int, sets []domain.ProductSet) {
	if loop, ok := m.peek(accountID); ok {
		loop.Rebuild(sets)
	}
}

// Status reports the account's loop snapshot. An account that never started
// reports Idle without allocating a loop for it.
func (m *Manager) Status(accountID int) domain.LoopStatus {
	if loop, ok := m.peek(accountID); ok {
		return loop.Status()
	}
	return domain.LoopStatus{
		AccountID: accountID,
		Phase:     domain.PhaseIdle,
		UpdatedAt: m.clock.Now(),
	}
}

// StatusAll reports snapshots of every known loop.
func (m *Manager) StatusAll() []domain.LoopStatus {
	m.mu.Lock()
	loops := make([]*Loop, 0, len(m.loops))
	for _, l := range m.loops {
		loops = append(loops, l)
	}
	m.mu.Unlock()

	statuses := make([]domain.LoopStatus, 0, len(loops))
	for _, l := range loops {
		statuses = append(statuses, l.Status())
	}
	return statuses
}

// StopAll stops every running loop, for graceful shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	loops := make([]*Loop, 0, len(m.loops))
	for _, l := range m.loops {
		loops = append(loops, l)
	}
	m.mu.Unlock()

	for _, l := range loops {
		_ = l.Stop()
	}
}

func (m *Manager) loop(accountID int) *Loop {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loops[accountID]
	if !ok {
		l = NewLoop(accountID, m.sessions, m.apps, m.clock, m.sink)
		m.loops[accountID] = l
	}
	return l
}

func (m *Manager) peek(accountID int) (*Loop, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loops[accountID]
	return l, ok
}
