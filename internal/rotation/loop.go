package rotation

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/metrics"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/platform/correlation"
)

// Loop drives the rotation for a single account. One goroutine owns the run;
// ticks execute strictly sequentially and each tick fully completes, wait
// included, before the next begins. LoopState and the ledger are guarded by a
// single mutex since contention is inherently low (one tick at a time).
type Loop struct {
	accountID int
	sessions  domain.SessionGateway
	apps      domain.ApplicationGateway
	clock     clockwork.Clock
	sink      domain.StatusSink

	mu        sync.Mutex
	phase     domain.LoopPhase
	condition domain.LoopCondition
	ledger    *Ledger
	tracker   *FailureTracker
	delay     time.Duration
	sessionID string
	current   string
	next      string
	lastErr   string
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewLoop creates an idle loop for the given account. sink may be nil.
func NewLoop(accountID int, sessions domain.SessionGateway, apps domain.ApplicationGateway, clock clockwork.Clock, sink domain.StatusSink) *Loop {
	return &Loop{
		accountID: accountID,
		sessions:  sessions,
		apps:      apps,
		clock:     clock,
		sink:      sink,
		phase:     domain.PhaseIdle,
		ledger:    NewLedger(nil),
		tracker:   NewFailureTracker(DefaultStopThreshold),
	}
}

// Start begins a run with the given product sets and inter-tick delay.
// Accepted only from Idle and StoppedOnError; restarting resets the
// consecutive-error counter. The ledger keeps its previous position when the
// set content allows it, so a restart resumes rotation rather than rewinding.
func (l *Loop) Start(ctx context.Context, sets []domain.ProductSet, delay time.Duration) error {
	l.mu.Lock()
	if l.phase == domain.PhaseRunning || l.phase == domain.PhaseStopping {
		l.mu.Unlock()
		return domain.ErrLoopAlreadyRunning
	}

	l.ledger.Rebuild(sets)
	if l.ledger.Len() == 0 {
		l.mu.Unlock()
		return domain.ErrNoProductSets
	}

	l.tracker.Reset()
	l.phase = domain.PhaseRunning
	l.condition = domain.ConditionRotating
	l.delay = delay
	l.sessionID = ""
	l.lastErr = ""
	l.refreshNamesLocked()
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	stopCh, doneCh := l.stopCh, l.doneCh
	setCount := l.ledger.Len()
	status := l.snapshotLocked()
	l.mu.Unlock()

	l.publish(status)
	slog.InfoContext(ctx, "Rotation loop started", "account_id", l.accountID, "sets", setCount, "delay", delay)

	// The run goroutine outlives the request that started it; the caller's
	// context covers only this synchronous setup.
	go l.run(context.WithoutCancel(ctx), stopCh, doneCh)
	return nil
}

// Stop requests a graceful stop. An in-flight gateway call is allowed to
// complete but its result is discarded; the loop exits before the next tick.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if l.phase != domain.PhaseRunning {
		l.mu.Unlock()
		return domain.ErrLoopNotRunning
	}
	l.phase = domain.PhaseStopping
	close(l.stopCh)
	status := l.snapshotLocked()
	l.mu.Unlock()

	l.publish(status)
	return nil
}

// SetDelay changes the inter-tick delay. The wait already in progress
// completes on its original schedule; the following wait uses the new value.
func (l *Loop) SetDelay(delay time.Duration) {
	l.mu.Lock()
	l.delay = delay
	status := l.snapshotLocked()
	l.mu.Unlock()
	l.publish(status)
}

// SwitchTo is the manual operator override. When the loop is not running it
// only moves the rotation index, effective on the next start. When running it
// applies the chosen set immediately, outside the tick cadence, and on success
// seeks the ledger to that index so rotation resumes from index+1. A failed
// manual apply is reported to the caller but never touches the loop phase or
// the error counter.
func (l *Loop) SwitchTo(ctx context.Context, index int) error {
	l.mu.Lock()
	if l.phase != domain.PhaseRunning {
		err := l.ledger.Seek(index)
		if err == nil {
			l.refreshNamesLocked()
		}
		l.mu.Unlock()
		return err
	}
	set, err := l.ledger.At(index)
	l.mu.Unlock()
	if err != nil {
		return err
	}

	sessionID, err := l.sessions.ActiveSession(ctx, l.accountID)
	if err != nil {
		metrics.ManualSwitchesTotal.WithLabelValues("error").Inc()
		return err
	}
	if sessionID == "" {
		metrics.ManualSwitchesTotal.WithLabelValues("no_session").Inc()
		return domain.ErrNoActiveSession
	}

	if err := l.apps.ReplaceProducts(ctx, l.accountID, sessionID, set.ID); err != nil {
		metrics.ManualSwitchesTotal.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "Manual switch apply failed", "account_id", l.accountID, "set", set.Name, "error", err)
		return err
	}

	l.mu.Lock()
	if l.phase == domain.PhaseRunning {
		// Rotation resumes from index+1, the manual apply took index's turn.
		if l.ledger.Seek(index) == nil {
			l.ledger.Advance()
		}
		l.sessionID = sessionID
		l.condition = domain.ConditionRotating
		l.current = set.Name
		if next, err := l.ledger.Current(); err == nil {
			l.next = next.Name
		}
	}
	status := l.snapshotLocked()
	l.mu.Unlock()

	metrics.ManualSwitchesTotal.WithLabelValues("ok").Inc()
	l.publish(status)
	slog.InfoContext(ctx, "Manual switch applied", "account_id", l.accountID, "set", set.Name)
	return nil
}

// Rebuild replaces the ledger contents after an external catalog change,
// preserving rotation progress. Safe to call in any phase.
func (l *Loop) Rebuild(sets []domain.ProductSet) {
	l.mu.Lock()
	l.ledger.Rebuild(sets)
	l.refreshNamesLocked()
	status := l.snapshotLocked()
	l.mu.Unlock()
	l.publish(status)
}

// Status returns a point-in-time snapshot.
func (l *Loop) Status() domain.LoopStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Phase returns the current lifecycle phase.
func (l *Loop) Phase() domain.LoopPhase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// run is the single scheduling context for this loop: tick, then wait, then
// tick again. Stop is checked before every tick and preempts the wait.
func (l *Loop) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer l.exit(stopCh)

	for {
		if !l.owns(stopCh) {
			return
		}

		l.tick(ctx)

		if !l.owns(stopCh) {
			return
		}

		// The delay is re-read here so operator changes apply to the next
		// wait, never retroactively to one already in progress.
		timer := l.clock.NewTimer(l.currentDelay())
		select {
		case <-timer.Chan():
		case <-stopCh:
			timer.Stop()
			return
		}
	}
}

// owns reports whether this run goroutine's generation still drives the loop.
// A restart replaces stopCh, so an older goroutine that lost the race to a new
// Start observes the mismatch and exits without touching shared state.
func (l *Loop) owns(stopCh chan struct{}) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase == domain.PhaseRunning && l.stopCh == stopCh
}

// tick is one iteration: session check, apply, classify, decide.
func (l *Loop) tick(ctx context.Context) {
	tickCtx := correlation.WithID(ctx, correlation.NewID())

	sessionID, err := l.sessions.ActiveSession(tickCtx, l.accountID)
	if err != nil {
		// Session gateway failures are always transient: report and retry.
		l.noteTransient(tickCtx, err)
		return
	}

	if sessionID == "" {
		l.setWaiting(tickCtx, domain.ConditionAwaitingSession)
		return
	}

	l.mu.Lock()
	set, err := l.ledger.Current()
	l.mu.Unlock()
	if err != nil {
		l.setWaiting(tickCtx, domain.ConditionNoProductSets)
		return
	}

	applyErr := l.apps.ReplaceProducts(tickCtx, l.accountID, sessionID, set.ID)

	l.mu.Lock()
	if l.phase != domain.PhaseRunning {
		// Stopped while the apply was in flight; discard the result.
		l.mu.Unlock()
		return
	}

	if applyErr == nil {
		l.tracker.Reset()
		l.ledger.Advance()
		l.condition = domain.ConditionRotating
		l.sessionID = sessionID
		l.current = set.Name
		if next, err := l.ledger.Current(); err == nil {
			l.next = next.Name
		}
		l.lastErr = ""
		status := l.snapshotLocked()
		l.mu.Unlock()

		l.countTick("applied")
		l.publish(status)
		slog.InfoContext(tickCtx, "Product set applied",
			"account_id", l.accountID, "session_id", sessionID,
			"applied", status.CurrentSetName, "next", status.NextSetName)
		return
	}

	// Failure path. The ledger position is deliberately left alone so a
	// transient failure never skips a set.
	class := Classify(applyErr)
	stop := l.tracker.Record(class)
	l.sessionID = sessionID
	l.lastErr = applyErr.Error()
	metrics.ConsecutiveErrors.WithLabelValues(l.accountLabel()).Set(float64(l.tracker.Consecutive()))

	if stop {
		l.phase = domain.PhaseStoppedOnError
		status := l.snapshotLocked()
		l.mu.Unlock()

		l.countTick(class.String() + "_error")
		l.publish(status)
		slog.ErrorContext(tickCtx, "Rotation loop stopped on error",
			"account_id", l.accountID, "class", class.String(),
			"consecutive_errors", status.ConsecutiveErrors, "error", applyErr)
		return
	}

	status := l.snapshotLocked()
	l.mu.Unlock()

	l.countTick(class.String() + "_error")
	l.publish(status)
	slog.WarnContext(tickCtx, "Apply failed, will retry",
		"account_id", l.accountID, "class", class.String(),
		"consecutive_errors", status.ConsecutiveErrors, "error", applyErr)
}

func (l *Loop) noteTransient(ctx context.Context, err error) {
	l.mu.Lock()
	if l.phase != domain.PhaseRunning {
		l.mu.Unlock()
		return
	}
	l.lastErr = err.Error()
	status := l.snapshotLocked()
	l.mu.Unlock()

	l.countTick("transient_error")
	l.publish(status)
	slog.WarnContext(ctx, "Session check failed, will retry", "account_id", l.accountID, "error", err)
}

func (l *Loop) setWaiting(ctx context.Context, condition domain.LoopCondition) {
	l.mu.Lock()
	if l.phase != domain.PhaseRunning {
		l.mu.Unlock()
		return
	}
	changed := l.condition != condition
	l.condition = condition
	l.sessionID = ""
	status := l.snapshotLocked()
	l.mu.Unlock()

	l.countTick(string(condition))
	if changed {
		l.publish(status)
		slog.InfoContext(ctx, "Rotation loop waiting", "account_id", l.accountID, "condition", condition)
	}
}

// exit settles the final phase when the run goroutine ends: an operator stop
// lands in Idle, StoppedOnError stays terminal until an explicit restart. A
// goroutine whose generation was superseded by a restart leaves the new run's
// state alone.
func (l *Loop) exit(stopCh chan struct{}) {
	l.mu.Lock()
	if l.stopCh != stopCh {
		l.mu.Unlock()
		return
	}
	if l.phase != domain.PhaseStoppedOnError {
		l.phase = domain.PhaseIdle
		l.condition = ""
		l.sessionID = ""
	}
	status := l.snapshotLocked()
	l.mu.Unlock()
	l.publish(status)
}

func (l *Loop) currentDelay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delay
}

// refreshNamesLocked recomputes the current/next set names from the ledger.
func (l *Loop) refreshNamesLocked() {
	l.current = ""
	l.next = ""
	if cur, err := l.ledger.Current(); err == nil {
		l.current = cur.Name
		if peek, err := l.ledger.At(nextIndex(l.ledger)); err == nil {
			l.next = peek.Name
		}
	}
}

func nextIndex(ledger *Ledger) int {
	if ledger.Len() == 0 {
		return 0
	}
	return (ledger.Index() + 1) % ledger.Len()
}

func (l *Loop) snapshotLocked() domain.LoopStatus {
	return domain.LoopStatus{
		AccountID:         l.accountID,
		Phase:             l.phase,
		Condition:         l.condition,
		SessionID:         l.sessionID,
		CurrentSetName:    l.current,
		NextSetName:       l.next,
		DelaySeconds:      int(l.delay / time.Second),
		ConsecutiveErrors: l.tracker.Consecutive(),
		LastError:         l.lastErr,
		UpdatedAt:         l.clock.Now(),
	}
}

func (l *Loop) publish(status domain.LoopStatus) {
	metrics.LoopPhase.WithLabelValues(l.accountLabel()).Set(metrics.PhaseValue(string(status.Phase)))
	if l.sink != nil {
		l.sink.PublishStatus(status)
	}
}

func (l *Loop) countTick(outcome string) {
	metrics.TicksTotal.WithLabelValues(l.accountLabel(), outcome).Inc()
}

func (l *Loop) accountLabel() string { return strconv.Itoa(l.accountID) }
