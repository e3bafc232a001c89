package domain

import "time"

// LoopPhase is the lifecycle state of a rotation loop.
type LoopPhase string

const (
	PhaseIdle           LoopPhase = "idle"
	PhaseRunning        LoopPhase = "running"
	PhaseStopping       LoopPhase = "stopping"
	PhaseStoppedOnError LoopPhase = "stopped_on_error"
)

// LoopCondition describes what a Running loop is currently doing. A loop that
// finds no live session or no usable product sets keeps waiting and retrying;
// neither condition is an error.
type LoopCondition string

const (
	ConditionRotating        LoopCondition = "rotating"
	ConditionAwaitingSession LoopCondition = "awaiting_session"
	ConditionNoProductSets   LoopCondition = "no_product_sets"
)

// LoopStatus is a point-in-time snapshot of a rotation loop, safe to serialize
// and hand to operators.
type LoopStatus struct {
	AccountID         int           `json:"account_id"`
	Phase             LoopPhase     `json:"phase"`
	Condition         LoopCondition `json:"condition,omitempty"`
	SessionID         string        `json:"session_id,omitempty"`
	CurrentSetName    string        `json:"current_set_name,omitempty"`
	NextSetName       string        `json:"next_set_name,omitempty"`
	DelaySeconds      int           `json:"delay_seconds"`
	ConsecutiveErrors int           `json:"consecutive_errors"`
	LastError         string        `json:"last_error,omitempty"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// StatusSink receives loop status snapshots as they change. Implemented by the
// websocket hub; a nil-safe no-op is fine for tests.
type StatusSink interface {
	PublishStatus(status LoopStatus)
}
