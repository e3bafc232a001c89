package rotation

import (
	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
)

// Class is the error policy's verdict on a failed gateway call.
type Class int

const (
	// Transient failures are absorbed; the loop retries on the next tick.
	Transient Class = iota
	// Escalating failures count toward the consecutive-failure threshold.
	Escalating
	// Fatal failures stop the loop immediately regardless of history.
	Fatal
)

func (c Class) String() string {
	switch c {
	case Escalating:
		return "escalating"
	case Fatal:
		return "fatal"
	default:
		return "transient"
	}
}

// DefaultStopThreshold is how many consecutive escalating failures force a
// stop-with-alert.
const DefaultStopThreshold = 3

// Classify maps a gateway failure to its policy class. Errors carrying no
// recognizable signal are Transient - unknown errors never silently escalate.
func Classify(err error) Class {
	switch domain.GatewayErrorKindOf(err) {
	case domain.GatewayValidationRejected:
		return Escalating
	case domain.GatewayAuthMismatch:
		return Fatal
	default:
		return Transient
	}
}

// FailureTracker counts consecutive escalating failures. Not goroutine-safe;
// the owning Loop serializes access.
type FailureTracker struct {
	threshold   int
	consecutive int
}

func NewFailureTracker(threshold int) *FailureTracker {
	if threshold <= 0 {
		threshold = DefaultStopThreshold
	}
	return &FailureTracker{threshold: threshold}
}

// Record notes one classified failure and reports whether the loop must stop.
// Transient failures leave the counter untouched.
func (t *FailureTracker) Record(class Class) (stop bool) {
	switch class {
	case Fatal:
		return true
	case Escalating:
		t.consecutive++
		return t.consecutive >= t.threshold
	default:
		return false
	}
}

// Reset clears the counter. Called after every successful apply.
func (t *FailureTracker) Reset() { t.consecutive = 0 }

// Consecutive returns the current consecutive escalating-failure count.
func (t *FailureTracker) Consecutive() int { return t.consecutive }
