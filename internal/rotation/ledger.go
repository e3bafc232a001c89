package rotation

import (
	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
)

// Ledger is the ordered, cyclic sequence of product sets plus the current
// rotation index. It is not goroutine-safe; the owning Loop serializes access.
type Ledger struct {
	sets  []domain.ProductSet
	index int
}

// NewLedger builds a ledger from the given sets. Sets with zero items cannot
// be applied to a session and are filtered out up front.
func NewLedger(sets []domain.ProductSet) *Ledger {
	return &Ledger{sets: filterUsable(sets)}
}

func filterUsable(sets []domain.ProductSet) []domain.ProductSet {
	usable := make([]domain.ProductSet, 0, len(sets))
	for _, s := range sets {
		if len(s.Items) > 0 {
			usable = append(usable, s)
		}
	}
	return usable
}

// Len returns the number of usable product sets.
func (l *Ledger) Len() int { return len(l.sets) }

// Index returns the current rotation position.
func (l *Ledger) Index() int { return l.index }

// Current returns the product set at the current index.
func (l *Ledger) Current() (domain.ProductSet, error) {
	if len(l.sets) == 0 {
		return domain.ProductSet{}, domain.ErrEmptyLedger
	}
	return l.sets[l.index], nil
}

// At returns the product set at the given index without moving the cursor.
func (l *Ledger) At(index int) (domain.ProductSet, error) {
	if index < 0 || index >= len(l.sets) {
		return domain.ProductSet{}, domain.ErrIndexOutOfRange
	}
	return l.sets[index], nil
}

// Advance moves the index to (index+1) mod len. No-op when the ledger holds
// one set or none.
func (l *Ledger) Advance() {
	if len(l.sets) <= 1 {
		return
	}
	l.index = (l.index + 1) % len(l.sets)
}

// Seek sets the index directly, for manual operator override.
func (l *Ledger) Seek(index int) error {
	if index < 0 || index >= len(l.sets) {
		return domain.ErrIndexOutOfRange
	}
	l.index = index
	return nil
}

// Rebuild replaces the backing sequence after an external catalog change.
// The previous index is re-clamped modulo the new length so an in-progress
// rotation is not reset to zero just because metadata refreshed; shrinking
// never fails, it clamps.
func (l *Ledger) Rebuild(sets []domain.ProductSet) {
	l.sets = filterUsable(sets)
	if len(l.sets) == 0 {
		l.index = 0
		return
	}
	l.index %= len(l.sets)
}
