package tiling

import (
	"time"

	"github.com/1broseidon/waytile/internal/output"
)

// Layer is the tiling state of one workspace: the tree queue plus the
// blockers of the transaction currently in flight.
type Layer struct {
	queue           *Queue
	gaps            Gaps
	blockerTimeout  time.Duration
	pendingBlockers []*Blocker
}

// NewLayer returns an empty layer with the given gap configuration.
func NewLayer(gaps Gaps) *Layer {
	return &Layer{
		queue:          NewQueue(),
		gaps:           gaps,
		blockerTimeout: DefaultBlockerTimeout,
	}
}

// Queue returns the layer's tree queue.
func (l *Layer) Queue() *Queue { return l.queue }

// Gaps returns the layer's gap configuration.
func (l *Layer) Gaps() Gaps { return l.gaps }

// SetGaps replaces the gap configuration. Takes effect on the next refresh.
func (l *Layer) SetGaps(gaps Gaps) { l.gaps = gaps }

// SetBlockerTimeout overrides how long freshly issued blockers may hold a
// transaction open.
func (l *Layer) SetBlockerTimeout(d time.Duration) {
	if d > 0 {
		l.blockerTimeout = d
	}
}

// Refresh re-solves the working tree against the output and queues a
// blocker for every window whose geometry changed.
func (l *Layer) Refresh(out *output.Output) {
	blockers := UpdatePositions(out, l.queue.Back(), l.gaps, l.blockerTimeout)
	l.pendingBlockers = append(l.pendingBlockers, blockers...)
}

// PendingBlockers returns the blockers of the in-flight transaction.
func (l *Layer) PendingBlockers() []*Blocker {
	out := make([]*Blocker, len(l.pendingBlockers))
	copy(out, l.pendingBlockers)
	return out
}

// TakePending hands the in-flight blockers to the caller and clears the
// pending set.
func (l *Layer) TakePending() []*Blocker {
	out := l.pendingBlockers
	l.pendingBlockers = nil
	return out
}

// SweepPending drops every blocker that is signaled or past its deadline
// and reports how many remain.
func (l *Layer) SweepPending(now time.Time) int {
	kept := l.pendingBlockers[:0]
	for _, b := range l.pendingBlockers {
		if !b.Resolved(now) {
			kept = append(kept, b)
		}
	}
	l.pendingBlockers = kept
	return len(kept)
}

// SignalSurface marks every pending blocker waiting on surface as
// satisfied. Called when the surface commits a buffer for its latest
// configure.
func (l *Layer) SignalSurface(surface SurfaceID) {
	for _, b := range l.pendingBlockers {
		if b.Surface() == surface {
			b.Signal()
		}
	}
}
