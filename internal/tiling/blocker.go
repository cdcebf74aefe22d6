package tiling

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultBlockerTimeout is how long a blocker may hold a transaction open
// before the sweeper forces it.
const DefaultBlockerTimeout = time.Second

// Blocker tracks one window that was sent a new configure and has not yet
// committed a matching buffer. A layout transaction presents only once every
// blocker in it is signaled or expired.
type Blocker struct {
	id       uuid.UUID
	surface  SurfaceID
	deadline time.Time

	mu       sync.Mutex
	signaled bool
}

// NewBlocker creates a blocker for surface that expires at now+timeout.
func NewBlocker(surface SurfaceID, timeout time.Duration) *Blocker {
	return &Blocker{
		id:       uuid.New(),
		surface:  surface,
		deadline: time.Now().Add(timeout),
	}
}

// ID returns the blocker's unique id.
func (b *Blocker) ID() uuid.UUID { return b.id }

// Surface returns the surface this blocker is waiting on.
func (b *Blocker) Surface() SurfaceID { return b.surface }

// Deadline returns the instant after which the blocker counts as expired.
func (b *Blocker) Deadline() time.Time { return b.deadline }

// Signal marks the blocker satisfied. Safe to call more than once.
func (b *Blocker) Signal() {
	b.mu.Lock()
	b.signaled = true
	b.mu.Unlock()
}

// Signaled reports whether the surface has committed.
func (b *Blocker) Signaled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signaled
}

// Expired reports whether the blocker has passed its deadline at now.
func (b *Blocker) Expired(now time.Time) bool {
	return now.After(b.deadline)
}

// Resolved reports whether the blocker no longer holds the transaction,
// either signaled or past its deadline.
func (b *Blocker) Resolved(now time.Time) bool {
	return b.Signaled() || b.Expired(now)
}
