// Package sessionlock tracks the screen-lock state of the session. While a
// lock is active, lock surfaces replace the tiled content on every output
// and normal pointer targets are suppressed.
package sessionlock

import (
	"errors"
	"sync"

	"github.com/1broseidon/waytile/internal/tiling"
)

// ErrAlreadyLocked is returned when a second locker tries to take the
// session.
var ErrAlreadyLocked = errors.New("sessionlock: session is already locked")

// Manager holds the lock state. It is read from the event loop and from
// backend render paths, so access is synchronized.
type Manager struct {
	mu       sync.RWMutex
	active   bool
	surfaces map[string]tiling.SurfaceID
}

// NewManager returns an unlocked manager.
func NewManager() *Manager {
	return &Manager{surfaces: make(map[string]tiling.SurfaceID)}
}

// Lock takes the session lock. Only one holder at a time.
func (m *Manager) Lock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return ErrAlreadyLocked
	}
	m.active = true
	return nil
}

// Unlock releases the session and drops all lock surfaces.
func (m *Manager) Unlock() {
	m.mu.Lock()
	m.active = false
	m.surfaces = make(map[string]tiling.SurfaceID)
	m.mu.Unlock()
}

// Active reports whether the session is locked.
func (m *Manager) Active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// AddSurface associates a lock surface with an output. Ignored while the
// session is not locked.
func (m *Manager) AddSurface(outputName string, surface tiling.SurfaceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	m.surfaces[outputName] = surface
}

// SurfaceFor returns the lock surface shown on an output.
func (m *Manager) SurfaceFor(outputName string) (tiling.SurfaceID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.surfaces[outputName]
	return s, ok
}
