package daemon

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/workspace"
)

// StateSynchronizer keeps the on-disk workspace state in step with the
// shell. Snapshots are taken on the compositor loop; the file write happens
// on the calling goroutine since it touches no shell state.
type StateSynchronizer struct {
	loop      *eventloop.Loop
	sh        *shell.Shell
	statePath string
	logger    *slog.Logger

	mu   sync.Mutex
	last *workspace.State
}

// NewStateSynchronizer creates a synchronizer persisting to statePath. An
// empty path uses the runtime-dir default.
func NewStateSynchronizer(loop *eventloop.Loop, sh *shell.Shell, statePath string, logger *slog.Logger) (*StateSynchronizer, error) {
	if statePath == "" {
		var err error
		statePath, err = workspace.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{
		loop:      loop,
		sh:        sh,
		statePath: statePath,
		logger:    logger,
	}, nil
}

// StatePath returns where state is persisted.
func (s *StateSynchronizer) StatePath() string { return s.statePath }

// Restore loads the persisted state and applies it on the compositor loop.
// Called once at boot, after the outputs have been mapped.
func (s *StateSynchronizer) Restore() error {
	st, err := workspace.Read(s.statePath)
	if err != nil {
		return err
	}
	s.loop.Post(func() {
		st.Apply(s.sh)
	})
	s.mu.Lock()
	s.last = st
	s.mu.Unlock()
	return nil
}

// SyncNow snapshots the shell and writes the state file if anything changed
// since the last write. Safe from any goroutine.
func (s *StateSynchronizer) SyncNow() {
	done := make(chan *workspace.State, 1)
	s.loop.Post(func() {
		s.mu.Lock()
		last := s.last
		s.mu.Unlock()
		if last != nil && !last.Changed(s.sh) {
			done <- nil
			return
		}
		done <- workspace.Snapshot(s.sh)
	})

	st := <-done
	if st == nil {
		return
	}
	if err := workspace.Write(st, s.statePath); err != nil {
		s.logger.Warn("failed to persist workspace state", "path", s.statePath, "error", err)
		return
	}
	s.mu.Lock()
	s.last = st
	s.mu.Unlock()
	s.logger.Debug("workspace state persisted", "path", s.statePath, "outputs", len(st.Outputs))
}
