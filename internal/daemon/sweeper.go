package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/shell"
)

// SweeperConfig holds configuration for the blocker sweeper.
type SweeperConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Sweeper periodically resolves layout transactions whose blockers have
// been signaled or have passed their deadline. Sweeps run on the
// compositor loop; the ticker goroutine only posts them.
type Sweeper struct {
	interval time.Duration
	loop     *eventloop.Loop
	sh       *shell.Shell
	logger   *slog.Logger
}

// NewSweeper creates a new sweeper over the shell's workspaces.
func NewSweeper(cfg SweeperConfig, loop *eventloop.Loop, sh *shell.Shell) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		interval: interval,
		loop:     loop,
		sh:       sh,
		logger:   logger,
	}
}

// Run starts the sweep loop. Blocks until context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("blocker sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("blocker sweeper stopped")
			return
		case <-ticker.C:
			s.loop.Post(s.sweep)
		}
	}
}

// sweep performs a single sweep pass on the compositor loop.
func (s *Sweeper) sweep() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			s.logger.Error("sweeper panic recovered", "error", err)
		}
	}()

	now := time.Now()
	for _, out := range s.sh.Outputs().List() {
		for _, ws := range s.sh.Workspaces(out) {
			pending := len(ws.Layer().PendingBlockers())
			if pending == 0 {
				continue
			}
			remaining := ws.Layer().SweepPending(now)
			if remaining == pending {
				continue
			}
			s.logger.Debug("blockers swept",
				"output", out.Name(),
				"workspace", ws.Handle(),
				"resolved", pending-remaining,
				"remaining", remaining)
			if remaining == 0 {
				s.logger.Info("layout transaction presented",
					"output", out.Name(),
					"workspace", ws.Handle())
			}
		}
	}
}

// SweepNow schedules an immediate sweep pass.
func (s *Sweeper) SweepNow() {
	s.loop.Post(s.sweep)
}
