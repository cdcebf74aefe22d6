package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/waytile/internal/config"
	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/shell"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler keeps the mapped outputs in step with the configured ones:
// outputs added to the config get mapped, removed ones get unmapped, and
// geometry changes are applied and re-solved. It also drives periodic state
// persistence through the synchronizer.
type Reconciler struct {
	interval time.Duration
	loop     *eventloop.Loop
	sh       *shell.Shell
	sync     *StateSynchronizer
	logger   *slog.Logger

	mu      sync.Mutex
	desired []config.OutputConfig
}

// NewReconciler creates a reconciler targeting the given output set.
func NewReconciler(cfg ReconcilerConfig, loop *eventloop.Loop, sh *shell.Shell, sync *StateSynchronizer, desired []config.OutputConfig) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		loop:     loop,
		sh:       sh,
		sync:     sync,
		logger:   logger,
		desired:  append([]config.OutputConfig(nil), desired...),
	}
}

// SetDesired replaces the target output set, typically after a config
// reload, and reconciles immediately.
func (r *Reconciler) SetDesired(desired []config.OutputConfig) {
	r.mu.Lock()
	r.desired = append([]config.OutputConfig(nil), desired...)
	r.mu.Unlock()
	r.ReconcileNow()
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	r.mu.Lock()
	desired := append([]config.OutputConfig(nil), r.desired...)
	r.mu.Unlock()

	done := make(chan struct{})
	r.loop.Post(func() {
		defer close(done)
		r.applyDesired(desired)
	})
	<-done

	if r.sync != nil {
		r.sync.SyncNow()
	}
}

// applyDesired mutates shell state and therefore runs on the compositor
// loop.
func (r *Reconciler) applyDesired(desired []config.OutputConfig) {
	want := make(map[string]config.OutputConfig, len(desired))
	for _, oc := range desired {
		want[oc.Name] = oc
	}

	// Unmap outputs that are no longer configured. In-flight grabs on them
	// notice through their weak references.
	for _, out := range r.sh.Outputs().List() {
		if _, ok := want[out.Name()]; ok {
			continue
		}
		r.logger.Info("unmapping removed output", "output", out.Name())
		if err := r.sh.UnmapOutput(out.Name()); err != nil {
			r.logger.Warn("failed to unmap output", "output", out.Name(), "error", err)
		}
	}

	for _, oc := range desired {
		geom := geometry.Rect{X: oc.X, Y: oc.Y, Width: oc.Width, Height: oc.Height}
		out, ok := r.sh.Outputs().Get(oc.Name)
		if !ok {
			r.logger.Info("mapping new output", "output", oc.Name, "geometry", geom)
			mapped, err := r.sh.MapOutput(oc.Name, geom)
			if err != nil {
				r.logger.Warn("failed to map output", "output", oc.Name, "error", err)
				continue
			}
			if oc.Scale > 0 {
				mapped.SetScale(oc.Scale)
			}
			continue
		}

		if out.Geometry() != geom {
			r.logger.Info("output geometry changed", "output", oc.Name, "geometry", geom)
			out.SetGeometry(geom)
			r.sh.Refresh(out)
		}
		if oc.Scale > 0 && out.Scale() != oc.Scale {
			out.SetScale(oc.Scale)
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
