package daemon

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/waytile/internal/config"
	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/tiling"
	"github.com/1broseidon/waytile/internal/workspace"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startLoop runs the compositor loop for the duration of the test.
func startLoop(t *testing.T) *eventloop.Loop {
	t.Helper()
	loop := eventloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)
	return loop
}

// onLoop runs fn on the loop and waits for it.
func onLoop(loop *eventloop.Loop, fn func()) {
	done := make(chan struct{})
	loop.Post(func() {
		fn()
		close(done)
	})
	<-done
}

func TestReconcilerMapsConfiguredOutputs(t *testing.T) {
	loop := startLoop(t)
	sh := shell.New(input.NewSeat("seat0"), tiling.Gaps{Inner: 8}, nil)

	desired := []config.OutputConfig{
		{Name: "X11-1", Width: 1280, Height: 800},
		{Name: "X11-2", X: 1280, Width: 1920, Height: 1080, Scale: 2},
	}
	r := NewReconciler(ReconcilerConfig{Logger: discard()}, loop, sh, nil, desired)
	r.ReconcileNow()

	var names []string
	onLoop(loop, func() {
		for _, out := range sh.Outputs().List() {
			names = append(names, out.Name())
		}
	})
	if len(names) != 2 {
		t.Fatalf("expected 2 mapped outputs, got %v", names)
	}

	out, _ := sh.Outputs().Get("X11-2")
	if out.Scale() != 2 {
		t.Errorf("expected scale 2 on X11-2, got %v", out.Scale())
	}
}

func TestReconcilerUnmapsAndResizesOutputs(t *testing.T) {
	loop := startLoop(t)
	sh := shell.New(input.NewSeat("seat0"), tiling.Gaps{Inner: 8}, nil)
	onLoop(loop, func() {
		sh.MapOutput("stale", geometry.Rect{Width: 800, Height: 600})
		sh.MapOutput("X11-1", geometry.Rect{Width: 1280, Height: 800})
	})

	r := NewReconciler(ReconcilerConfig{Logger: discard()}, loop, sh, nil, nil)
	r.SetDesired([]config.OutputConfig{{Name: "X11-1", Width: 1920, Height: 1080}})

	if _, ok := sh.Outputs().Get("stale"); ok {
		t.Errorf("expected output %q to be unmapped", "stale")
	}
	out, ok := sh.Outputs().Get("X11-1")
	if !ok {
		t.Fatalf("expected X11-1 to stay mapped")
	}
	if got := out.Geometry(); got.Width != 1920 || got.Height != 1080 {
		t.Errorf("expected geometry update to 1920x1080, got %v", got)
	}
}

func TestSynchronizerPersistsAndRestores(t *testing.T) {
	loop := startLoop(t)
	sh := shell.New(input.NewSeat("seat0"), tiling.Gaps{Inner: 8}, nil)
	onLoop(loop, func() {
		sh.MapOutput("X11-1", geometry.Rect{Width: 1280, Height: 800})
		out, _ := sh.Outputs().Get("X11-1")
		sh.SwitchWorkspace(out, 3)
	})

	path := filepath.Join(t.TempDir(), "state.json")
	sync, err := NewStateSynchronizer(loop, sh, path, discard())
	if err != nil {
		t.Fatalf("NewStateSynchronizer failed: %v", err)
	}
	sync.SyncNow()

	st, err := workspace.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(st.Outputs) != 1 || st.Outputs[0].ActiveWorkspace != 3 {
		t.Fatalf("expected persisted active workspace 3, got %+v", st.Outputs)
	}

	// A fresh shell restores the saved workspace.
	fresh := shell.New(input.NewSeat("seat0"), tiling.Gaps{Inner: 8}, nil)
	onLoop(loop, func() {
		fresh.MapOutput("X11-1", geometry.Rect{Width: 1280, Height: 800})
	})
	sync2, err := NewStateSynchronizer(loop, fresh, path, discard())
	if err != nil {
		t.Fatalf("NewStateSynchronizer failed: %v", err)
	}
	if err := sync2.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	var active int
	onLoop(loop, func() {
		out, _ := fresh.Outputs().Get("X11-1")
		active = fresh.ActiveIndex(out)
	})
	if active != 3 {
		t.Errorf("expected restored workspace 3, got %d", active)
	}
}

func TestConstructorsDefaultNilLogger(t *testing.T) {
	loop := startLoop(t)
	sh := shell.New(input.NewSeat("seat0"), tiling.Gaps{Inner: 8}, nil)

	r := NewReconciler(ReconcilerConfig{}, loop, sh, nil, []config.OutputConfig{
		{Name: "X11-1", Width: 1280, Height: 800},
	})
	r.ReconcileNow()
	if _, ok := sh.Outputs().Get("X11-1"); !ok {
		t.Errorf("expected reconcile pass to map the output without a logger")
	}

	s := NewSweeper(SweeperConfig{}, loop, sh)
	s.SweepNow()

	sync, err := NewStateSynchronizer(loop, sh, filepath.Join(t.TempDir(), "state.json"), nil)
	if err != nil {
		t.Fatalf("NewStateSynchronizer failed: %v", err)
	}
	sync.SyncNow()
}

func TestSweeperExpiresStaleBlockers(t *testing.T) {
	loop := startLoop(t)
	sh := shell.New(input.NewSeat("seat0"), tiling.Gaps{Inner: 8}, nil)

	var ws *shell.Workspace
	onLoop(loop, func() {
		out, _ := sh.MapOutput("X11-1", geometry.Rect{Width: 1280, Height: 800})
		ws = sh.ActiveSpace(out)
		ws.Layer().SetBlockerTimeout(time.Millisecond)
		sh.MapWindow(out, 1)
		sh.MapWindow(out, 2)
	})
	if len(ws.Layer().PendingBlockers()) == 0 {
		t.Fatalf("expected pending blockers after mapping windows")
	}

	time.Sleep(5 * time.Millisecond)

	s := NewSweeper(SweeperConfig{Logger: discard()}, loop, sh)
	s.SweepNow()

	var remaining int
	onLoop(loop, func() {
		remaining = len(ws.Layer().PendingBlockers())
	})
	if remaining != 0 {
		t.Errorf("expected all blockers expired, %d remain", remaining)
	}
}
