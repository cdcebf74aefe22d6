package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/tiling"
)

func newShell(t *testing.T) *shell.Shell {
	t.Helper()
	sh := shell.New(input.NewSeat("seat0"), tiling.Gaps{Inner: 8}, []string{"1", "2", "3"})
	if _, err := sh.MapOutput("X11-1", geometry.Rect{Width: 1280, Height: 800}); err != nil {
		t.Fatalf("MapOutput X11-1 failed: %v", err)
	}
	if _, err := sh.MapOutput("X11-2", geometry.Rect{X: 1280, Width: 1280, Height: 800}); err != nil {
		t.Fatalf("MapOutput X11-2 failed: %v", err)
	}
	return sh
}

func TestSnapshotApplyRoundTrip(t *testing.T) {
	sh := newShell(t)
	out, _ := sh.Outputs().Get("X11-2")
	if err := sh.SwitchWorkspace(out, 2); err != nil {
		t.Fatalf("SwitchWorkspace failed: %v", err)
	}

	st := Snapshot(sh)

	fresh := newShell(t)
	st.Apply(fresh)

	restored, _ := fresh.Outputs().Get("X11-2")
	if got := fresh.ActiveIndex(restored); got != 2 {
		t.Errorf("expected workspace 2 active on X11-2 after restore, got %d", got)
	}
	other, _ := fresh.Outputs().Get("X11-1")
	if got := fresh.ActiveIndex(other); got != 0 {
		t.Errorf("expected workspace 0 active on X11-1, got %d", got)
	}
}

func TestApplySkipsUnknownOutputsAndBadIndices(t *testing.T) {
	st := &State{Outputs: []OutputState{
		{Name: "gone-1", ActiveWorkspace: 1},
		{Name: "X11-1", ActiveWorkspace: 99},
	}}

	sh := newShell(t)
	st.Apply(sh)

	out, _ := sh.Outputs().Get("X11-1")
	if got := sh.ActiveIndex(out); got != 0 {
		t.Errorf("out-of-range saved index must be ignored, got active %d", got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waytile-state.json")

	sh := newShell(t)
	out, _ := sh.Outputs().Get("X11-1")
	if err := sh.SwitchWorkspace(out, 1); err != nil {
		t.Fatalf("SwitchWorkspace failed: %v", err)
	}

	if err := Write(Snapshot(sh), path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	st, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	saved, ok := st.lookup("X11-1")
	if !ok || saved.ActiveWorkspace != 1 {
		t.Errorf("expected X11-1 active workspace 1, got %+v (found=%v)", saved, ok)
	}

	// No stray temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be renamed away, stat err = %v", err)
	}
}

func TestReadMissingFileIsEmptyState(t *testing.T) {
	st, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Read of missing file failed: %v", err)
	}
	if len(st.Outputs) != 0 {
		t.Errorf("expected empty state, got %+v", st)
	}
}

func TestChangedDetectsWorkspaceSwitch(t *testing.T) {
	sh := newShell(t)
	st := Snapshot(sh)
	if st.Changed(sh) {
		t.Fatalf("fresh snapshot must not report change")
	}

	out, _ := sh.Outputs().Get("X11-1")
	if err := sh.SwitchWorkspace(out, 1); err != nil {
		t.Fatalf("SwitchWorkspace failed: %v", err)
	}
	if !st.Changed(sh) {
		t.Errorf("expected change after workspace switch")
	}
}
