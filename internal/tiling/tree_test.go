package tiling

import (
	"errors"
	"testing"
)

// pairTree builds a tree whose root is a two-window group with the given
// orientation and pane sizes.
func pairTree(t *testing.T, o Orientation, left, right int) (*Tree, NodeID) {
	t.Helper()
	tr := NewTree()
	first, err := tr.SetRootWindow(1)
	if err != nil {
		t.Fatalf("SetRootWindow failed: %v", err)
	}
	if _, err := tr.Split(first, o, 2); err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	group := tr.Root()
	tr.nodes[group].sizes = []int{left, right}
	return tr, group
}

func TestResizeBoundaryScenarios(t *testing.T) {
	tests := []struct {
		name        string
		orientation Orientation
		sizes       [2]int
		delta       int
		want        [2]int
		applied     bool
	}{
		{"grow within floors", Vertical, [2]int{500, 500}, 50, [2]int{550, 450}, true},
		{"pushback after right clamp", Vertical, [2]int{400, 400}, 200, [2]int{440, 360}, true},
		{"veto at combined floor", Vertical, [2]int{360, 360}, 50, [2]int{360, 360}, false},
		{"veto below combined floor", Vertical, [2]int{300, 300}, -10, [2]int{300, 300}, false},
		{"horizontal shrink", Horizontal, [2]int{300, 300}, -10, [2]int{290, 310}, true},
		{"pushback exhausted", Vertical, [2]int{361, 360}, 1000, [2]int{361, 360}, true},
		{"left clamps on big shrink", Vertical, [2]int{500, 500}, -1000, [2]int{360, 640}, true},
		{"zero delta", Vertical, [2]int{500, 500}, 0, [2]int{500, 500}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, group := pairTree(t, tt.orientation, tt.sizes[0], tt.sizes[1])
			applied, err := tr.ResizeBoundary(group, 0, tt.delta, tt.orientation.PaneMin())
			if err != nil {
				t.Fatalf("ResizeBoundary failed: %v", err)
			}
			if applied != tt.applied {
				t.Errorf("expected applied=%v, got %v", tt.applied, applied)
			}
			got := tr.nodes[group].sizes
			if got[0] != tt.want[0] || got[1] != tt.want[1] {
				t.Errorf("expected sizes %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResizeBoundaryConservesTotal(t *testing.T) {
	for delta := -1200; delta <= 1200; delta += 37 {
		tr, group := pairTree(t, Vertical, 700, 500)
		if _, err := tr.ResizeBoundary(group, 0, delta, Vertical.PaneMin()); err != nil {
			t.Fatalf("delta %d: %v", delta, err)
		}
		sizes := tr.nodes[group].sizes
		if sizes[0]+sizes[1] != 1200 {
			t.Errorf("delta %d: total changed, got %v", delta, sizes)
		}
		if sizes[0] < MinPaneWidth || sizes[1] < MinPaneWidth {
			t.Errorf("delta %d: pane below minimum, got %v", delta, sizes)
		}
	}
}

func TestResizeBoundaryVetoEdge(t *testing.T) {
	// Exactly at the combined minimum the resize is refused; one pixel
	// above it goes through.
	tr, group := pairTree(t, Vertical, 360, 360)
	applied, err := tr.ResizeBoundary(group, 0, 10, Vertical.PaneMin())
	if err != nil {
		t.Fatalf("ResizeBoundary failed: %v", err)
	}
	if applied {
		t.Errorf("expected veto at combined extent %d", MinPairWidth)
	}

	tr, group = pairTree(t, Vertical, 361, 360)
	applied, err = tr.ResizeBoundary(group, 0, -1, Vertical.PaneMin())
	if err != nil {
		t.Fatalf("ResizeBoundary failed: %v", err)
	}
	if !applied {
		t.Errorf("expected resize to apply one pixel above the combined minimum")
	}
	got := tr.nodes[group].sizes
	if got[0] != 360 || got[1] != 361 {
		t.Errorf("expected sizes [360 361], got %v", got)
	}
}

func TestResizeBoundaryBadBoundary(t *testing.T) {
	tr, group := pairTree(t, Vertical, 500, 500)
	if _, err := tr.ResizeBoundary(group, 1, 10, Vertical.PaneMin()); !errors.Is(err, ErrNoSuchBoundary) {
		t.Errorf("expected ErrNoSuchBoundary, got %v", err)
	}
	if _, err := tr.ResizeBoundary(group, -1, 10, Vertical.PaneMin()); !errors.Is(err, ErrNoSuchBoundary) {
		t.Errorf("expected ErrNoSuchBoundary, got %v", err)
	}
}

func TestResizeBoundaryMissingNode(t *testing.T) {
	tr := NewTree()
	if _, err := tr.ResizeBoundary(99, 0, 10, MinPaneWidth); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestResizeBoundaryWindowPanics(t *testing.T) {
	tr := NewTree()
	id, err := tr.SetRootWindow(1)
	if err != nil {
		t.Fatalf("SetRootWindow failed: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic when resizing a window node")
		}
	}()
	tr.ResizeBoundary(id, 0, 10, MinPaneWidth)
}

func TestSplitBuildsGroup(t *testing.T) {
	tr := NewTree()
	first, err := tr.SetRootWindow(1)
	if err != nil {
		t.Fatalf("SetRootWindow failed: %v", err)
	}
	second, err := tr.Split(first, Vertical, 2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	root, err := tr.Get(tr.Root())
	if err != nil {
		t.Fatalf("root lookup failed: %v", err)
	}
	if !root.IsGroup() || root.Orientation() != Vertical {
		t.Fatalf("expected vertical group root, got %v", root)
	}
	children, err := tr.ChildrenIDs(tr.Root())
	if err != nil {
		t.Fatalf("ChildrenIDs failed: %v", err)
	}
	if len(children) != 2 || children[0] != first || children[1] != second {
		t.Errorf("expected children [%d %d], got %v", first, second, children)
	}
	if tr.Len() != 3 {
		t.Errorf("expected 3 nodes, got %d", tr.Len())
	}
}

func TestRemoveCollapsesGroup(t *testing.T) {
	tr := NewTree()
	first, _ := tr.SetRootWindow(1)
	second, err := tr.Split(first, Vertical, 2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	group := tr.Root()

	if err := tr.Remove(second); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if tr.Root() != first {
		t.Errorf("expected surviving window %d as root, got %d", first, tr.Root())
	}
	if _, err := tr.Get(group); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected collapsed group to be gone, got %v", err)
	}
	if tr.Len() != 1 {
		t.Errorf("expected 1 node, got %d", tr.Len())
	}
}

func TestRemoveCascadesNestedGroups(t *testing.T) {
	tr := NewTree()
	first, _ := tr.SetRootWindow(1)
	second, _ := tr.Split(first, Vertical, 2)
	third, err := tr.Split(second, Horizontal, 3)
	if err != nil {
		t.Fatalf("nested Split failed: %v", err)
	}
	outer := tr.Root()

	// Dropping the second window collapses the inner group; the third
	// window is promoted into the outer group's slot.
	if err := tr.Remove(second); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	children, err := tr.ChildrenIDs(outer)
	if err != nil {
		t.Fatalf("ChildrenIDs failed: %v", err)
	}
	if len(children) != 2 || children[0] != first || children[1] != third {
		t.Errorf("expected promoted children [%d %d], got %v", first, third, children)
	}
	promoted, err := tr.Get(third)
	if err != nil {
		t.Fatalf("promoted lookup failed: %v", err)
	}
	if promoted.Parent() != outer {
		t.Errorf("expected promoted parent %d, got %d", outer, promoted.Parent())
	}
}

func TestRemoveRootClearsTree(t *testing.T) {
	tr := NewTree()
	first, _ := tr.SetRootWindow(1)
	tr.Split(first, Vertical, 2)
	if err := tr.Remove(tr.Root()); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if tr.Root() != NoNode || tr.Len() != 0 {
		t.Errorf("expected empty tree, got root=%d len=%d", tr.Root(), tr.Len())
	}
}

func TestAttachWindowInsertsAtIndex(t *testing.T) {
	tr, group := pairTree(t, Vertical, 500, 500)
	children, _ := tr.ChildrenIDs(group)

	mid, err := tr.AttachWindow(group, 1, 7, 320)
	if err != nil {
		t.Fatalf("AttachWindow failed: %v", err)
	}
	got, _ := tr.ChildrenIDs(group)
	want := []NodeID{children[0], mid, children[1]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected children %v, got %v", want, got)
		}
	}
	sizes := tr.nodes[group].sizes
	if sizes[0] != 500 || sizes[1] != 320 || sizes[2] != 500 {
		t.Errorf("expected sizes [500 320 500], got %v", sizes)
	}

	if _, err := tr.AttachWindow(group, 5, 8, 100); err == nil {
		t.Errorf("expected out-of-range attach to fail")
	}
	win, _ := tr.ChildrenIDs(group)
	if _, err := tr.AttachWindow(win[0], 0, 9, 100); !errors.Is(err, ErrNotAGroup) {
		t.Errorf("expected ErrNotAGroup, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tr, group := pairTree(t, Vertical, 500, 500)
	cp := tr.Clone()

	if _, err := tr.ResizeBoundary(group, 0, 100, Vertical.PaneMin()); err != nil {
		t.Fatalf("ResizeBoundary failed: %v", err)
	}
	orig := tr.nodes[group].sizes
	cloned := cp.nodes[group].sizes
	if orig[0] != 600 || cloned[0] != 500 {
		t.Errorf("expected clone isolation, original %v clone %v", orig, cloned)
	}
	if cp.Root() != tr.Root() {
		t.Errorf("expected clone to preserve ids, got %d vs %d", cp.Root(), tr.Root())
	}
}

func TestIDsNeverReused(t *testing.T) {
	tr := NewTree()
	first, _ := tr.SetRootWindow(1)
	second, _ := tr.Split(first, Vertical, 2)
	if err := tr.Remove(second); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	replacement, err := tr.Split(first, Vertical, 3)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if replacement == second {
		t.Errorf("node id %d was reused", second)
	}
}

func TestQueueBackIsWorkingTree(t *testing.T) {
	q := NewQueue()
	first, err := q.Back().SetRootWindow(1)
	if err != nil {
		t.Fatalf("SetRootWindow failed: %v", err)
	}

	snapshotted := q.Back()
	working := q.PushClone()
	if working == snapshotted {
		t.Fatalf("expected PushClone to return a fresh tree")
	}
	if q.Back() != working {
		t.Errorf("expected Back to return the pushed clone")
	}
	if _, err := working.Get(first); err != nil {
		t.Errorf("expected clone to keep node %d: %v", first, err)
	}

	for i := 0; i < 2*maxQueueDepth; i++ {
		q.PushClone()
	}
	if q.Depth() != maxQueueDepth {
		t.Errorf("expected depth capped at %d, got %d", maxQueueDepth, q.Depth())
	}
}
