// Package shell owns the mapping from outputs to workspaces and from
// workspaces to tiling state. All methods are called from the event loop
// goroutine; cross-thread callers post closures to the loop instead of
// taking locks here.
package shell

import (
	"fmt"
	"time"

	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/output"
	"github.com/1broseidon/waytile/internal/sessionlock"
	"github.com/1broseidon/waytile/internal/tiling"
)

// DefaultWorkspaces is the workspace set created for an output when the
// configuration does not name one.
var DefaultWorkspaces = []string{"1", "2", "3", "4"}

// Workspace pairs a handle with its tiling layer.
type Workspace struct {
	handle string
	layer  *tiling.Layer
}

// Handle returns the workspace's configured name.
func (w *Workspace) Handle() string { return w.handle }

// Layer returns the workspace's tiling layer.
func (w *Workspace) Layer() *tiling.Layer { return w.layer }

// Shell is the compositor's window-management state: the output registry,
// per-output workspaces, the seat, and the session lock.
type Shell struct {
	outputs        *output.Registry
	seat           *input.Seat
	lock           *sessionlock.Manager
	gaps           tiling.Gaps
	blockerTimeout time.Duration
	handles        []string
	workspaces     map[string][]*Workspace
	active         map[string]int
}

// New creates a shell with the given seat, default gaps, and workspace
// handles. An empty handle list falls back to DefaultWorkspaces.
func New(seat *input.Seat, gaps tiling.Gaps, handles []string) *Shell {
	if len(handles) == 0 {
		handles = DefaultWorkspaces
	}
	return &Shell{
		outputs:    output.NewRegistry(),
		seat:       seat,
		lock:       sessionlock.NewManager(),
		gaps:       gaps,
		handles:    append([]string(nil), handles...),
		workspaces: make(map[string][]*Workspace),
		active:     make(map[string]int),
	}
}

// Outputs returns the output registry.
func (s *Shell) Outputs() *output.Registry { return s.outputs }

// Seat returns the shell's seat.
func (s *Shell) Seat() *input.Seat { return s.seat }

// Lock returns the session lock manager.
func (s *Shell) Lock() *sessionlock.Manager { return s.lock }

// MapOutput registers a new output and populates its workspaces.
func (s *Shell) MapOutput(name string, geom geometry.Rect) (*output.Output, error) {
	out, err := s.outputs.Add(name, geom)
	if err != nil {
		return nil, err
	}
	spaces := make([]*Workspace, len(s.handles))
	for i, handle := range s.handles {
		layer := tiling.NewLayer(s.gaps)
		if s.blockerTimeout > 0 {
			layer.SetBlockerTimeout(s.blockerTimeout)
		}
		spaces[i] = &Workspace{handle: handle, layer: layer}
	}
	s.workspaces[name] = spaces
	s.active[name] = 0
	return out, nil
}

// SetBlockerTimeout applies a new blocker deadline to every layer, current
// and future.
func (s *Shell) SetBlockerTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	s.blockerTimeout = d
	for _, spaces := range s.workspaces {
		for _, ws := range spaces {
			ws.layer.SetBlockerTimeout(d)
		}
	}
}

// SetGaps applies a new gap configuration to every layer and re-solves the
// visible workspaces.
func (s *Shell) SetGaps(gaps tiling.Gaps) {
	s.gaps = gaps
	for _, spaces := range s.workspaces {
		for _, ws := range spaces {
			ws.layer.SetGaps(gaps)
		}
	}
	s.RefreshAll()
}

// UnmapOutput retires an output. Weak references held by in-flight grabs
// stop upgrading immediately; the workspaces and their trees are dropped.
func (s *Shell) UnmapOutput(name string) error {
	if _, ok := s.outputs.Get(name); !ok {
		return fmt.Errorf("shell: output %q is not mapped", name)
	}
	s.outputs.Remove(name)
	delete(s.workspaces, name)
	delete(s.active, name)
	return nil
}

// Workspaces returns an output's workspace list in configured order.
func (s *Shell) Workspaces(out *output.Output) []*Workspace {
	if out == nil {
		return nil
	}
	return s.workspaces[out.Name()]
}

// ActiveIndex returns the index of an output's active workspace, -1 when
// the output is not mapped.
func (s *Shell) ActiveIndex(out *output.Output) int {
	if out == nil {
		return -1
	}
	idx, ok := s.active[out.Name()]
	if !ok {
		return -1
	}
	return idx
}

// ActiveSpace returns an output's active workspace, nil when the output is
// not mapped.
func (s *Shell) ActiveSpace(out *output.Output) *Workspace {
	spaces := s.Workspaces(out)
	if spaces == nil {
		return nil
	}
	return spaces[s.active[out.Name()]]
}

// SwitchWorkspace activates the workspace at idx on the output and
// re-solves its layout.
func (s *Shell) SwitchWorkspace(out *output.Output, idx int) error {
	spaces := s.Workspaces(out)
	if spaces == nil {
		return fmt.Errorf("shell: output %q is not mapped", outName(out))
	}
	if idx < 0 || idx >= len(spaces) {
		return fmt.Errorf("shell: workspace index %d out of range [0,%d)", idx, len(spaces))
	}
	s.active[out.Name()] = idx
	s.Refresh(out)
	return nil
}

// Refresh re-solves the active workspace of the output.
func (s *Shell) Refresh(out *output.Output) {
	ws := s.ActiveSpace(out)
	if ws == nil {
		return
	}
	ws.layer.Refresh(out)
}

// RefreshAll re-solves the active workspace of every mapped output.
func (s *Shell) RefreshAll() {
	for _, out := range s.outputs.List() {
		s.Refresh(out)
	}
}

// MapWindow tiles a new window into the output's active workspace. The
// first window fills the workspace; later ones split the spatially largest
// window along its longer axis.
func (s *Shell) MapWindow(out *output.Output, surface tiling.SurfaceID) (tiling.NodeID, error) {
	ws := s.ActiveSpace(out)
	if ws == nil {
		return tiling.NoNode, fmt.Errorf("shell: output %q is not mapped", outName(out))
	}
	tree := ws.layer.Queue().Back()
	if _, dup := FindSurface(tree, surface); dup {
		return tiling.NoNode, fmt.Errorf("shell: surface %d is already tiled on %q", surface, out.Name())
	}

	var id tiling.NodeID
	var err error
	if tree.Root() == tiling.NoNode {
		id, err = tree.SetRootWindow(surface)
	} else {
		targetID, target := largestWindow(tree)
		orientation := tiling.Vertical
		if target.Rect().Height > target.Rect().Width {
			orientation = tiling.Horizontal
		}
		id, err = tree.Split(targetID, orientation, surface)
	}
	if err != nil {
		return tiling.NoNode, err
	}
	s.Refresh(out)
	return id, nil
}

// UnmapWindow removes a surface's window from the output's active workspace
// and re-solves the layout.
func (s *Shell) UnmapWindow(out *output.Output, surface tiling.SurfaceID) error {
	ws := s.ActiveSpace(out)
	if ws == nil {
		return fmt.Errorf("shell: output %q is not mapped", outName(out))
	}
	tree := ws.layer.Queue().Back()
	id, ok := FindSurface(tree, surface)
	if !ok {
		return fmt.Errorf("shell: surface %d is not tiled on %q", surface, out.Name())
	}
	if err := tree.Remove(id); err != nil {
		return err
	}
	s.Refresh(out)
	return nil
}

// ResizeNode moves a boundary of the group node on the output's active
// workspace and re-solves on success. The pane floor follows the group's
// own orientation.
func (s *Shell) ResizeNode(out *output.Output, id tiling.NodeID, leftUp int, delta int) (bool, error) {
	ws := s.ActiveSpace(out)
	if ws == nil {
		return false, fmt.Errorf("shell: output %q is not mapped", outName(out))
	}
	tree := ws.layer.Queue().Back()
	node, err := tree.Get(id)
	if err != nil {
		return false, err
	}
	if !node.IsGroup() {
		return false, fmt.Errorf("%w: %d", tiling.ErrNotAGroup, id)
	}
	applied, err := tree.ResizeBoundary(id, leftUp, delta, node.Orientation().PaneMin())
	if err != nil {
		return false, err
	}
	if applied {
		s.Refresh(out)
	}
	return applied, nil
}

// SignalCommit marks blockers waiting on the surface as satisfied on every
// mapped output.
func (s *Shell) SignalCommit(surface tiling.SurfaceID) {
	for _, spaces := range s.workspaces {
		for _, ws := range spaces {
			ws.layer.SignalSurface(surface)
		}
	}
}

// FindSurface walks the tree for the window node holding surface.
func FindSurface(tree *tiling.Tree, surface tiling.SurfaceID) (tiling.NodeID, bool) {
	var found tiling.NodeID
	ok := false
	tree.Walk(func(id tiling.NodeID, n *tiling.Node) {
		if !ok && n.Kind() == tiling.KindWindow && n.Surface() == surface {
			found, ok = id, true
		}
	})
	return found, ok
}

// largestWindow returns the window node with the biggest solved area,
// falling back to the first window in tree order.
func largestWindow(tree *tiling.Tree) (tiling.NodeID, *tiling.Node) {
	var bestID tiling.NodeID
	var best *tiling.Node
	bestArea := -1
	tree.Walk(func(id tiling.NodeID, n *tiling.Node) {
		if n.Kind() != tiling.KindWindow {
			return
		}
		area := n.Rect().Width * n.Rect().Height
		if area > bestArea {
			bestID, best, bestArea = id, n, area
		}
	})
	return bestID, best
}

func outName(out *output.Output) string {
	if out == nil {
		return ""
	}
	return out.Name()
}
