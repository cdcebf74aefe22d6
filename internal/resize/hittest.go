package resize

import (
	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/output"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/tiling"
)

// TargetUnder returns the resize target at pos on the output's active
// workspace, or nil when pos is not inside a gap between siblings. A
// locked session has no resize targets.
func TargetUnder(sh *shell.Shell, loop *eventloop.Loop, out *output.Output, pos geometry.Point) input.PointerTarget {
	if sh.Lock().Active() {
		return nil
	}
	ws := sh.ActiveSpace(out)
	if ws == nil {
		return nil
	}
	tree := ws.Layer().Queue().Back()
	if t := forkUnder(sh, loop, tree, out, tree.Root(), pos); t != nil {
		return t
	}
	return nil
}

// forkUnder walks the tree depth first so a nested group's boundary wins
// over the enclosing group's.
func forkUnder(sh *shell.Shell, loop *eventloop.Loop, tree *tiling.Tree, out *output.Output, id tiling.NodeID, pos geometry.Point) *ForkTarget {
	n, err := tree.Get(id)
	if err != nil || !n.IsGroup() {
		return nil
	}
	children, err := tree.ChildrenIDs(id)
	if err != nil {
		return nil
	}

	for _, child := range children {
		if t := forkUnder(sh, loop, tree, out, child, pos); t != nil {
			return t
		}
	}

	for i := 0; i+1 < len(children); i++ {
		left, lerr := tree.Get(children[i])
		right, rerr := tree.Get(children[i+1])
		if lerr != nil || rerr != nil {
			continue
		}
		var band geometry.Rect
		switch n.Orientation() {
		case tiling.Vertical:
			band = geometry.Rect{
				X:      left.Rect().Right(),
				Y:      n.Rect().Y,
				Width:  right.Rect().X - left.Rect().Right(),
				Height: n.Rect().Height,
			}
		case tiling.Horizontal:
			band = geometry.Rect{
				X:      n.Rect().X,
				Y:      left.Rect().Bottom(),
				Width:  n.Rect().Width,
				Height: right.Rect().Y - left.Rect().Bottom(),
			}
		}
		if band.Contains(pos) {
			return &ForkTarget{
				sh:          sh,
				loop:        loop,
				node:        id,
				output:      out.Downgrade(),
				leftUpIdx:   i,
				orientation: n.Orientation(),
			}
		}
	}
	return nil
}
