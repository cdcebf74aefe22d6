package tiling

import (
	"time"

	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/output"
)

// Gaps configures the padding around and between tiled windows, in logical
// pixels.
type Gaps struct {
	// Outer is the padding between the output edge and the tiling area.
	Outer int
	// Inner is the padding between adjacent panes.
	Inner int
}

// UpdatePositions re-solves the tree's geometry against the output and
// returns a blocker for every window whose rect changed. Stored pane sizes
// are renormalized to the solved pixel extents, so later resizes operate on
// real pixels even after the output geometry changed underneath them.
func UpdatePositions(out *output.Output, tree *Tree, gaps Gaps, timeout time.Duration) []*Blocker {
	if tree.Root() == NoNode {
		return nil
	}
	area := out.Geometry().Shrink(gaps.Outer)
	var blockers []*Blocker
	solveNode(tree, tree.Root(), area, gaps, timeout, &blockers)
	return blockers
}

func solveNode(t *Tree, id NodeID, rect geometry.Rect, gaps Gaps, timeout time.Duration, blockers *[]*Blocker) {
	n := t.nodes[id]
	if n.kind == KindWindow {
		if n.rect != rect {
			n.rect = rect
			*blockers = append(*blockers, NewBlocker(n.surface, timeout))
		}
		return
	}

	n.rect = rect
	extent := rect.Width
	if n.orientation == Horizontal {
		extent = rect.Height
	}
	available := extent - gaps.Inner*(len(n.children)-1)
	if available < 0 {
		available = 0
	}

	total := 0
	for _, s := range n.sizes {
		total += s
	}

	// Proportional shares rounded down, remainder to the last child so the
	// pair sum always matches the available extent.
	spent := 0
	for i, childID := range n.children {
		share := available / len(n.children)
		if total > 0 {
			share = available * n.sizes[i] / total
		}
		if i == len(n.children)-1 {
			share = available - spent
		}
		n.sizes[i] = share

		childRect := rect
		switch n.orientation {
		case Vertical:
			childRect.X = rect.X + spent + gaps.Inner*i
			childRect.Width = share
		case Horizontal:
			childRect.Y = rect.Y + spent + gaps.Inner*i
			childRect.Height = share
		}
		spent += share
		solveNode(t, childID, childRect, gaps, timeout, blockers)
	}
}
