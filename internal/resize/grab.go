// Package resize implements interactive resizing of tiled panes. A resize
// target lives in the gap between two sibling panes; pressing the left
// button on it installs a grab that drags the boundary until the last
// button is released.
package resize

import (
	"math"

	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/output"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/tiling"
)

// ForkGrab drags the boundary between two children of a tiling group. It
// holds the group by id and the output by weak reference, so a tree
// mutation or output removal during the drag ends the grab instead of
// touching stale state.
type ForkGrab struct {
	sh          *shell.Shell
	start       input.GrabStartData
	lastLoc     geometry.Point
	node        tiling.NodeID
	output      output.WeakRef
	leftUpIdx   int
	orientation tiling.Orientation
}

// NewForkGrab creates a grab for the boundary right of (or below) child
// leftUpIdx of the group node. start.Location seeds the drag origin.
func NewForkGrab(sh *shell.Shell, start input.GrabStartData, node tiling.NodeID, out output.WeakRef, leftUpIdx int, orientation tiling.Orientation) *ForkGrab {
	return &ForkGrab{
		sh:          sh,
		start:       start,
		lastLoc:     start.Location,
		node:        node,
		output:      out,
		leftUpIdx:   leftUpIdx,
		orientation: orientation,
	}
}

// Start returns the pointer state captured when the grab was armed.
func (g *ForkGrab) Start() input.GrabStartData { return g.start }

// Motion applies the pointer delta to the grabbed boundary. The drag
// origin only advances when the tree actually changed, so motion refused
// by the combined minimum accumulates instead of being lost.
func (g *ForkGrab) Motion(p *input.Pointer, ev input.MotionEvent) {
	// Clients keep seeing motion, but none of them has focus while the
	// boundary is being dragged.
	p.InnerMotion(nil, ev)

	delta := ev.Location.Sub(g.lastLoc)

	out, ok := g.output.Upgrade()
	if !ok {
		return
	}
	ws := g.sh.ActiveSpace(out)
	if ws == nil {
		return
	}
	tree := ws.Layer().Queue().Back()
	if _, err := tree.Get(g.node); err != nil {
		p.UnsetGrab(ev.Serial, ev.Time)
		return
	}

	amount := delta.Y
	if g.orientation == tiling.Vertical {
		amount = delta.X
	}
	applied, err := tree.ResizeBoundary(g.node, g.leftUpIdx, int(math.Round(amount)), g.orientation.PaneMin())
	if err != nil {
		p.UnsetGrab(ev.Serial, ev.Time)
		return
	}
	if !applied {
		return
	}

	g.lastLoc = ev.Location
	ws.Layer().Refresh(out)
}

// RelativeMotion forwards relative motion without assigning focus.
func (g *ForkGrab) RelativeMotion(p *input.Pointer, ev input.RelativeMotionEvent) {
	p.InnerRelativeMotion(nil, ev)
}

// Button forwards the event, then ends the grab once no button is held.
func (g *ForkGrab) Button(p *input.Pointer, ev input.ButtonEvent) {
	p.InnerButton(ev)
	if len(p.CurrentPressed()) == 0 {
		p.UnsetGrab(ev.Serial, ev.Time)
	}
}

// Axis forwards scroll frames unchanged.
func (g *ForkGrab) Axis(p *input.Pointer, frame input.AxisFrame) {
	p.InnerAxis(frame)
}
