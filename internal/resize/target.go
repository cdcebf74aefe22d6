package resize

import (
	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/output"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/tiling"
)

// ForkTarget is the pointer target occupying the gap between two sibling
// panes. Targets are recreated on every hit test, so identity is the
// boundary they describe, not the allocation.
type ForkTarget struct {
	sh          *shell.Shell
	loop        *eventloop.Loop
	node        tiling.NodeID
	output      output.WeakRef
	leftUpIdx   int
	orientation tiling.Orientation
}

// SameAs reports whether other describes the same boundary of the same
// group.
func (t *ForkTarget) SameAs(other input.PointerTarget) bool {
	o, ok := other.(*ForkTarget)
	return ok && o.node == t.node && o.leftUpIdx == t.leftUpIdx
}

// Alive reports whether the boundary still exists: the output is mapped
// and the group node still resolves in the working tree.
func (t *ForkTarget) Alive() bool {
	out, ok := t.output.Upgrade()
	if !ok {
		return false
	}
	ws := t.sh.ActiveSpace(out)
	if ws == nil {
		return false
	}
	_, err := ws.Layer().Queue().Back().Get(t.node)
	return err == nil
}

// Enter switches the cursor to the resize shape matching the boundary
// direction.
func (t *ForkTarget) Enter(seat *input.Seat, ev input.MotionEvent) {
	shape := input.CursorColResize
	if t.orientation == tiling.Horizontal {
		shape = input.CursorRowResize
	}
	seat.Cursor().SetShape(shape)
}

// Leave restores the default cursor.
func (t *ForkTarget) Leave(seat *input.Seat, serial uint32, time uint32) {
	seat.Cursor().SetShape(input.CursorDefault)
}

// Motion is absorbed; the gap band has no client to deliver it to.
func (t *ForkTarget) Motion(seat *input.Seat, ev input.MotionEvent) {}

// RelativeMotion is absorbed.
func (t *ForkTarget) RelativeMotion(seat *input.Seat, ev input.RelativeMotionEvent) {}

// Button arms the resize grab on a left press. The grab is installed from
// an idle callback so the press finishes dispatching first; the drag
// origin is the pointer location at install time, not at press time.
func (t *ForkTarget) Button(seat *input.Seat, ev input.ButtonEvent) {
	if ev.Button != input.BtnLeft || ev.State != input.ButtonPressed {
		return
	}
	sh, node, out := t.sh, t.node, t.output
	leftUp, orientation := t.leftUpIdx, t.orientation
	t.loop.Idle(func() {
		ptr := seat.Pointer()
		start := input.GrabStartData{
			Button:   ev.Button,
			Location: ptr.Location(),
		}
		ptr.SetGrab(NewForkGrab(sh, start, node, out, leftUp, orientation), ev.Serial, ev.Time)
	})
}

// Axis is absorbed.
func (t *ForkTarget) Axis(seat *input.Seat, frame input.AxisFrame) {}
