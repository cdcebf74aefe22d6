package input

import (
	"sort"

	"github.com/1broseidon/waytile/internal/geometry"
)

// PointerTarget receives pointer events for the object under the cursor.
// Implementations are cheap, regenerated-on-demand handles; SameAs lets the
// pointer tell whether two handles name the same underlying object so that
// enter/leave pairs fire only on real focus changes.
type PointerTarget interface {
	SameAs(other PointerTarget) bool
	Alive() bool
	Enter(seat *Seat, ev MotionEvent)
	Leave(seat *Seat, serial uint32, time uint32)
	Motion(seat *Seat, ev MotionEvent)
	RelativeMotion(seat *Seat, ev RelativeMotionEvent)
	Button(seat *Seat, ev ButtonEvent)
	Axis(seat *Seat, frame AxisFrame)
}

// GrabStartData records the pointer state captured when a grab was armed.
type GrabStartData struct {
	// Focus is the target that keeps receiving events during the grab,
	// or nil when the grab owns input exclusively.
	Focus    PointerTarget
	Button   uint32
	Location geometry.Point
}

// PointerGrab owns the pointer's input stream exclusively until unset. Grab
// methods receive the pointer as a handle to forward events and to unset
// themselves.
type PointerGrab interface {
	Start() GrabStartData
	Motion(p *Pointer, ev MotionEvent)
	RelativeMotion(p *Pointer, ev RelativeMotionEvent)
	Button(p *Pointer, ev ButtonEvent)
	Axis(p *Pointer, frame AxisFrame)
}

// Pointer tracks location, focus, held buttons and the active grab for one
// seat. It is owned by the event loop goroutine and is not safe for
// concurrent use.
type Pointer struct {
	seat     *Seat
	location geometry.Point
	focus    PointerTarget
	pressed  map[uint32]struct{}
	grab     PointerGrab
}

func newPointer(seat *Seat) *Pointer {
	return &Pointer{seat: seat, pressed: make(map[uint32]struct{})}
}

// Location returns the pointer's current position in global coordinates.
func (p *Pointer) Location() geometry.Point {
	return p.location
}

// Focus returns the current focus target, nil when nothing is under the
// pointer or a grab holds input.
func (p *Pointer) Focus() PointerTarget {
	return p.focus
}

// ActiveGrab returns the installed grab, or nil.
func (p *Pointer) ActiveGrab() PointerGrab {
	return p.grab
}

// CurrentPressed returns the codes of all held buttons in ascending order.
func (p *Pointer) CurrentPressed() []uint32 {
	if len(p.pressed) == 0 {
		return nil
	}
	codes := make([]uint32, 0, len(p.pressed))
	for code := range p.pressed {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// SetGrab installs a grab, clearing the current focus first so no target is
// left believing it still has the pointer.
func (p *Pointer) SetGrab(grab PointerGrab, serial uint32, time uint32) {
	if p.focus != nil {
		p.focus.Leave(p.seat, serial, time)
		p.focus = nil
	}
	p.grab = grab
}

// UnsetGrab removes the active grab. Calling it with no grab installed is a
// no-op, so a grab that terminates itself cannot double-release.
func (p *Pointer) UnsetGrab(serial uint32, time uint32) {
	if p.grab == nil {
		return
	}
	p.grab = nil
}

// Motion dispatches an absolute motion event. under is the target the caller
// hit-tested at the event location; a grab, when installed, decides focus
// itself and under is ignored.
func (p *Pointer) Motion(under PointerTarget, ev MotionEvent) {
	if p.grab != nil {
		p.grab.Motion(p, ev)
		return
	}
	p.InnerMotion(under, ev)
}

// RelativeMotion dispatches a relative motion event.
func (p *Pointer) RelativeMotion(under PointerTarget, ev RelativeMotionEvent) {
	if p.grab != nil {
		p.grab.RelativeMotion(p, ev)
		return
	}
	p.InnerRelativeMotion(under, ev)
}

// Button dispatches a button event.
func (p *Pointer) Button(ev ButtonEvent) {
	if p.grab != nil {
		p.grab.Button(p, ev)
		return
	}
	p.InnerButton(ev)
}

// Axis dispatches a scroll frame.
func (p *Pointer) Axis(frame AxisFrame) {
	if p.grab != nil {
		p.grab.Axis(p, frame)
		return
	}
	p.InnerAxis(frame)
}

// InnerMotion performs default motion handling: update location, fire
// enter/leave on focus change, deliver motion to the focus. Grabs call this
// with a nil focus to forward motion while keeping clients unfocused.
func (p *Pointer) InnerMotion(focus PointerTarget, ev MotionEvent) {
	p.location = ev.Location

	if focus != nil && !focus.Alive() {
		focus = nil
	}

	if !sameTarget(p.focus, focus) {
		if p.focus != nil {
			p.focus.Leave(p.seat, ev.Serial, ev.Time)
		}
		p.focus = focus
		if p.focus != nil {
			p.focus.Enter(p.seat, ev)
		}
		return
	}

	if p.focus != nil {
		p.focus.Motion(p.seat, ev)
	}
}

// InnerRelativeMotion forwards a relative motion event to the given focus
// without changing focus bookkeeping.
func (p *Pointer) InnerRelativeMotion(focus PointerTarget, ev RelativeMotionEvent) {
	if focus != nil && focus.Alive() {
		focus.RelativeMotion(p.seat, ev)
	}
}

// InnerButton performs default button handling: maintain the pressed set and
// deliver to the current focus. Grabs forward here before deciding whether
// to release, so the pressed set stays correct under a grab.
func (p *Pointer) InnerButton(ev ButtonEvent) {
	switch ev.State {
	case ButtonPressed:
		p.pressed[ev.Button] = struct{}{}
	case ButtonReleased:
		delete(p.pressed, ev.Button)
	}
	if p.focus != nil {
		p.focus.Button(p.seat, ev)
	}
}

// InnerAxis delivers a scroll frame to the current focus.
func (p *Pointer) InnerAxis(frame AxisFrame) {
	if p.focus != nil {
		p.focus.Axis(p.seat, frame)
	}
}

func sameTarget(a, b PointerTarget) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.SameAs(b)
}
