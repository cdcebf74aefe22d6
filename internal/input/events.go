// Package input implements seat and pointer dispatch: focus tracking,
// pressed-button bookkeeping and exclusive pointer grabs. All dispatch
// happens on the event loop goroutine.
package input

import "github.com/1broseidon/waytile/internal/geometry"

// Button codes follow the Linux input event codes carried on the wire.
const (
	BtnLeft   uint32 = 0x110
	BtnRight  uint32 = 0x111
	BtnMiddle uint32 = 0x112
)

// ButtonState is the press edge carried by a button event.
type ButtonState uint8

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

func (s ButtonState) String() string {
	switch s {
	case ButtonReleased:
		return "released"
	case ButtonPressed:
		return "pressed"
	default:
		return "unknown"
	}
}

// MotionEvent is an absolute pointer position update.
type MotionEvent struct {
	Location geometry.Point
	Serial   uint32
	Time     uint32
}

// RelativeMotionEvent carries unaccelerated pointer deltas. The resize code
// never uses these for sizing; they exist so grabs can forward them.
type RelativeMotionEvent struct {
	Delta        geometry.Point
	DeltaUnaccel geometry.Point
	Time         uint64
}

// ButtonEvent is a single button press or release.
type ButtonEvent struct {
	Button uint32
	State  ButtonState
	Serial uint32
	Time   uint32
}

// AxisFrame is one scroll event with horizontal and vertical components.
type AxisFrame struct {
	Horizontal float64
	Vertical   float64
	Time       uint32
}
