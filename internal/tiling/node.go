package tiling

import (
	"fmt"

	"github.com/1broseidon/waytile/internal/geometry"
)

// Orientation is the axis a group splits along. Horizontal groups stack
// children top/bottom (sizes are heights, resized by vertical pointer
// motion); Vertical groups sit side by side (sizes are widths, resized by
// horizontal motion).
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// Minimum extents in logical pixels. A pane never shrinks below its
// orientation's pane minimum, and a sibling pair whose combined extent is
// already at or below the pair minimum refuses to resize at all.
const (
	MinPaneWidth  = 360
	MinPaneHeight = 240
	MinPairWidth  = 720
	MinPairHeight = 480
)

// PaneMin returns the smallest extent a single pane may have along this
// orientation's resize axis.
func (o Orientation) PaneMin() int {
	if o == Vertical {
		return MinPaneWidth
	}
	return MinPaneHeight
}

// PairMin returns the combined extent at or below which two adjacent panes
// can no longer be resized against each other.
func (o Orientation) PairMin() int {
	if o == Vertical {
		return MinPairWidth
	}
	return MinPairHeight
}

// SurfaceID is the opaque handle of a managed client surface. The engine
// never looks inside it; it only reports which surfaces need new geometry.
type SurfaceID uint64

// Kind discriminates the two node variants.
type Kind uint8

const (
	KindWindow Kind = iota
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindWindow:
		return "window"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is one tree node: either a Window leaf referring to a surface, or a
// Group splitting its rectangle among ordered children along one axis.
// sizes[i] is the extent allocated to the i-th child: a height for
// Horizontal groups, a width for Vertical ones. len(sizes) always equals
// len(children).
type Node struct {
	kind        Kind
	surface     SurfaceID
	orientation Orientation
	sizes       []int

	parent   NodeID
	children []NodeID

	// rect is the last solved rectangle, updated by UpdatePositions.
	rect geometry.Rect
}

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// IsGroup reports whether the node is a group.
func (n *Node) IsGroup() bool { return n.kind == KindGroup }

// Surface returns the surface handle of a window node; zero for groups.
func (n *Node) Surface() SurfaceID { return n.surface }

// Orientation returns a group's split axis; meaningless for windows.
func (n *Node) Orientation() Orientation { return n.orientation }

// Sizes returns a copy of a group's child extents.
func (n *Node) Sizes() []int {
	if len(n.sizes) == 0 {
		return nil
	}
	out := make([]int, len(n.sizes))
	copy(out, n.sizes)
	return out
}

// Rect returns the node's last solved rectangle.
func (n *Node) Rect() geometry.Rect { return n.rect }

// Parent returns the node's parent id, NoNode for the root.
func (n *Node) Parent() NodeID { return n.parent }

func (n *Node) String() string {
	if n.kind == KindWindow {
		return fmt.Sprintf("window(%d)", n.surface)
	}
	return fmt.Sprintf("group(%s, %v)", n.orientation, n.sizes)
}
