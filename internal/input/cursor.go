package input

import "sync"

// CursorShape names the cursor images the engine can request. Rendering the
// image is the backend's job; this is only the shared shape state.
type CursorShape uint8

const (
	CursorDefault CursorShape = iota
	CursorRowResize
	CursorColResize
)

func (c CursorShape) String() string {
	switch c {
	case CursorDefault:
		return "default"
	case CursorRowResize:
		return "row-resize"
	case CursorColResize:
		return "col-resize"
	default:
		return "unknown"
	}
}

// CursorState is the per-seat cursor shape side channel. Focus targets write
// it on enter/leave; the backend reads it when drawing the cursor.
type CursorState struct {
	mu    sync.Mutex
	shape CursorShape
}

// SetShape records the requested cursor shape.
func (c *CursorState) SetShape(shape CursorShape) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shape = shape
}

// Shape returns the currently requested cursor shape.
func (c *CursorState) Shape() CursorShape {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shape
}
