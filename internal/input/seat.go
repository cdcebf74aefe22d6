package input

// Seat groups the input devices of one user: a pointer plus the cursor shape
// channel its focus targets write to.
type Seat struct {
	name    string
	pointer *Pointer
	cursor  *CursorState
}

// NewSeat creates a seat with a fresh pointer and default cursor.
func NewSeat(name string) *Seat {
	s := &Seat{name: name, cursor: &CursorState{}}
	s.pointer = newPointer(s)
	return s
}

// Name returns the seat name (typically "seat0").
func (s *Seat) Name() string {
	return s.name
}

// Pointer returns the seat's pointer.
func (s *Seat) Pointer() *Pointer {
	return s.pointer
}

// Cursor returns the seat's cursor shape state.
func (s *Seat) Cursor() *CursorState {
	return s.cursor
}
