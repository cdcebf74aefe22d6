// Package x11 is the nested development backend: one X window per
// configured output, translating host pointer and key events into engine
// input. It owns no layout state; everything it learns is posted onto the
// compositor loop.
package x11

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/waytile/internal/bindings"
	"github.com/1broseidon/waytile/internal/config"
	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/resize"
	"github.com/1broseidon/waytile/internal/shell"
)

const backgroundPixel = 0x202020

// Backend hosts the engine's outputs as X windows.
type Backend struct {
	xu     *xgbutil.XUtil
	loop   *eventloop.Loop
	sh     *shell.Shell
	table  *bindings.Table
	logger *slog.Logger

	windows map[xproto.Window]string
	cursors map[input.CursorShape]xproto.Cursor

	mu         sync.Mutex
	shapes     map[xproto.Window]input.CursorShape
	nextSerial uint32
}

// New connects to the host X server.
func New(loop *eventloop.Loop, sh *shell.Shell, table *bindings.Table, logger *slog.Logger) (*Backend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host X server: %w", err)
	}
	keybind.Initialize(xu)

	b := &Backend{
		xu:      xu,
		loop:    loop,
		sh:      sh,
		table:   table,
		logger:  logger,
		windows: make(map[xproto.Window]string),
		cursors: make(map[input.CursorShape]xproto.Cursor),
		shapes:  make(map[xproto.Window]input.CursorShape),
	}
	if err := b.loadCursors(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) loadCursors() error {
	for shape, font := range map[input.CursorShape]uint16{
		input.CursorDefault:   xcursor.LeftPtr,
		input.CursorRowResize: xcursor.SBVDoubleArrow,
		input.CursorColResize: xcursor.SBHDoubleArrow,
	} {
		cursor, err := xcursor.CreateCursor(b.xu, font)
		if err != nil {
			return fmt.Errorf("failed to create cursor for %s: %w", shape, err)
		}
		b.cursors[shape] = cursor
	}
	return nil
}

// CreateOutputs opens one host window per configured output and wires its
// events. Must be called before Run.
func (b *Backend) CreateOutputs(outputs []config.OutputConfig) error {
	for _, oc := range outputs {
		if err := b.createOutputWindow(oc); err != nil {
			return err
		}
	}
	if err := b.registerBindings(); err != nil {
		return err
	}
	return nil
}

func (b *Backend) createOutputWindow(oc config.OutputConfig) error {
	win, err := xwindow.Generate(b.xu)
	if err != nil {
		return fmt.Errorf("failed to allocate window for output %q: %w", oc.Name, err)
	}
	err = win.CreateChecked(b.xu.RootWin(), oc.X, oc.Y, oc.Width, oc.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		backgroundPixel,
		xproto.EventMaskPointerMotion|xproto.EventMaskButtonPress|
			xproto.EventMaskButtonRelease|xproto.EventMaskKeyPress|
			xproto.EventMaskLeaveWindow)
	if err != nil {
		return fmt.Errorf("failed to create window for output %q: %w", oc.Name, err)
	}

	ewmh.WmNameSet(b.xu, win.Id, fmt.Sprintf("waytile - %s", oc.Name))
	win.Map()

	b.windows[win.Id] = oc.Name
	b.connectPointer(win.Id)
	b.logger.Info("output window created", "output", oc.Name, "window", win.Id,
		"geometry", fmt.Sprintf("%dx%d+%d+%d", oc.Width, oc.Height, oc.X, oc.Y))
	return nil
}

func (b *Backend) connectPointer(win xproto.Window) {
	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		ev = compressMotion(xu, ev)
		b.postMotion(win, int(ev.EventX), int(ev.EventY), uint32(ev.Time))
	}).Connect(b.xu, win)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		b.postButton(win, ev.Detail, input.ButtonPressed, uint32(ev.Time))
	}).Connect(b.xu, win)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		b.postButton(win, ev.Detail, input.ButtonReleased, uint32(ev.Time))
	}).Connect(b.xu, win)
}

// registerBindings grabs every bound combo on every output window. Actions
// themselves post onto the compositor loop, so dispatching from the X event
// goroutine is safe.
func (b *Backend) registerBindings() error {
	if b.table == nil {
		return nil
	}
	for _, bound := range b.table.Bound() {
		action := bound.Action
		combo := bound.Combo.String()
		for win := range b.windows {
			err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
				b.table.Dispatch(action)
			}).Connect(b.xu, win, combo, true)
			if err != nil {
				return fmt.Errorf("failed to grab %q for action %q: %w", combo, action, err)
			}
		}
	}
	return nil
}

func (b *Backend) serial() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextSerial++
	return b.nextSerial
}

// postMotion translates a window-local motion into a global-coordinate
// engine event and dispatches it on the compositor loop.
func (b *Backend) postMotion(win xproto.Window, x, y int, time uint32) {
	name, ok := b.windows[win]
	if !ok {
		return
	}
	serial := b.serial()
	b.loop.Post(func() {
		out, ok := b.sh.Outputs().Get(name)
		if !ok {
			return
		}
		geom := out.Geometry()
		pos := geometry.Point{X: float64(geom.X + x), Y: float64(geom.Y + y)}
		ev := input.MotionEvent{Location: pos, Serial: serial, Time: time}

		ptr := b.sh.Seat().Pointer()
		var under input.PointerTarget
		if ptr.ActiveGrab() == nil {
			under = resize.TargetUnder(b.sh, b.loop, out, pos)
		}
		ptr.Motion(under, ev)
		b.applyCursor(win)
	})
}

func (b *Backend) postButton(win xproto.Window, detail xproto.Button, state input.ButtonState, time uint32) {
	if _, ok := b.windows[win]; !ok {
		return
	}
	code, ok := buttonCode(detail)
	if !ok {
		return
	}
	serial := b.serial()
	b.loop.Post(func() {
		b.sh.Seat().Pointer().Button(input.ButtonEvent{
			Button: code,
			State:  state,
			Serial: serial,
			Time:   time,
		})
		b.applyCursor(win)
	})
}

// applyCursor pushes the seat's requested cursor shape to the host window
// when it changed.
func (b *Backend) applyCursor(win xproto.Window) {
	shape := b.sh.Seat().Cursor().Shape()

	b.mu.Lock()
	if b.shapes[win] == shape {
		b.mu.Unlock()
		return
	}
	b.shapes[win] = shape
	b.mu.Unlock()

	cursor, ok := b.cursors[shape]
	if !ok {
		return
	}
	xproto.ChangeWindowAttributes(b.xu.Conn(), win, xproto.CwCursor, []uint32{uint32(cursor)})
}

// Run blocks on the host X event loop.
func (b *Backend) Run() {
	b.logger.Info("x11 backend event loop started", "outputs", len(b.windows))
	xevent.Main(b.xu)
}

// Stop terminates the event loop and disconnects.
func (b *Backend) Stop() {
	xevent.Quit(b.xu)
	b.xu.Conn().Close()
}

// buttonCode maps an X core button to the Linux input code the engine
// speaks.
func buttonCode(detail xproto.Button) (uint32, bool) {
	switch detail {
	case 1:
		return input.BtnLeft, true
	case 2:
		return input.BtnMiddle, true
	case 3:
		return input.BtnRight, true
	default:
		return 0, false
	}
}

// compressMotion drains queued motion events for the same window so a fast
// pointer does not flood the compositor loop with stale positions.
func compressMotion(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) xevent.MotionNotifyEvent {
	xu.Sync()
	xevent.Read(xu, false)

	laste := ev
	for i, ee := range xevent.Peek(xu) {
		if ee.Err != nil {
			continue
		}
		if mn, ok := ee.Event.(xproto.MotionNotifyEvent); ok && ev.Event == mn.Event {
			laste = xevent.MotionNotifyEvent{MotionNotifyEvent: &mn}
			defer func(i int) { xevent.DequeueAt(xu, i) }(i)
		}
	}
	return laste
}
