package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/output"
	"github.com/1broseidon/waytile/internal/runtimepath"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/tiling"
)

// loopTimeout bounds how long a request may wait for the compositor loop.
const loopTimeout = 5 * time.Second

// Server handles IPC requests from clients. Shell state is only touched
// from closures posted to the compositor loop; connection goroutines block
// on the reply.
type Server struct {
	socketPath   string
	listener     net.Listener
	loop         *eventloop.Loop
	sh           *shell.Shell
	logger       *slog.Logger
	startTime    time.Time
	onShutdown   func()
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. An empty socketPath uses the runtime
// directory default. onShutdown is invoked after a SHUTDOWN command has
// been acknowledged.
func NewServer(loop *eventloop.Loop, sh *shell.Shell, logger *slog.Logger, socketPath string, onShutdown func()) (*Server, error) {
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		loop:       loop,
		sh:         sh,
		logger:     logger,
		startTime:  time.Now(),
		onShutdown: onShutdown,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc server listening", "socket", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Error("ipc accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Error("ipc read error", "error", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("ipc marshal error", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Error("ipc write error", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandPing:
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandGetStatus:
		return s.onLoop(s.handleGetStatus)
	case CommandGetOutputs:
		return s.onLoop(s.handleGetOutputs)
	case CommandGetWorkspaces:
		return s.onLoop(s.handleGetWorkspaces)
	case CommandGetTree:
		return s.onLoop(func() *Response { return s.handleGetTree(req.Payload) })
	case CommandSwitchWorkspace:
		return s.onLoop(func() *Response { return s.handleSwitchWorkspace(req.Payload) })
	case CommandResize:
		return s.onLoop(func() *Response { return s.handleResize(req.Payload) })
	case CommandMapWindow:
		return s.onLoop(func() *Response { return s.handleMapWindow(req.Payload) })
	case CommandUnmapWindow:
		return s.onLoop(func() *Response { return s.handleUnmapWindow(req.Payload) })
	case CommandLock:
		return s.onLoop(s.handleLock)
	case CommandUnlock:
		return s.onLoop(s.handleUnlock)
	case CommandShutdown:
		return s.handleShutdown()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// onLoop runs fn on the compositor loop and waits for its response.
func (s *Server) onLoop(fn func() *Response) *Response {
	done := make(chan *Response, 1)
	s.loop.Post(func() {
		done <- fn()
	})
	select {
	case resp := <-done:
		return resp
	case <-time.After(loopTimeout):
		return NewErrorResponse("compositor loop did not respond")
	}
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Outputs:       len(s.sh.Outputs().List()),
		Locked:        s.sh.Lock().Active(),
		DaemonRunning: true,
	}
	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetOutputs() *Response {
	outs := s.sh.Outputs().List()
	infos := make([]OutputInfo, len(outs))
	for i, out := range outs {
		geom := out.Geometry()
		active := ""
		if ws := s.sh.ActiveSpace(out); ws != nil {
			active = ws.Handle()
		}
		infos[i] = OutputInfo{
			Name:            out.Name(),
			X:               geom.X,
			Y:               geom.Y,
			Width:           geom.Width,
			Height:          geom.Height,
			Scale:           out.Scale(),
			ActiveWorkspace: active,
		}
	}

	resp, _ := NewOKResponse(OutputsData{Outputs: infos})
	return resp
}

func (s *Server) handleGetWorkspaces() *Response {
	var data WorkspacesData
	for _, out := range s.sh.Outputs().List() {
		group := OutputWorkspaces{Output: out.Name()}
		activeIdx := s.sh.ActiveIndex(out)
		for i, ws := range s.sh.Workspaces(out) {
			windows := 0
			ws.Layer().Queue().Back().Walk(func(_ tiling.NodeID, n *tiling.Node) {
				if n.Kind() == tiling.KindWindow {
					windows++
				}
			})
			group.Workspaces = append(group.Workspaces, WorkspaceInfo{
				Handle:  ws.Handle(),
				Active:  i == activeIdx,
				Windows: windows,
			})
		}
		data.Outputs = append(data.Outputs, group)
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleGetTree(payload json.RawMessage) *Response {
	var treeReq TreePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &treeReq); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid tree payload: %v", err))
		}
	}

	out, resp := s.resolveOutput(treeReq.Output)
	if resp != nil {
		return resp
	}
	ws := s.sh.ActiveSpace(out)
	if ws == nil {
		return NewErrorResponse(fmt.Sprintf("Output %s has no active workspace", out.Name()))
	}

	tree := ws.Layer().Queue().Back()
	data := TreeData{Output: out.Name(), Workspace: ws.Handle()}
	if tree.Root() != tiling.NoNode {
		root := buildTreeInfo(tree, tree.Root())
		data.Root = &root
	}

	okResp, _ := NewOKResponse(data)
	return okResp
}

func (s *Server) handleSwitchWorkspace(payload json.RawMessage) *Response {
	var switchReq SwitchWorkspacePayload
	if err := json.Unmarshal(payload, &switchReq); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid switch payload: %v", err))
	}

	out, resp := s.resolveOutput(switchReq.Output)
	if resp != nil {
		return resp
	}
	if err := s.sh.SwitchWorkspace(out, switchReq.Index); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to switch workspace: %v", err))
	}

	s.logger.Info("workspace switched", "output", out.Name(), "index", switchReq.Index)
	okResp, _ := NewOKResponse(nil)
	return okResp
}

func (s *Server) handleResize(payload json.RawMessage) *Response {
	var resizeReq ResizePayload
	if err := json.Unmarshal(payload, &resizeReq); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid resize payload: %v", err))
	}

	out, resp := s.resolveOutput(resizeReq.Output)
	if resp != nil {
		return resp
	}

	id := tiling.NodeID(resizeReq.Node)
	applied, err := s.sh.ResizeNode(out, id, resizeReq.Boundary, resizeReq.Delta)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to resize: %v", err))
	}

	tree := s.sh.ActiveSpace(out).Layer().Queue().Back()
	node, err := tree.Get(id)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to resize: %v", err))
	}

	okResp, _ := NewOKResponse(ResizeData{Applied: applied, Sizes: node.Sizes()})
	return okResp
}

func (s *Server) handleMapWindow(payload json.RawMessage) *Response {
	var winReq WindowPayload
	if err := json.Unmarshal(payload, &winReq); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	if winReq.Surface == 0 {
		return NewErrorResponse("Surface id must be non-zero")
	}

	out, resp := s.resolveOutput(winReq.Output)
	if resp != nil {
		return resp
	}

	id, err := s.sh.MapWindow(out, tiling.SurfaceID(winReq.Surface))
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to map window: %v", err))
	}

	s.logger.Info("window mapped", "output", out.Name(), "surface", winReq.Surface, "node", id)
	okResp, _ := NewOKResponse(MapWindowData{Node: uint64(id)})
	return okResp
}

func (s *Server) handleUnmapWindow(payload json.RawMessage) *Response {
	var winReq WindowPayload
	if err := json.Unmarshal(payload, &winReq); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}

	out, resp := s.resolveOutput(winReq.Output)
	if resp != nil {
		return resp
	}

	if err := s.sh.UnmapWindow(out, tiling.SurfaceID(winReq.Surface)); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to unmap window: %v", err))
	}

	s.logger.Info("window unmapped", "output", out.Name(), "surface", winReq.Surface)
	okResp, _ := NewOKResponse(nil)
	return okResp
}

func (s *Server) handleLock() *Response {
	if err := s.sh.Lock().Lock(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to lock: %v", err))
	}
	s.logger.Info("session locked")
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleUnlock() *Response {
	s.sh.Lock().Unlock()
	s.logger.Info("session unlocked")
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleShutdown() *Response {
	s.logger.Info("shutdown requested over ipc")
	if s.onShutdown != nil {
		// Acknowledge first; the daemon tears the socket down right after.
		defer s.onShutdown()
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// resolveOutput maps a payload output name to a mapped output. An empty
// name selects the first output by name.
func (s *Server) resolveOutput(name string) (*output.Output, *Response) {
	if name == "" {
		outs := s.sh.Outputs().List()
		if len(outs) == 0 {
			return nil, NewErrorResponse("No outputs mapped")
		}
		return outs[0], nil
	}
	out, ok := s.sh.Outputs().Get(name)
	if !ok {
		return nil, NewErrorResponse(fmt.Sprintf("Unknown output: %s", name))
	}
	return out, nil
}

func buildTreeInfo(tree *tiling.Tree, id tiling.NodeID) TreeNodeInfo {
	n, err := tree.Get(id)
	if err != nil {
		return TreeNodeInfo{ID: uint64(id)}
	}
	rect := n.Rect()
	info := TreeNodeInfo{
		ID:     uint64(id),
		Kind:   n.Kind().String(),
		X:      rect.X,
		Y:      rect.Y,
		Width:  rect.Width,
		Height: rect.Height,
	}
	if n.IsGroup() {
		info.Orientation = n.Orientation().String()
		info.Sizes = n.Sizes()
		children, _ := tree.ChildrenIDs(id)
		for _, child := range children {
			info.Children = append(info.Children, buildTreeInfo(tree, child))
		}
	} else {
		info.Surface = uint64(n.Surface())
	}
	return info
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
