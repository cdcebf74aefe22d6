package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing            CommandType = "PING"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandGetOutputs      CommandType = "GET_OUTPUTS"
	CommandGetWorkspaces   CommandType = "GET_WORKSPACES"
	CommandGetTree         CommandType = "GET_TREE"
	CommandSwitchWorkspace CommandType = "SWITCH_WORKSPACE"
	CommandResize          CommandType = "RESIZE"
	CommandMapWindow       CommandType = "MAP_WINDOW"
	CommandUnmapWindow     CommandType = "UNMAP_WINDOW"
	CommandLock            CommandType = "LOCK"
	CommandUnlock          CommandType = "UNLOCK"
	CommandShutdown        CommandType = "SHUTDOWN"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	Outputs       int   `json:"outputs"`
	Locked        bool  `json:"locked"`
	DaemonRunning bool  `json:"daemon_running"`
}

// OutputInfo represents one mapped output
type OutputInfo struct {
	Name            string  `json:"name"`
	X               int     `json:"x"`
	Y               int     `json:"y"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Scale           float64 `json:"scale"`
	ActiveWorkspace string  `json:"active_workspace"`
}

// OutputsData represents the data returned by GET_OUTPUTS
type OutputsData struct {
	Outputs []OutputInfo `json:"outputs"`
}

// WorkspaceInfo represents one workspace on an output
type WorkspaceInfo struct {
	Handle  string `json:"handle"`
	Active  bool   `json:"active"`
	Windows int    `json:"windows"`
}

// OutputWorkspaces groups workspace info under its output
type OutputWorkspaces struct {
	Output     string          `json:"output"`
	Workspaces []WorkspaceInfo `json:"workspaces"`
}

// WorkspacesData represents the data returned by GET_WORKSPACES
type WorkspacesData struct {
	Outputs []OutputWorkspaces `json:"outputs"`
}

// TreeNodeInfo is the serialized form of one layout tree node
type TreeNodeInfo struct {
	ID          uint64         `json:"id"`
	Kind        string         `json:"kind"`
	Surface     uint64         `json:"surface,omitempty"`
	Orientation string         `json:"orientation,omitempty"`
	Sizes       []int          `json:"sizes,omitempty"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Children    []TreeNodeInfo `json:"children,omitempty"`
}

// TreePayload selects the output whose tree to fetch; empty means the
// first output by name.
type TreePayload struct {
	Output string `json:"output,omitempty"`
}

// TreeData represents the data returned by GET_TREE
type TreeData struct {
	Output    string        `json:"output"`
	Workspace string        `json:"workspace"`
	Root      *TreeNodeInfo `json:"root,omitempty"`
}

// SwitchWorkspacePayload represents the payload for SWITCH_WORKSPACE
type SwitchWorkspacePayload struct {
	Output string `json:"output,omitempty"`
	Index  int    `json:"index"`
}

// ResizePayload represents the payload for RESIZE. Node names a group in
// the output's active tree; Boundary is the child index left or above the
// boundary being moved.
type ResizePayload struct {
	Output   string `json:"output,omitempty"`
	Node     uint64 `json:"node"`
	Boundary int    `json:"boundary"`
	Delta    int    `json:"delta"`
}

// ResizeData represents the data returned by RESIZE
type ResizeData struct {
	Applied bool  `json:"applied"`
	Sizes   []int `json:"sizes"`
}

// WindowPayload represents the payload for MAP_WINDOW and UNMAP_WINDOW.
// Surface is the caller-chosen surface id; it must be unique per output for
// mapping and name an existing window for unmapping.
type WindowPayload struct {
	Output  string `json:"output,omitempty"`
	Surface uint64 `json:"surface"`
}

// MapWindowData represents the data returned by MAP_WINDOW
type MapWindowData struct {
	Node uint64 `json:"node"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
