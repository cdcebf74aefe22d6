package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/waytile/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client against the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client against an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.sendRequest(&Request{Command: CommandPing})
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetOutputs retrieves the mapped outputs
func (c *Client) GetOutputs() (*OutputsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetOutputs})
	if err != nil {
		return nil, err
	}

	var outputs OutputsData
	if err := json.Unmarshal(resp.Data, &outputs); err != nil {
		return nil, fmt.Errorf("failed to parse outputs data: %w", err)
	}
	return &outputs, nil
}

// GetWorkspaces retrieves per-output workspace listings
func (c *Client) GetWorkspaces() (*WorkspacesData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetWorkspaces})
	if err != nil {
		return nil, err
	}

	var workspaces WorkspacesData
	if err := json.Unmarshal(resp.Data, &workspaces); err != nil {
		return nil, fmt.Errorf("failed to parse workspaces data: %w", err)
	}
	return &workspaces, nil
}

// GetTree retrieves the active layout tree of an output. An empty output
// name selects the first output.
func (c *Client) GetTree(outputName string) (*TreeData, error) {
	payload, err := json.Marshal(TreePayload{Output: outputName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandGetTree, Payload: payload})
	if err != nil {
		return nil, err
	}

	var tree TreeData
	if err := json.Unmarshal(resp.Data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse tree data: %w", err)
	}
	return &tree, nil
}

// SwitchWorkspace activates the workspace at index on an output.
func (c *Client) SwitchWorkspace(outputName string, index int) error {
	payload, err := json.Marshal(SwitchWorkspacePayload{Output: outputName, Index: index})
	if err != nil {
		return fmt.Errorf("failed to marshal switch payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandSwitchWorkspace, Payload: payload})
	return err
}

// Resize moves a group boundary by delta pixels and returns the resulting
// pane sizes.
func (c *Client) Resize(outputName string, node uint64, boundary int, delta int) (*ResizeData, error) {
	payload, err := json.Marshal(ResizePayload{
		Output:   outputName,
		Node:     node,
		Boundary: boundary,
		Delta:    delta,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resize payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandResize, Payload: payload})
	if err != nil {
		return nil, err
	}

	var result ResizeData
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse resize data: %w", err)
	}
	return &result, nil
}

// MapWindow tiles a new window with the given surface id on an output and
// returns its node id.
func (c *Client) MapWindow(outputName string, surface uint64) (*MapWindowData, error) {
	payload, err := json.Marshal(WindowPayload{Output: outputName, Surface: surface})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal window payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandMapWindow, Payload: payload})
	if err != nil {
		return nil, err
	}

	var result MapWindowData
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse map window data: %w", err)
	}
	return &result, nil
}

// UnmapWindow removes the window with the given surface id from an output.
func (c *Client) UnmapWindow(outputName string, surface uint64) error {
	payload, err := json.Marshal(WindowPayload{Output: outputName, Surface: surface})
	if err != nil {
		return fmt.Errorf("failed to marshal window payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandUnmapWindow, Payload: payload})
	return err
}

// Lock locks the session.
func (c *Client) Lock() error {
	_, err := c.sendRequest(&Request{Command: CommandLock})
	return err
}

// Unlock unlocks the session.
func (c *Client) Unlock() error {
	_, err := c.sendRequest(&Request{Command: CommandUnlock})
	return err
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown() error {
	_, err := c.sendRequest(&Request{Command: CommandShutdown})
	return err
}
