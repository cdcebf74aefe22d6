// Package mcp exposes the running compositor to MCP clients for debugging:
// tree inspection, workspace switching, and programmatic resizes, all
// proxied over the daemon's IPC socket.
package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/waytile/internal/ipc"
)

const (
	ServerName    = "waytile"
	ServerVersion = "0.1.0"
)

// Server is the MCP server bridging stdio to the daemon IPC socket.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates an MCP server talking to the daemon at socketPath. An
// empty path uses the runtime-dir default.
func NewServer(socketPath string) *Server {
	var client *ipc.Client
	if socketPath == "" {
		client = ipc.NewClient()
	} else {
		client = ipc.NewClientWithSocket(socketPath)
	}

	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get daemon status: uptime, output count, and session lock state.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_outputs",
		Description: "List the mapped outputs with their geometry and active workspace.",
	}, s.handleGetOutputs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_workspaces",
		Description: "List every workspace per output with its window count.",
	}, s.handleGetWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_tree",
		Description: "Render an output's active layout tree, including group node ids usable with the resize tool.",
	}, s.handleGetTree)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_workspace",
		Description: "Activate a workspace by index on an output.",
	}, s.handleSwitchWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize",
		Description: "Move a pane boundary inside a group node by a pixel delta. Uses the same clamped redistribution as interactive drags, so pane minimums apply.",
	}, s.handleResize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "map_window",
		Description: "Tile a new window by surface id on an output's active workspace.",
	}, s.handleMapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unmap_window",
		Description: "Remove a window by surface id; its siblings absorb the space.",
	}, s.handleUnmapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "lock",
		Description: "Lock the session. Resize targets are suppressed while locked.",
	}, s.handleLock)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unlock",
		Description: "Unlock the session.",
	}, s.handleUnlock)
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		UptimeSeconds: status.UptimeSeconds,
		Outputs:       status.Outputs,
		Locked:        status.Locked,
	}, nil
}

func (s *Server) handleGetOutputs(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, GetOutputsOutput, error) {
	outputs, err := s.client.GetOutputs()
	if err != nil {
		return nil, GetOutputsOutput{}, err
	}
	out := GetOutputsOutput{}
	for _, o := range outputs.Outputs {
		out.Outputs = append(out.Outputs, OutputSummary{
			Name:            o.Name,
			Geometry:        fmt.Sprintf("%dx%d+%d+%d", o.Width, o.Height, o.X, o.Y),
			ActiveWorkspace: o.ActiveWorkspace,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, GetWorkspacesOutput, error) {
	workspaces, err := s.client.GetWorkspaces()
	if err != nil {
		return nil, GetWorkspacesOutput{}, err
	}
	out := GetWorkspacesOutput{}
	for _, group := range workspaces.Outputs {
		for _, ws := range group.Workspaces {
			out.Workspaces = append(out.Workspaces, WorkspaceSummary{
				Output:  group.Output,
				Handle:  ws.Handle,
				Active:  ws.Active,
				Windows: ws.Windows,
			})
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetTree(_ context.Context, _ *mcpsdk.CallToolRequest, args GetTreeInput) (*mcpsdk.CallToolResult, GetTreeOutput, error) {
	tree, err := s.client.GetTree(args.Output)
	if err != nil {
		return nil, GetTreeOutput{}, err
	}
	return nil, GetTreeOutput{
		Output:    tree.Output,
		Workspace: tree.Workspace,
		Tree:      RenderTree(tree.Root),
	}, nil
}

func (s *Server) handleSwitchWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchWorkspaceInput) (*mcpsdk.CallToolResult, SwitchWorkspaceOutput, error) {
	if err := s.client.SwitchWorkspace(args.Output, args.Index); err != nil {
		return nil, SwitchWorkspaceOutput{}, err
	}
	return nil, SwitchWorkspaceOutput{Output: args.Output, Index: args.Index}, nil
}

func (s *Server) handleResize(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeInput) (*mcpsdk.CallToolResult, ResizeOutput, error) {
	result, err := s.client.Resize(args.Output, args.Node, args.Boundary, args.Delta)
	if err != nil {
		return nil, ResizeOutput{}, err
	}
	return nil, ResizeOutput{Applied: result.Applied, Sizes: result.Sizes}, nil
}

func (s *Server) handleMapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MapWindowInput) (*mcpsdk.CallToolResult, MapWindowOutput, error) {
	result, err := s.client.MapWindow(args.Output, args.Surface)
	if err != nil {
		return nil, MapWindowOutput{}, err
	}
	return nil, MapWindowOutput{Node: result.Node}, nil
}

func (s *Server) handleUnmapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args UnmapWindowInput) (*mcpsdk.CallToolResult, UnmapWindowOutput, error) {
	if err := s.client.UnmapWindow(args.Output, args.Surface); err != nil {
		return nil, UnmapWindowOutput{}, err
	}
	return nil, UnmapWindowOutput{Removed: true}, nil
}

func (s *Server) handleLock(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, LockOutput, error) {
	if err := s.client.Lock(); err != nil {
		return nil, LockOutput{}, err
	}
	return nil, LockOutput{Locked: true}, nil
}

func (s *Server) handleUnlock(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, LockOutput, error) {
	if err := s.client.Unlock(); err != nil {
		return nil, LockOutput{}, err
	}
	return nil, LockOutput{Locked: false}, nil
}

// RenderTree formats a layout tree as an indented listing. Group lines
// carry the node id and pane sizes so boundaries can be addressed by the
// resize tool.
func RenderTree(node *ipc.TreeNodeInfo) string {
	if node == nil {
		return "(empty)"
	}
	var sb strings.Builder
	renderNode(&sb, node, "")
	return sb.String()
}

func renderNode(sb *strings.Builder, node *ipc.TreeNodeInfo, indent string) {
	switch node.Kind {
	case "group":
		fmt.Fprintf(sb, "%sgroup #%d %s sizes=%v [%dx%d+%d+%d]\n",
			indent, node.ID, node.Orientation, node.Sizes,
			node.Width, node.Height, node.X, node.Y)
		for i := range node.Children {
			renderNode(sb, &node.Children[i], indent+"  ")
		}
	default:
		fmt.Fprintf(sb, "%swindow #%d surface=%d [%dx%d+%d+%d]\n",
			indent, node.ID, node.Surface,
			node.Width, node.Height, node.X, node.Y)
	}
}
