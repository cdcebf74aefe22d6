package mcp

// GetTreeInput is the input for the get_tree tool.
type GetTreeInput struct {
	Output string `json:"output,omitempty" jsonschema:"Output name (default: first output)"`
}

// GetTreeOutput is the output for the get_tree tool.
type GetTreeOutput struct {
	Output    string `json:"output"`
	Workspace string `json:"workspace"`
	Tree      string `json:"tree"`
}

// GetOutputsOutput is the output for the get_outputs tool.
type GetOutputsOutput struct {
	Outputs []OutputSummary `json:"outputs"`
}

// OutputSummary describes one mapped output.
type OutputSummary struct {
	Name            string `json:"name"`
	Geometry        string `json:"geometry"`
	ActiveWorkspace string `json:"active_workspace"`
}

// GetWorkspacesOutput is the output for the get_workspaces tool.
type GetWorkspacesOutput struct {
	Workspaces []WorkspaceSummary `json:"workspaces"`
}

// WorkspaceSummary describes one workspace on an output.
type WorkspaceSummary struct {
	Output  string `json:"output"`
	Handle  string `json:"handle"`
	Active  bool   `json:"active"`
	Windows int    `json:"windows"`
}

// SwitchWorkspaceInput is the input for the switch_workspace tool.
type SwitchWorkspaceInput struct {
	Output string `json:"output,omitempty" jsonschema:"Output name (default: first output)"`
	Index  int    `json:"index" jsonschema:"required,Zero-based workspace index to activate"`
}

// SwitchWorkspaceOutput is the output for the switch_workspace tool.
type SwitchWorkspaceOutput struct {
	Output string `json:"output"`
	Index  int    `json:"index"`
}

// ResizeInput is the input for the resize tool.
type ResizeInput struct {
	Output   string `json:"output,omitempty" jsonschema:"Output name (default: first output)"`
	Node     uint64 `json:"node" jsonschema:"required,Group node id from get_tree"`
	Boundary int    `json:"boundary" jsonschema:"Child index left of (or above) the boundary to move (default: 0)"`
	Delta    int    `json:"delta" jsonschema:"required,Pixels to move the boundary; positive grows the left/upper pane"`
}

// ResizeOutput is the output for the resize tool.
type ResizeOutput struct {
	Applied bool  `json:"applied"`
	Sizes   []int `json:"sizes"`
}

// MapWindowInput is the input for the map_window tool.
type MapWindowInput struct {
	Output  string `json:"output,omitempty" jsonschema:"Output name (default: first output)"`
	Surface uint64 `json:"surface" jsonschema:"required,Surface id for the new window, unique per output"`
}

// MapWindowOutput is the output for the map_window tool.
type MapWindowOutput struct {
	Node uint64 `json:"node"`
}

// UnmapWindowInput is the input for the unmap_window tool.
type UnmapWindowInput struct {
	Output  string `json:"output,omitempty" jsonschema:"Output name (default: first output)"`
	Surface uint64 `json:"surface" jsonschema:"required,Surface id of the window to remove"`
}

// UnmapWindowOutput is the output for the unmap_window tool.
type UnmapWindowOutput struct {
	Removed bool `json:"removed"`
}

// LockOutput is the output for the lock and unlock tools.
type LockOutput struct {
	Locked bool `json:"locked"`
}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	Outputs       int   `json:"outputs"`
	Locked        bool  `json:"locked"`
}
