package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/waytile/internal/ipc"
	"github.com/1broseidon/waytile/internal/mcp"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "tree":
		os.Exit(runTree(os.Args[2:]))
	case "outputs":
		os.Exit(runOutputs(os.Args[2:]))
	case "workspaces":
		os.Exit(runWorkspaces(os.Args[2:]))
	case "switch":
		os.Exit(runSwitch(os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "map":
		os.Exit(runMap(os.Args[2:]))
	case "unmap":
		os.Exit(runUnmap(os.Args[2:]))
	case "lock":
		os.Exit(runLock(os.Args[2:]))
	case "unlock":
		os.Exit(runUnlock(os.Args[2:]))
	case "shutdown":
		os.Exit(runShutdown(os.Args[2:]))
	case "monitor":
		os.Exit(runMonitor(os.Args[2:]))
	case "init":
		os.Exit(runInit(os.Args[2:]))
	case "serve-mcp":
		os.Exit(runServeMCP(os.Args[2:]))
	case "version":
		fmt.Printf("waytile %s\n", version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: waytile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the compositor daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  outputs             List mapped outputs")
	fmt.Fprintln(w, "  workspaces          List workspaces per output")
	fmt.Fprintln(w, "  tree                Print an output's active layout tree")
	fmt.Fprintln(w, "  switch              Activate a workspace by index")
	fmt.Fprintln(w, "  resize              Move a pane boundary by a pixel delta")
	fmt.Fprintln(w, "  map                 Tile a new window by surface id")
	fmt.Fprintln(w, "  unmap               Remove a window by surface id")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  lock                Lock the session")
	fmt.Fprintln(w, "  unlock              Unlock the session")
	fmt.Fprintln(w, "  shutdown            Stop the daemon")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  monitor             Open the live inspector TUI")
	fmt.Fprintln(w, "  init                Write a starter configuration file")
	fmt.Fprintln(w, "  serve-mcp           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Print version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'waytile <command> --help' for command-specific options.")
}

// newClientFlag registers the shared --socket flag and returns a getter for
// the configured client.
func newClientFlag(fs *flag.FlagSet) func() *ipc.Client {
	socket := fs.String("socket", "", "Daemon socket path (default: $XDG_RUNTIME_DIR/waytile.sock)")
	return func() *ipc.Client {
		if *socket == "" {
			return ipc.NewClient()
		}
		return ipc.NewClientWithSocket(*socket)
	}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := client().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("outputs:        %d\n", status.Outputs)
	fmt.Printf("locked:         %v\n", status.Locked)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runOutputs(args []string) int {
	fs := flag.NewFlagSet("outputs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile outputs")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List mapped outputs with geometry and active workspace.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	outputs, err := client().GetOutputs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, out := range outputs.Outputs {
		fmt.Printf("%s %dx%d+%d+%d scale=%.1f workspace=%s\n",
			out.Name, out.Width, out.Height, out.X, out.Y, out.Scale, out.ActiveWorkspace)
	}
	return 0
}

func runWorkspaces(args []string) int {
	fs := flag.NewFlagSet("workspaces", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile workspaces")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List every workspace per output with its window count.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	workspaces, err := client().GetWorkspaces()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, group := range workspaces.Outputs {
		fmt.Printf("%s:\n", group.Output)
		for _, ws := range group.Workspaces {
			marker := " "
			if ws.Active {
				marker = "*"
			}
			fmt.Printf("  %s %s (%d windows)\n", marker, ws.Handle, ws.Windows)
		}
	}
	return 0
}

func runTree(args []string) int {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	outputName := fs.String("output", "", "Output name (default: first output)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile tree [--output NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the active layout tree of an output. Group ids are usable")
		fmt.Fprintln(os.Stderr, "with 'waytile resize'.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	tree, err := client().GetTree(*outputName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("output: %s workspace: %s\n", tree.Output, tree.Workspace)
	fmt.Print(mcp.RenderTree(tree.Root))
	if tree.Root != nil {
		fmt.Println()
	}
	return 0
}

func runSwitch(args []string) int {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	outputName := fs.String("output", "", "Output name (default: first output)")
	index := fs.Int("index", -1, "Zero-based workspace index")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile switch --index N [--output NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Activate a workspace by index on an output.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *index < 0 {
		fmt.Fprintln(os.Stderr, "switch requires --index")
		fs.Usage()
		return 2
	}

	if err := client().SwitchWorkspace(*outputName, *index); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runResize(args []string) int {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	outputName := fs.String("output", "", "Output name (default: first output)")
	node := fs.Uint64("node", 0, "Group node id from 'waytile tree'")
	boundary := fs.Int("boundary", 0, "Child index left of (or above) the boundary to move")
	delta := fs.Int("delta", 0, "Pixels to move the boundary; positive grows the left/upper pane")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile resize --node ID --delta N [--boundary N] [--output NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move a pane boundary inside a group. The same clamped redistribution")
		fmt.Fprintln(os.Stderr, "as interactive drags applies, so pane minimums hold.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *node == 0 {
		fmt.Fprintln(os.Stderr, "resize requires --node")
		fs.Usage()
		return 2
	}
	if *delta == 0 {
		fmt.Fprintln(os.Stderr, "resize requires a non-zero --delta")
		fs.Usage()
		return 2
	}

	result, err := client().Resize(*outputName, *node, *boundary, *delta)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("applied: %v\n", result.Applied)
	fmt.Printf("sizes:   %v\n", result.Sizes)
	return 0
}

func runMap(args []string) int {
	fs := flag.NewFlagSet("map", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	outputName := fs.String("output", "", "Output name (default: first output)")
	surface := fs.Uint64("surface", 0, "Surface id for the new window (unique per output)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile map --surface ID [--output NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Tile a new window on an output's active workspace.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *surface == 0 {
		fmt.Fprintln(os.Stderr, "map requires a non-zero --surface")
		fs.Usage()
		return 2
	}

	result, err := client().MapWindow(*outputName, *surface)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("node: %d\n", result.Node)
	return 0
}

func runUnmap(args []string) int {
	fs := flag.NewFlagSet("unmap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	outputName := fs.String("output", "", "Output name (default: first output)")
	surface := fs.Uint64("surface", 0, "Surface id of the window to remove")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile unmap --surface ID [--output NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Remove a window from its workspace; siblings absorb the space.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *surface == 0 {
		fmt.Fprintln(os.Stderr, "unmap requires a non-zero --surface")
		fs.Usage()
		return 2
	}

	if err := client().UnmapWindow(*outputName, *surface); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runLock(args []string) int {
	return runSimple(args, "lock", "Lock the session.", func(c *ipc.Client) error { return c.Lock() })
}

func runUnlock(args []string) int {
	return runSimple(args, "unlock", "Unlock the session.", func(c *ipc.Client) error { return c.Unlock() })
}

func runShutdown(args []string) int {
	return runSimple(args, "shutdown", "Ask the daemon to exit.", func(c *ipc.Client) error { return c.Shutdown() })
}

func runSimple(args []string, name, doc string, call func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	client := newClientFlag(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: waytile %s\n\n%s\n", name, doc)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	if err := call(client()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
