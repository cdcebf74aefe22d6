package ipc

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/geometry"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/tiling"
)

type testDaemon struct {
	client     *Client
	sh         *shell.Shell
	shutdownCh chan struct{}
}

// startTestDaemon brings up a shell with one 1280x800 output holding two
// tiled windows, a running event loop, and an IPC server on a private
// socket.
func startTestDaemon(t *testing.T) *testDaemon {
	t.Helper()

	seat := input.NewSeat("seat0")
	sh := shell.New(seat, tiling.Gaps{Inner: 8}, nil)
	out, err := sh.MapOutput("test-0", geometry.Rect{Width: 1280, Height: 800})
	if err != nil {
		t.Fatalf("MapOutput failed: %v", err)
	}
	if _, err := sh.MapWindow(out, 1); err != nil {
		t.Fatalf("MapWindow 1 failed: %v", err)
	}
	if _, err := sh.MapWindow(out, 2); err != nil {
		t.Fatalf("MapWindow 2 failed: %v", err)
	}

	loop := eventloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	shutdownCh := make(chan struct{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	socket := filepath.Join(t.TempDir(), "waytile.sock")
	srv, err := NewServer(loop, sh, logger, socket, func() { close(shutdownCh) })
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		srv.Stop()
		cancel()
	})

	return &testDaemon{
		client:     NewClientWithSocket(socket),
		sh:         sh,
		shutdownCh: shutdownCh,
	}
}

func TestPingAndStatus(t *testing.T) {
	d := startTestDaemon(t)

	if err := d.client.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	status, err := d.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if !status.DaemonRunning || status.Outputs != 1 || status.Locked {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestGetOutputs(t *testing.T) {
	d := startTestDaemon(t)

	outputs, err := d.client.GetOutputs()
	if err != nil {
		t.Fatalf("GetOutputs failed: %v", err)
	}
	if len(outputs.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(outputs.Outputs))
	}
	info := outputs.Outputs[0]
	if info.Name != "test-0" || info.Width != 1280 || info.Height != 800 {
		t.Errorf("unexpected output info %+v", info)
	}
	if info.ActiveWorkspace != "1" {
		t.Errorf("expected active workspace 1, got %q", info.ActiveWorkspace)
	}
}

func TestGetTree(t *testing.T) {
	d := startTestDaemon(t)

	tree, err := d.client.GetTree("")
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}
	if tree.Output != "test-0" || tree.Root == nil {
		t.Fatalf("unexpected tree %+v", tree)
	}
	root := tree.Root
	if root.Kind != "group" || root.Orientation != "vertical" {
		t.Errorf("expected vertical group root, got %+v", root)
	}
	if len(root.Children) != 2 || root.Children[0].Kind != "window" {
		t.Errorf("expected two window children, got %+v", root.Children)
	}
	if root.Sizes[0] != 636 || root.Sizes[1] != 636 {
		t.Errorf("expected sizes [636 636], got %v", root.Sizes)
	}
}

func TestResizeOverIPC(t *testing.T) {
	d := startTestDaemon(t)

	tree, err := d.client.GetTree("")
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}

	result, err := d.client.Resize("", tree.Root.ID, 0, 50)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if !result.Applied || result.Sizes[0] != 686 || result.Sizes[1] != 586 {
		t.Errorf("unexpected resize result %+v", result)
	}

	// A huge shrink clamps the left pane at its floor and pushes the rest
	// back.
	result, err = d.client.Resize("", tree.Root.ID, 0, -1000)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if !result.Applied || result.Sizes[0] != 360 || result.Sizes[1] != 912 {
		t.Errorf("unexpected clamped result %+v", result)
	}

	if _, err := d.client.Resize("", tree.Root.ID, 7, 10); err == nil {
		t.Errorf("expected resize of a missing boundary to fail")
	}
	if _, err := d.client.Resize("", 9999, 0, 10); err == nil {
		t.Errorf("expected resize of a missing node to fail")
	}
}

func TestSwitchWorkspace(t *testing.T) {
	d := startTestDaemon(t)

	if err := d.client.SwitchWorkspace("test-0", 1); err != nil {
		t.Fatalf("SwitchWorkspace failed: %v", err)
	}

	workspaces, err := d.client.GetWorkspaces()
	if err != nil {
		t.Fatalf("GetWorkspaces failed: %v", err)
	}
	if len(workspaces.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(workspaces.Outputs))
	}
	spaces := workspaces.Outputs[0].Workspaces
	if len(spaces) != 4 {
		t.Fatalf("expected 4 workspaces, got %d", len(spaces))
	}
	if !spaces[1].Active || spaces[0].Active {
		t.Errorf("expected workspace 2 active, got %+v", spaces)
	}
	if spaces[0].Windows != 2 || spaces[1].Windows != 0 {
		t.Errorf("expected window counts [2 0], got %+v", spaces)
	}

	if err := d.client.SwitchWorkspace("test-0", 9); err == nil {
		t.Errorf("expected out-of-range switch to fail")
	}
}

func TestMapAndUnmapWindow(t *testing.T) {
	d := startTestDaemon(t)

	result, err := d.client.MapWindow("", 3)
	if err != nil {
		t.Fatalf("MapWindow failed: %v", err)
	}
	if result.Node == 0 {
		t.Fatalf("expected a node id, got %+v", result)
	}

	tree, err := d.client.GetTree("")
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}
	if len(tree.Root.Children) != 3 {
		t.Errorf("expected 3 panes after map, got %d", len(tree.Root.Children))
	}

	if _, err := d.client.MapWindow("", 3); err == nil {
		t.Errorf("expected duplicate surface id to fail")
	}
	if _, err := d.client.MapWindow("", 0); err == nil {
		t.Errorf("expected surface id 0 to fail")
	}

	if err := d.client.UnmapWindow("", 3); err != nil {
		t.Fatalf("UnmapWindow failed: %v", err)
	}
	tree, err = d.client.GetTree("")
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}
	if len(tree.Root.Children) != 2 {
		t.Errorf("expected 2 panes after unmap, got %d", len(tree.Root.Children))
	}

	if err := d.client.UnmapWindow("", 99); err == nil {
		t.Errorf("expected unmap of unknown surface to fail")
	}
}

func TestLockUnlock(t *testing.T) {
	d := startTestDaemon(t)

	if err := d.client.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	status, err := d.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if !status.Locked {
		t.Errorf("expected locked status")
	}
	if err := d.client.Lock(); err == nil {
		t.Errorf("expected second lock to fail")
	}

	if err := d.client.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	status, err = d.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.Locked {
		t.Errorf("expected unlocked status")
	}
}

func TestShutdownInvokesHook(t *testing.T) {
	d := startTestDaemon(t)

	if err := d.client.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	select {
	case <-d.shutdownCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected shutdown hook to run")
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	d := startTestDaemon(t)

	_, err := d.client.sendRequest(&Request{Command: "BOGUS"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Errorf("expected unknown command error, got %v", err)
	}
}
