package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/waytile/internal/ipc"
)

func sampleSnapshot() snapshotMsg {
	return snapshotMsg{
		status: &ipc.StatusData{UptimeSeconds: 12, Outputs: 2, Locked: false},
		outputs: &ipc.OutputsData{Outputs: []ipc.OutputInfo{
			{Name: "HDMI-A-1", Width: 1920, Height: 1080, ActiveWorkspace: "1"},
			{Name: "DP-1", X: 1920, Width: 2560, Height: 1440, ActiveWorkspace: "2"},
		}},
		workspaces: &ipc.WorkspacesData{Outputs: []ipc.OutputWorkspaces{
			{Output: "HDMI-A-1", Workspaces: []ipc.WorkspaceInfo{
				{Handle: "1", Active: true, Windows: 2},
				{Handle: "2", Windows: 0},
			}},
		}},
		tree: &ipc.TreeData{
			Output:    "HDMI-A-1",
			Workspace: "1",
			Root: &ipc.TreeNodeInfo{
				ID: 3, Kind: "group", Orientation: "vertical", Sizes: []int{600, 600},
				Width: 1920, Height: 1080,
				Children: []ipc.TreeNodeInfo{
					{ID: 1, Kind: "window", Surface: 10},
					{ID: 2, Kind: "window", Surface: 11},
				},
			},
		},
	}
}

func TestViewRendersPanes(t *testing.T) {
	m := model{snap: sampleSnapshot()}
	view := m.View()

	for _, want := range []string{"outputs", "HDMI-A-1", "DP-1", "workspaces", "layout tree", "group #3"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewShowsError(t *testing.T) {
	m := model{snap: snapshotMsg{err: errFake{}}}
	view := m.View()
	if !strings.Contains(view, "daemon unreachable") {
		t.Errorf("expected error surfaced in view, got:\n%s", view)
	}
}

type errFake struct{}

func (errFake) Error() string { return "daemon unreachable" }

func TestTabCyclesOutputs(t *testing.T) {
	m := model{snap: sampleSnapshot()}
	if m.selectedOutput() != "HDMI-A-1" {
		t.Fatalf("unexpected initial selection %q", m.selectedOutput())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	if m.selectedOutput() != "DP-1" {
		t.Errorf("expected DP-1 after tab, got %q", m.selectedOutput())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	if m.selectedOutput() != "HDMI-A-1" {
		t.Errorf("expected wraparound to HDMI-A-1, got %q", m.selectedOutput())
	}
}

func TestSnapshotClampsSelection(t *testing.T) {
	m := model{selected: 5}
	next, _ := m.Update(sampleSnapshot())
	m = next.(model)
	if m.selected != 0 {
		t.Errorf("expected selection clamped to 0, got %d", m.selected)
	}
}

func TestQuitKeys(t *testing.T) {
	m := model{snap: sampleSnapshot()}
	for _, key := range []string{"q", "esc"} {
		var msg tea.KeyMsg
		if key == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("expected quit command for %q", key)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg for %q", key)
		}
	}
}
