// Package tui is a live inspector for the running daemon: it polls the IPC
// socket and renders the outputs, workspaces, and the active layout tree.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/waytile/internal/ipc"
	"github.com/1broseidon/waytile/internal/mcp"
)

const pollInterval = 500 * time.Millisecond

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("57")).Padding(0, 1)
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

type tickMsg time.Time

// snapshotMsg carries one poll of the daemon state.
type snapshotMsg struct {
	status     *ipc.StatusData
	outputs    *ipc.OutputsData
	workspaces *ipc.WorkspacesData
	tree       *ipc.TreeData
	err        error
}

// model is the root bubbletea model for the inspector.
type model struct {
	client *ipc.Client

	selected int // index into snap.outputs.Outputs
	snap     snapshotMsg

	width  int
	height int
}

func newModel(client *ipc.Client) model {
	return model{client: client}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.poll, tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// poll fetches a fresh snapshot over IPC.
func (m model) poll() tea.Msg {
	var snap snapshotMsg
	snap.status, snap.err = m.client.GetStatus()
	if snap.err != nil {
		return snap
	}
	if snap.outputs, snap.err = m.client.GetOutputs(); snap.err != nil {
		return snap
	}
	if snap.workspaces, snap.err = m.client.GetWorkspaces(); snap.err != nil {
		return snap
	}

	name := ""
	if len(snap.outputs.Outputs) > 0 {
		idx := m.selected
		if idx >= len(snap.outputs.Outputs) {
			idx = 0
		}
		name = snap.outputs.Outputs[idx].Name
	}
	snap.tree, snap.err = m.client.GetTree(name)
	return snap
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if n := m.outputCount(); n > 0 {
				m.selected = (m.selected + 1) % n
			}
			return m, m.poll
		case "r":
			return m, m.poll
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			idx := int(msg.String()[0] - '1')
			return m, m.switchWorkspace(idx)
		}

	case tickMsg:
		return m, tea.Batch(m.poll, tick())

	case snapshotMsg:
		m.snap = msg
		if n := m.outputCount(); n > 0 && m.selected >= n {
			m.selected = 0
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) outputCount() int {
	if m.snap.outputs == nil {
		return 0
	}
	return len(m.snap.outputs.Outputs)
}

func (m model) selectedOutput() string {
	if m.outputCount() == 0 {
		return ""
	}
	return m.snap.outputs.Outputs[m.selected].Name
}

// switchWorkspace activates workspace idx on the selected output, then
// repolls so the change is visible immediately.
func (m model) switchWorkspace(idx int) tea.Cmd {
	name := m.selectedOutput()
	return func() tea.Msg {
		if err := m.client.SwitchWorkspace(name, idx); err != nil {
			return snapshotMsg{err: err}
		}
		return m.poll()
	}
}

// View implements tea.Model.
func (m model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("waytile inspector"))
	sb.WriteString("\n\n")

	if m.snap.err != nil {
		sb.WriteString(errStyle.Render(m.snap.err.Error()))
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("r: retry • q: quit"))
		return sb.String()
	}
	if m.snap.status == nil {
		sb.WriteString(dimStyle.Render("connecting..."))
		return sb.String()
	}

	left := paneStyle.Render(m.renderOutputs())
	right := paneStyle.Render(m.renderTree())
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	sb.WriteString(helpStyle.Render("tab: next output • 1-9: switch workspace • r: refresh • q: quit"))
	return sb.String()
}

func (m model) renderOutputs() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("outputs"))
	sb.WriteString("\n")
	for i, out := range m.snap.outputs.Outputs {
		marker := "  "
		line := fmt.Sprintf("%s %dx%d+%d+%d", out.Name, out.Width, out.Height, out.X, out.Y)
		if i == m.selected {
			marker = "> "
			line = activeStyle.Render(line)
		}
		sb.WriteString(marker + line + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render("workspaces"))
	sb.WriteString("\n")
	if m.snap.workspaces != nil {
		for _, group := range m.snap.workspaces.Outputs {
			if group.Output != m.selectedOutput() {
				continue
			}
			for _, ws := range group.Workspaces {
				line := fmt.Sprintf("  %s (%d windows)", ws.Handle, ws.Windows)
				if ws.Active {
					line = activeStyle.Render("* " + strings.TrimPrefix(line, "  "))
				}
				sb.WriteString(line + "\n")
			}
		}
	}

	if m.snap.status.Locked {
		sb.WriteString("\n")
		sb.WriteString(errStyle.Render("session locked"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) renderTree() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("layout tree"))
	sb.WriteString("\n")
	if m.snap.tree == nil || m.snap.tree.Root == nil {
		sb.WriteString(dimStyle.Render("(empty)"))
		return sb.String()
	}
	sb.WriteString(mcp.RenderTree(m.snap.tree.Root))
	return sb.String()
}
