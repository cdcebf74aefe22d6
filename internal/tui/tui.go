package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/waytile/internal/ipc"
)

// Run starts the inspector against the daemon at socketPath. An empty
// path uses the runtime-dir default.
func Run(socketPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("monitor requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	var client *ipc.Client
	if socketPath == "" {
		client = ipc.NewClient()
	} else {
		client = ipc.NewClientWithSocket(socketPath)
	}

	// Fail fast with a readable error instead of an empty screen.
	if err := client.Ping(); err != nil {
		return err
	}

	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor terminated: %w", err)
	}
	return nil
}
