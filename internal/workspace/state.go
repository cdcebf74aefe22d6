// Package workspace persists which workspace is active on each output so a
// daemon restart comes back up where the user left it. The layout trees
// themselves are not persisted; they are rebuilt by clients remapping their
// windows.
package workspace

import (
	"sort"

	"github.com/1broseidon/waytile/internal/shell"
)

// OutputState is the persisted state of one output.
type OutputState struct {
	Name            string `json:"name"`
	ActiveWorkspace int    `json:"active_workspace"`
}

// State is the persisted shell state.
type State struct {
	Outputs []OutputState `json:"outputs"`
}

// Snapshot captures the active workspace of every mapped output. Must be
// called on the compositor loop.
func Snapshot(sh *shell.Shell) *State {
	st := &State{}
	for _, out := range sh.Outputs().List() {
		st.Outputs = append(st.Outputs, OutputState{
			Name:            out.Name(),
			ActiveWorkspace: sh.ActiveIndex(out),
		})
	}
	sort.Slice(st.Outputs, func(i, j int) bool { return st.Outputs[i].Name < st.Outputs[j].Name })
	return st
}

// Apply restores the snapshot onto the shell. Outputs that are no longer
// mapped and indices that no longer exist are skipped; restoring state must
// never fail a boot.
func (st *State) Apply(sh *shell.Shell) {
	if st == nil {
		return
	}
	for _, saved := range st.Outputs {
		out, ok := sh.Outputs().Get(saved.Name)
		if !ok {
			continue
		}
		if saved.ActiveWorkspace < 0 || saved.ActiveWorkspace >= len(sh.Workspaces(out)) {
			continue
		}
		// Ignore the error: an unmapped output raced us, nothing to restore.
		_ = sh.SwitchWorkspace(out, saved.ActiveWorkspace)
	}
}

// lookup returns the saved state for an output name.
func (st *State) lookup(name string) (OutputState, bool) {
	for _, o := range st.Outputs {
		if o.Name == name {
			return o, true
		}
	}
	return OutputState{}, false
}

// Changed reports whether a fresh snapshot differs from this state.
func (st *State) Changed(sh *shell.Shell) bool {
	cur := Snapshot(sh)
	if len(cur.Outputs) != len(st.Outputs) {
		return true
	}
	for _, o := range cur.Outputs {
		saved, ok := st.lookup(o.Name)
		if !ok || saved.ActiveWorkspace != o.ActiveWorkspace {
			return true
		}
	}
	return false
}
