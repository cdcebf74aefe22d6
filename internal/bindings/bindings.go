// Package bindings maps configured key combos to compositor actions. Combo
// parsing and dispatch are backend-neutral; the X11 backend registers the
// parsed combos with the display server.
package bindings

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// modifiers accepted in a combo, in xgbutil's spelling.
var validModifiers = map[string]string{
	"shift":   "Shift",
	"control": "Control",
	"ctrl":    "Control",
	"mod1":    "Mod1",
	"alt":     "Mod1",
	"mod2":    "Mod2",
	"mod3":    "Mod3",
	"mod4":    "Mod4",
	"super":   "Mod4",
	"mod5":    "Mod5",
}

// Combo is a parsed key combination: zero or more modifiers plus a key.
type Combo struct {
	Mods []string
	Key  string
}

// String renders the combo in the canonical "Mod4-Shift-q" form understood
// by the keybind layer.
func (c Combo) String() string {
	if len(c.Mods) == 0 {
		return c.Key
	}
	return strings.Join(c.Mods, "-") + "-" + c.Key
}

// Parse splits a combo like "Mod4-Shift-q" into modifiers and key.
// Modifier aliases (Ctrl, Alt, Super) are normalized. The final token is
// the key and is kept verbatim; keysym validity is the display server's
// call.
func Parse(combo string) (Combo, error) {
	parts := strings.Split(strings.TrimSpace(combo), "-")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Combo{}, fmt.Errorf("bindings: empty combo %q", combo)
	}

	var out Combo
	for _, mod := range parts[:len(parts)-1] {
		canonical, ok := validModifiers[strings.ToLower(mod)]
		if !ok {
			return Combo{}, fmt.Errorf("bindings: unknown modifier %q in %q", mod, combo)
		}
		out.Mods = append(out.Mods, canonical)
	}
	out.Key = parts[len(parts)-1]
	return out, nil
}

// Table maps action names to callbacks and their configured combos.
type Table struct {
	mu      sync.Mutex
	actions map[string]func()
	combos  map[string]Combo
}

// NewTable returns an empty binding table.
func NewTable() *Table {
	return &Table{
		actions: make(map[string]func()),
		combos:  make(map[string]Combo),
	}
}

// RegisterAction installs the callback executed when action's combo fires.
func (t *Table) RegisterAction(action string, fn func()) {
	t.mu.Lock()
	t.actions[action] = fn
	t.mu.Unlock()
}

// Bind parses combo and attaches it to action. Binding an action with no
// registered callback is an error, so config typos surface at startup.
func (t *Table) Bind(action, combo string) error {
	parsed, err := Parse(combo)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.actions[action]; !ok {
		return fmt.Errorf("bindings: unknown action %q", action)
	}
	t.combos[action] = parsed
	return nil
}

// BindAll binds every action/combo pair from the configuration.
func (t *Table) BindAll(cfg map[string]string) error {
	actions := make([]string, 0, len(cfg))
	for action := range cfg {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	for _, action := range actions {
		if err := t.Bind(action, cfg[action]); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch runs the callback for action. Unknown actions are a no-op.
func (t *Table) Dispatch(action string) {
	t.mu.Lock()
	fn := t.actions[action]
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Bound returns the bound (action, combo) pairs sorted by action name.
func (t *Table) Bound() []BoundBinding {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]BoundBinding, 0, len(t.combos))
	for action, combo := range t.combos {
		out = append(out, BoundBinding{Action: action, Combo: combo})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

// BoundBinding pairs an action with its parsed combo.
type BoundBinding struct {
	Action string
	Combo  Combo
}
