// Package output tracks the outputs (monitors) known to the compositor and
// hands out weak references that observe an output without keeping it alive.
package output

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/waytile/internal/geometry"
)

// Output is a single display. Geometry is in the global logical coordinate
// space shared by all outputs.
type Output struct {
	mu       sync.RWMutex
	name     string
	geometry geometry.Rect
	scale    float64
	dead     bool
}

// New creates a standalone output. Most callers go through Registry.Add.
func New(name string, geom geometry.Rect) *Output {
	return &Output{name: name, geometry: geom, scale: 1.0}
}

// Name returns the output's connector name (e.g. "DP-1").
func (o *Output) Name() string {
	return o.name
}

// Geometry returns the output's rectangle in global logical coordinates.
func (o *Output) Geometry() geometry.Rect {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.geometry
}

// SetGeometry updates the output's position and size.
func (o *Output) SetGeometry(geom geometry.Rect) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.geometry = geom
}

// Scale returns the output scale factor.
func (o *Output) Scale() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scale
}

// SetScale updates the output scale factor.
func (o *Output) SetScale(scale float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scale = scale
}

// retire marks the output as gone. Weak references stop resolving from this
// point on and never resolve again.
func (o *Output) retire() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dead = true
}

func (o *Output) alive() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return !o.dead
}

// Downgrade returns a weak reference to the output.
func (o *Output) Downgrade() WeakRef {
	return WeakRef{target: o}
}

// WeakRef is a resolve-or-fail handle to an Output. It never extends the
// output's lifetime and fails permanently once the output is removed.
// The zero value never resolves.
type WeakRef struct {
	target *Output
}

// Upgrade resolves the reference. The second return is false if the output
// has been removed or the reference is zero.
func (w WeakRef) Upgrade() (*Output, bool) {
	if w.target == nil || !w.target.alive() {
		return nil, false
	}
	return w.target, true
}

// Registry holds all currently connected outputs keyed by name.
type Registry struct {
	mu      sync.RWMutex
	outputs map[string]*Output
}

// NewRegistry returns an empty output registry.
func NewRegistry() *Registry {
	return &Registry{outputs: make(map[string]*Output)}
}

// Add creates and registers an output. Names must be unique.
func (r *Registry) Add(name string, geom geometry.Rect) (*Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.outputs[name]; exists {
		return nil, fmt.Errorf("output %q already registered", name)
	}

	o := New(name, geom)
	r.outputs[name] = o
	return o, nil
}

// Remove retires and unregisters an output. Removing an unknown name is a
// no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, exists := r.outputs[name]
	if !exists {
		return
	}
	o.retire()
	delete(r.outputs, name)
}

// Get looks up an output by name.
func (r *Registry) Get(name string) (*Output, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.outputs[name]
	return o, ok
}

// List returns all outputs sorted by name for stable iteration.
func (r *Registry) List() []*Output {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Output, 0, len(r.outputs))
	for _, o := range r.outputs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// At returns the output whose geometry contains the point, if any.
func (r *Registry) At(p geometry.Point) (*Output, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.outputs {
		if o.Geometry().Contains(p) {
			return o, true
		}
	}
	return nil, false
}
