package tiling

import (
	"errors"
	"fmt"
)

// NodeID is a stable node identifier, unique within its tree and never
// reused. Handles held across event boundaries store the id and re-resolve
// it on every use; a dangling id is reported as ErrNodeNotFound, never a
// stale access.
type NodeID uint64

// NoNode is the zero NodeID; it never resolves.
const NoNode NodeID = 0

var (
	// ErrNodeNotFound is returned when an id does not resolve, typically
	// because the node was removed while a handle was outstanding.
	ErrNodeNotFound = errors.New("tiling: node not found")
	// ErrNotAGroup is returned by operations that require a group node.
	ErrNotAGroup = errors.New("tiling: node is not a group")
	// ErrNoSuchBoundary is returned when a resize names a child boundary
	// the group does not have.
	ErrNoSuchBoundary = errors.New("tiling: no such boundary")
)

// Tree owns the nodes of one (output, workspace) layout. Nodes live in an
// arena keyed by NodeID; external code only ever holds ids.
type Tree struct {
	nodes  map[NodeID]*Node
	root   NodeID
	nextID NodeID
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[NodeID]*Node), nextID: 1}
}

// Root returns the root node id, NoNode when the tree is empty.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Get resolves a node id. Fails with ErrNodeNotFound once the node has been
// removed.
func (t *Tree) Get(id NodeID) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return n, nil
}

// ChildrenIDs returns a group's child ids in tree order. Window nodes have
// no children.
func (t *Tree) ChildrenIDs(id NodeID) ([]NodeID, error) {
	n, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	if len(n.children) == 0 {
		return nil, nil
	}
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out, nil
}

func (t *Tree) alloc(n *Node) NodeID {
	id := t.nextID
	t.nextID++
	t.nodes[id] = n
	return id
}

// SetRootWindow places a single window as the root of an empty tree.
func (t *Tree) SetRootWindow(surface SurfaceID) (NodeID, error) {
	if t.root != NoNode {
		return NoNode, fmt.Errorf("tiling: tree already has a root")
	}
	id := t.alloc(&Node{kind: KindWindow, surface: surface})
	t.root = id
	return id, nil
}

// Split replaces the node at id with a new group containing that node and a
// fresh window for surface, splitting along orientation. Both panes take
// half of the split node's last solved extent. Returns the new window's id.
func (t *Tree) Split(id NodeID, orientation Orientation, surface SurfaceID) (NodeID, error) {
	target, err := t.Get(id)
	if err != nil {
		return NoNode, err
	}

	extent := target.rect.Width
	if orientation == Horizontal {
		extent = target.rect.Height
	}
	half := extent / 2
	left := extent - half
	// An unsolved node has a zero rect; seed equal minimums and let the
	// next solve renormalize the proportions.
	if half < orientation.PaneMin() {
		half = orientation.PaneMin()
	}
	if left < orientation.PaneMin() {
		left = orientation.PaneMin()
	}

	winID := t.alloc(&Node{kind: KindWindow, surface: surface})
	groupID := t.alloc(&Node{
		kind:        KindGroup,
		orientation: orientation,
		sizes:       []int{left, half},
		children:    []NodeID{id, winID},
		parent:      target.parent,
		rect:        target.rect,
	})

	if target.parent == NoNode {
		t.root = groupID
	} else {
		parent := t.nodes[target.parent]
		for i, child := range parent.children {
			if child == id {
				parent.children[i] = groupID
				break
			}
		}
	}
	target.parent = groupID
	t.nodes[winID].parent = groupID
	return winID, nil
}

// AttachWindow inserts a new window into an existing group at the given
// child index with the given extent. at may equal the child count to append.
func (t *Tree) AttachWindow(groupID NodeID, at int, surface SurfaceID, size int) (NodeID, error) {
	group, err := t.Get(groupID)
	if err != nil {
		return NoNode, err
	}
	if group.kind != KindGroup {
		return NoNode, fmt.Errorf("%w: %d", ErrNotAGroup, groupID)
	}
	if at < 0 || at > len(group.children) {
		return NoNode, fmt.Errorf("tiling: attach index %d out of range [0,%d]", at, len(group.children))
	}

	winID := t.alloc(&Node{kind: KindWindow, surface: surface, parent: groupID})
	group.children = append(group.children, NoNode)
	copy(group.children[at+1:], group.children[at:])
	group.children[at] = winID
	group.sizes = append(group.sizes, 0)
	copy(group.sizes[at+1:], group.sizes[at:])
	group.sizes[at] = size
	return winID, nil
}

// Remove deletes a node and its subtree. A group left with a single child
// collapses: the child takes the group's place, keeping the group's slot
// extent in its own parent.
func (t *Tree) Remove(id NodeID) error {
	node, err := t.Get(id)
	if err != nil {
		return err
	}

	t.dropSubtree(id)

	if node.parent == NoNode {
		t.root = NoNode
		return nil
	}

	parent := t.nodes[node.parent]
	for i, child := range parent.children {
		if child != id {
			continue
		}
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
		parent.sizes = append(parent.sizes[:i], parent.sizes[i+1:]...)
		break
	}

	if len(parent.children) == 1 {
		t.collapse(node.parent)
	}
	return nil
}

// collapse promotes a group's only child into the group's place.
func (t *Tree) collapse(groupID NodeID) {
	group := t.nodes[groupID]
	childID := group.children[0]
	child := t.nodes[childID]

	child.parent = group.parent
	child.rect = group.rect
	if group.parent == NoNode {
		t.root = childID
	} else {
		grand := t.nodes[group.parent]
		for i, c := range grand.children {
			if c == groupID {
				grand.children[i] = childID
				break
			}
		}
	}
	delete(t.nodes, groupID)
}

func (t *Tree) dropSubtree(id NodeID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, child := range n.children {
		t.dropSubtree(child)
	}
	delete(t.nodes, id)
}

// ResizeBoundary moves the boundary between children leftUp and leftUp+1 of
// the group at id by delta logical pixels, clamping each pane at paneMin.
// The pair's combined extent is conserved; any remainder from clamping the
// right pane is pushed back onto the left one. Returns false without
// mutating when the pair is already at or below the group orientation's
// combined minimum.
//
// Calling this on a window node is a caller bug, not a runtime condition.
func (t *Tree) ResizeBoundary(id NodeID, leftUp int, delta int, paneMin int) (bool, error) {
	node, err := t.Get(id)
	if err != nil {
		return false, err
	}
	if node.kind != KindGroup {
		panic(fmt.Sprintf("tiling: resize boundary on %s node %d", node.kind, id))
	}
	if leftUp < 0 || leftUp+1 >= len(node.sizes) {
		return false, fmt.Errorf("%w: %d in group of %d", ErrNoSuchBoundary, leftUp, len(node.sizes))
	}

	if node.sizes[leftUp]+node.sizes[leftUp+1] <= node.orientation.PairMin() {
		return false, nil
	}

	old := node.sizes[leftUp]
	node.sizes[leftUp] = max(old+delta, paneMin)
	diff := old - node.sizes[leftUp]
	nextRaw := node.sizes[leftUp+1] + diff
	node.sizes[leftUp+1] = max(nextRaw, paneMin)
	node.sizes[leftUp] += nextRaw - node.sizes[leftUp+1]
	return true, nil
}

// Clone deep-copies the tree. Node ids are preserved, so handles resolved
// against the original resolve identically against the copy.
func (t *Tree) Clone() *Tree {
	out := &Tree{
		nodes:  make(map[NodeID]*Node, len(t.nodes)),
		root:   t.root,
		nextID: t.nextID,
	}
	for id, n := range t.nodes {
		cp := &Node{
			kind:        n.kind,
			surface:     n.surface,
			orientation: n.orientation,
			parent:      n.parent,
			rect:        n.rect,
		}
		if n.sizes != nil {
			cp.sizes = make([]int, len(n.sizes))
			copy(cp.sizes, n.sizes)
		}
		if n.children != nil {
			cp.children = make([]NodeID, len(n.children))
			copy(cp.children, n.children)
		}
		out.nodes[id] = cp
	}
	return out
}

// Walk visits every node reachable from the root in depth-first tree order.
func (t *Tree) Walk(visit func(id NodeID, n *Node)) {
	if t.root == NoNode {
		return
	}
	t.walk(t.root, visit)
}

func (t *Tree) walk(id NodeID, visit func(id NodeID, n *Node)) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	visit(id, n)
	for _, child := range n.children {
		t.walk(child, visit)
	}
}
