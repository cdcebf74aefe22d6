package tiling

// maxQueueDepth bounds how many superseded snapshots a queue retains for
// in-flight transitions before the oldest is dropped.
const maxQueueDepth = 8

// Queue holds the tree history for one workspace. The tree at the back is
// the working tree: all reads and mutations go there. Earlier entries are
// superseded snapshots kept only while a transition away from them is still
// in flight.
type Queue struct {
	trees []*Tree
}

// NewQueue returns a queue holding a single empty working tree.
func NewQueue() *Queue {
	return &Queue{trees: []*Tree{NewTree()}}
}

// Back returns the working tree.
func (q *Queue) Back() *Tree {
	return q.trees[len(q.trees)-1]
}

// PushClone snapshots the working tree and makes the clone the new working
// tree. Mutations after the push leave the snapshot untouched.
func (q *Queue) PushClone() *Tree {
	next := q.Back().Clone()
	q.trees = append(q.trees, next)
	if len(q.trees) > maxQueueDepth {
		q.trees = q.trees[len(q.trees)-maxQueueDepth:]
	}
	return next
}

// Depth returns the number of trees currently held, the working tree
// included.
func (q *Queue) Depth() int { return len(q.trees) }
