// Package bvh builds linear bounding volume hierarchies over Morton-sorted
// triangles and refits their boxes bottom-up.
//
// A Tree over n leaves has n-1 internal nodes; internal node 0 is the root.
// Leaves are the slots of the sorted key array, Order maps them back to the
// triangle they stand for.
package bvh

import (
	"github.com/akmonengine/hlbvh/actor"
	"github.com/akmonengine/hlbvh/compute"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"
)

// Tree is the node arena of one body. Its buffers are allocated for the
// largest size seen and reused by Reset.
type Tree struct {
	Nodes       []Node
	LeafParents []uint32

	// Boxes of the internal nodes, written by Refit.
	Boxes []actor.AABB
	// Boxes of the leaves, in sorted order.
	LeafBoxes []actor.AABB
	// Order[k] is the triangle stored at leaf k.
	Order []uint32

	visits []atomic.Uint32
	n      int
}

// NewTree allocates a tree for up to capacity leaves.
func NewTree(capacity int) *Tree {
	t := &Tree{}
	t.Reset(capacity)
	t.Reset(0)
	return t
}

// Reset resizes the tree to n leaves, growing the buffers only when needed.
func (t *Tree) Reset(n int) {
	internal := max(n-1, 0)
	if cap(t.LeafParents) < n {
		t.LeafParents = make([]uint32, n)
		t.LeafBoxes = make([]actor.AABB, n)
		t.Order = make([]uint32, n)
	}
	if cap(t.Nodes) < internal {
		t.Nodes = make([]Node, internal)
		t.Boxes = make([]actor.AABB, internal)
		t.visits = make([]atomic.Uint32, internal)
	}
	t.Nodes = t.Nodes[:internal]
	t.Boxes = t.Boxes[:internal]
	t.visits = t.visits[:internal]
	t.LeafParents = t.LeafParents[:n]
	t.LeafBoxes = t.LeafBoxes[:n]
	t.Order = t.Order[:n]
	t.n = n
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return t.n
}

// Root returns the root reference. A single-leaf tree has no internal node
// and its root is the leaf itself.
func (t *Tree) Root() NodeRef {
	if t.n == 1 {
		return Leaf(0)
	}
	return Internal(0)
}

// Box returns the bounding box of a node or leaf.
func (t *Tree) Box(ref NodeRef) actor.AABB {
	if ref.IsLeaf() {
		return t.LeafBoxes[ref.Index()]
	}
	return t.Boxes[ref.Index()]
}

// Bounds returns the box of the whole tree.
func (t *Tree) Bounds() actor.AABB {
	if t.n == 0 {
		return actor.EmptyAABB()
	}
	return t.Box(t.Root())
}

// SetLeaves records the sorted triangle order and computes the leaf boxes
// from the flat triangle buffer, 3 corners per triangle.
func (t *Tree) SetLeaves(order []uint32, triangles []mgl32.Vec3, workers int) {
	copy(t.Order, order[:t.n])
	compute.Dispatch(workers, t.n, func(k int) {
		tri := 3 * int(t.Order[k])
		t.LeafBoxes[k] = actor.TriangleAABB(triangles[tri], triangles[tri+1], triangles[tri+2])
	})
}
