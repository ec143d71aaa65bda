package hlbvh

import (
	"github.com/akmonengine/hlbvh/actor"
	"github.com/akmonengine/hlbvh/bvh"
	"github.com/akmonengine/hlbvh/compute"
	"github.com/akmonengine/hlbvh/radix"
	"github.com/akmonengine/hlbvh/tritri"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"
)

// STACK_SIZE bounds the pending nodes of one traversal. Node prefixes grow
// strictly with depth and never exceed 64 bits for 16-bit triangle ids, so a
// path holds at most that many nodes.
const STACK_SIZE = 64

// collider is the per-body state of the collision pipeline. Buffers are sized
// once, when the body is added.
type collider struct {
	body *actor.Body

	sorter radix.Sorter
	keys   []uint32
	values []uint32
	tree   *bvh.Tree

	// Nonzero when the body touched another body this frame.
	flag atomic.Uint32
	// Contacting triangle pairs per triangle; only counted when visualizing.
	counts []atomic.Uint32
	// Adjacent contacting triangles per vertex.
	touched []uint32
}

func newCollider(body *actor.Body, strategy radix.Strategy, opts radix.Options, visualize bool) *collider {
	n := body.TriangleCount()
	c := &collider{
		body:   body,
		sorter: radix.New(strategy, n, opts),
		tree:   bvh.NewTree(n),
	}
	padded := c.sorter.PaddedLen(n)
	c.keys = make([]uint32, padded)
	c.values = make([]uint32, padded)
	if visualize {
		c.counts = make([]atomic.Uint32, n)
		c.touched = make([]uint32, body.VertexCount())
	}
	return c
}

// reset zeroes the contact state before a frame.
func (c *collider) reset() {
	c.flag.Store(0)
	for i := range c.counts {
		c.counts[i].Store(0)
	}
	clear(c.touched)
}

// accumulateTouched derives the per-vertex counts from the triangle counts.
func (c *collider) accumulateTouched() {
	for t := range c.counts {
		if c.counts[t].Load() == 0 {
			continue
		}
		for k := 0; k < 3; k++ {
			c.touched[c.body.Vertex(t, k)]++
		}
	}
}

// collide reports a contact for crossing triangles and for exact duplicates,
// which the separating-interval test treats as coplanar.
func collide(a, b [3]mgl32.Vec3) bool {
	return tritri.Intersects(a, b) || tritri.Coincident(a, b)
}

// narrowPhase tests every leaf of a against the tree of b, one task per leaf,
// and reports whether any triangle pair intersects. Both bodies must have been
// built this frame.
func narrowPhase(a, b *collider, visualize bool, workers int) bool {
	var hit atomic.Bool

	compute.Dispatch(workers, a.tree.Len(), func(leaf int) {
		traverse(a, b, leaf, visualize, &hit)
	})
	return hit.Load()
}

// traverse walks b's tree with the box of one leaf of a. hit is shared by
// every leaf of the pair; without visualization the walk stops once it is set.
func traverse(a, b *collider, leaf int, visualize bool, hit *atomic.Bool) {
	box := a.tree.LeafBoxes[leaf]
	triA := int(a.tree.Order[leaf])
	triangleA := a.body.Triangle(triA)

	testLeaf := func(ref bvh.NodeRef) {
		triB := int(b.tree.Order[ref.Index()])
		if !collide(triangleA, b.body.Triangle(triB)) {
			return
		}
		hit.Store(true)
		a.flag.Store(1)
		b.flag.Store(1)
		if visualize {
			a.counts[triA].Inc()
			b.counts[triB].Inc()
		}
	}

	root := b.tree.Root()
	if root.IsLeaf() {
		if box.Overlaps(b.tree.LeafBoxes[0]) {
			testLeaf(root)
		}
		return
	}

	var stack [STACK_SIZE]uint16
	top := 0
	node := root.Index()
	for {
		if !visualize && hit.Load() {
			return
		}

		n := b.tree.Nodes[node]
		overlapLeft := box.Overlaps(b.tree.Box(n.Left))
		overlapRight := box.Overlaps(b.tree.Box(n.Right))

		if overlapLeft && n.Left.IsLeaf() {
			testLeaf(n.Left)
		}
		if overlapRight && n.Right.IsLeaf() {
			testLeaf(n.Right)
		}

		descendLeft := overlapLeft && !n.Left.IsLeaf()
		descendRight := overlapRight && !n.Right.IsLeaf()

		switch {
		case descendLeft && descendRight:
			stack[top] = uint16(n.Right.Index())
			top++
			node = n.Left.Index()
		case descendLeft:
			node = n.Left.Index()
		case descendRight:
			node = n.Right.Index()
		default:
			if top == 0 {
				return
			}
			top--
			node = uint32(stack[top])
		}
	}
}
