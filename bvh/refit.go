package bvh

import (
	"github.com/akmonengine/hlbvh/compute"
	"github.com/pkg/errors"
)

var (
	ErrMalformed = errors.New("bvh: malformed tree")
)

// Refit recomputes the internal boxes from the leaf boxes, one task per leaf.
// A task walks up from its leaf; at every node the first of the two arriving
// children stops, the second one unions both child boxes and continues. The
// walk ends after the root.
func Refit(t *Tree, workers int) {
	if t.n < 2 {
		return
	}
	for i := range t.visits {
		t.visits[i].Store(0)
	}

	compute.Dispatch(workers, t.n, func(leaf int) {
		node := t.LeafParents[leaf]
		for {
			if t.visits[node].Inc() != 2 {
				return
			}
			n := &t.Nodes[node]
			t.Boxes[node] = t.Box(n.Left).Union(t.Box(n.Right))
			if node == 0 {
				return
			}
			node = n.Parent
		}
	})
}

// Validate checks the structure of a built tree: every node except the root
// is referenced exactly once, parent pointers agree with child links, and a
// depth-first walk from the root reaches every leaf exactly once.
func Validate(t *Tree) error {
	n := t.n
	if n < 2 {
		return nil
	}
	if len(t.Nodes) != n-1 || len(t.LeafParents) != n {
		return errors.Wrapf(ErrMalformed, "%d internal nodes and %d leaves for %d keys", len(t.Nodes), len(t.LeafParents), n)
	}

	internalRefs := make([]int, n-1)
	leafRefs := make([]int, n)
	for i, node := range t.Nodes {
		for _, child := range [2]NodeRef{node.Left, node.Right} {
			idx := int(child.Index())
			if child.IsLeaf() {
				if idx >= n {
					return errors.Wrapf(ErrMalformed, "node %d references leaf %d", i, idx)
				}
				leafRefs[idx]++
				if int(t.LeafParents[idx]) != i {
					return errors.Wrapf(ErrMalformed, "leaf %d has parent %d, expected %d", idx, t.LeafParents[idx], i)
				}
				continue
			}
			if idx == 0 || idx >= n-1 {
				return errors.Wrapf(ErrMalformed, "node %d references internal node %d", i, idx)
			}
			internalRefs[idx]++
			if int(t.Nodes[idx].Parent) != i {
				return errors.Wrapf(ErrMalformed, "node %d has parent %d, expected %d", idx, t.Nodes[idx].Parent, i)
			}
		}
	}
	for i := 1; i < n-1; i++ {
		if internalRefs[i] != 1 {
			return errors.Wrapf(ErrMalformed, "internal node %d referenced %d times", i, internalRefs[i])
		}
	}
	for i, refs := range leafRefs {
		if refs != 1 {
			return errors.Wrapf(ErrMalformed, "leaf %d referenced %d times", i, refs)
		}
	}

	visited := make([]bool, n)
	stack := []NodeRef{t.Root()}
	steps := 0
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if steps++; steps > 2*n {
			return errors.Wrap(ErrMalformed, "cycle reached from the root")
		}
		if ref.IsLeaf() {
			if visited[ref.Index()] {
				return errors.Wrapf(ErrMalformed, "leaf %d reached twice", ref.Index())
			}
			visited[ref.Index()] = true
			continue
		}
		node := t.Nodes[ref.Index()]
		stack = append(stack, node.Right, node.Left)
	}
	for i, ok := range visited {
		if !ok {
			return errors.Wrapf(ErrMalformed, "leaf %d unreachable from the root", i)
		}
	}
	return nil
}
