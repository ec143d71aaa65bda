package bvh

import (
	"math/bits"

	"github.com/akmonengine/hlbvh/compute"
)

// Build links the internal nodes of t over the first n sorted keys, one
// independent task per internal node. Every node derives its key range and
// split from the keys alone, so children and their parent pointers are written
// by exactly one task.
func Build(t *Tree, keys []uint32, n, workers int) {
	t.Reset(n)
	if n < 2 {
		return
	}
	keys = keys[:n]
	t.Nodes[0].Parent = 0

	compute.Dispatch(workers, n-1, func(i int) {
		buildNode(t, keys, i)
	})
}

// checkedLCP returns the common prefix length of keys i and j, -1 when j is
// outside the array. Equal keys are told apart by their indices.
func checkedLCP(keys []uint32, i, j int) int {
	if j < 0 || j >= len(keys) {
		return -1
	}
	if keys[i] == keys[j] {
		return 32 + bits.LeadingZeros32(uint32(i^j))
	}
	return bits.LeadingZeros32(keys[i] ^ keys[j])
}

// lcp is checkedLCP without bounds or tie handling; equal keys yield 32.
func lcp(keys []uint32, i, j int) int {
	return bits.LeadingZeros32(keys[i] ^ keys[j])
}

func buildNode(t *Tree, keys []uint32, i int) {
	d := 1
	if checkedLCP(keys, i, i+1)-checkedLCP(keys, i, i-1) < 0 {
		d = -1
	}

	// Upper bound of the range length.
	minLCP := checkedLCP(keys, i, i-d)
	lmax := 2
	for checkedLCP(keys, i, i+lmax*d) > minLCP {
		lmax <<= 1
	}

	// Exact far end of the range.
	l := 0
	for step := lmax >> 1; step > 0; step >>= 1 {
		if checkedLCP(keys, i, i+(l+step)*d) > minLCP {
			l += step
		}
	}
	j := i + l*d
	first, last := min(i, j), max(i, j)

	// Split position: the last index sharing more than the node prefix with i.
	// Probes past the far end are skipped, they cannot share the prefix.
	prefix := checkedLCP(keys, i, j)
	delta := checkedLCP
	if keys[first] != keys[last] {
		delta = lcp
	}
	s := 0
	for step := l; step > 1; {
		step = (step + 1) >> 1
		if s+step <= l && delta(keys, i, i+(s+step)*d) > prefix {
			s += step
		}
	}
	gamma := i + s*d + min(d, 0)

	node := &t.Nodes[i]
	if first == gamma {
		node.Left = Leaf(uint32(gamma))
		t.LeafParents[gamma] = uint32(i)
	} else {
		node.Left = Internal(uint32(gamma))
		t.Nodes[gamma].Parent = uint32(i)
	}
	if last == gamma+1 {
		node.Right = Leaf(uint32(gamma + 1))
		t.LeafParents[gamma+1] = uint32(i)
	} else {
		node.Right = Internal(uint32(gamma + 1))
		t.Nodes[gamma+1].Parent = uint32(i)
	}
}
