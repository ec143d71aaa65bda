package bvh

import "fmt"

// leafFlag marks a leaf reference in the packed representation.
const leafFlag = 0x80000000

// NodeRef references either a leaf (a slot of the sorted triangle array) or
// an internal node of a Tree.
type NodeRef struct {
	index uint32
	leaf  bool
}

// Leaf returns a reference to leaf i.
func Leaf(i uint32) NodeRef {
	return NodeRef{index: i, leaf: true}
}

// Internal returns a reference to internal node i.
func Internal(i uint32) NodeRef {
	return NodeRef{index: i}
}

func (r NodeRef) IsLeaf() bool {
	return r.leaf
}

func (r NodeRef) Index() uint32 {
	return r.index
}

// Packed returns the storage form of the reference: the index with the top
// bit set for leaves.
func (r NodeRef) Packed() uint32 {
	if r.leaf {
		return r.index | leafFlag
	}
	return r.index
}

// Unpack converts a packed reference back.
func Unpack(packed uint32) NodeRef {
	return NodeRef{index: packed &^ leafFlag, leaf: packed&leafFlag != 0}
}

func (r NodeRef) String() string {
	if r.leaf {
		return fmt.Sprintf("Leaf(%d)", r.index)
	}
	return fmt.Sprintf("Internal(%d)", r.index)
}

// Node is an internal node of the hierarchy.
type Node struct {
	Left, Right NodeRef
	Parent      uint32
}
