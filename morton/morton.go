// Package morton maps triangle centroids to 30-bit Morton codes (Z-order curve
// keys) relative to the bounding box of their body.
package morton

import (
	"math"

	"github.com/akmonengine/hlbvh/actor"
	"github.com/akmonengine/hlbvh/compute"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Bits is the grid resolution per axis.
	Bits = 10
	// GridMax is the largest coordinate on the per-axis grid.
	GridMax = 1<<Bits - 1
	// PaddingKey is written to slots past the triangle count so they sort last.
	PaddingKey = math.MaxUint32
)

// ExpandBits inserts two zero bits between each of the 10 low bits of v.
func ExpandBits(v uint32) uint32 {
	v &= GridMax
	v = (v * 0x00010001) & 0xFF0000FF
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249
	return v
}

// compactBits is the inverse of ExpandBits.
func compactBits(v uint32) uint32 {
	v &= 0x09249249
	v = (v ^ (v >> 2)) & 0x030C30C3
	v = (v ^ (v >> 4)) & 0x0300F00F
	v = (v ^ (v >> 8)) & 0xFF0000FF
	v = (v ^ (v >> 16)) & 0x000003FF
	return v
}

// Encode interleaves three 10-bit grid coordinates, x in the most significant
// position of each triplet.
func Encode(x, y, z uint32) uint32 {
	return ExpandBits(x)<<2 | ExpandBits(y)<<1 | ExpandBits(z)
}

// Decode returns the grid coordinates of a code produced by Encode.
func Decode(code uint32) (x, y, z uint32) {
	return compactBits(code >> 2), compactBits(code >> 1), compactBits(code)
}

// Code returns the Morton code of point normalized into bounds.
func Code(point mgl32.Vec3, bounds actor.AABB) uint32 {
	size := bounds.Size()
	var grid [3]uint32
	for axis := 0; axis < 3; axis++ {
		var unit float32
		if size[axis] > 0 {
			unit = (point[axis] - bounds.Min[axis]) / size[axis]
		}
		grid[axis] = quantize(unit)
	}
	return Encode(grid[0], grid[1], grid[2])
}

func quantize(unit float32) uint32 {
	scaled := unit * (GridMax + 1)
	if !(scaled > 0) {
		return 0
	}
	if scaled >= GridMax {
		return GridMax
	}
	return uint32(scaled)
}

// Generate writes one (key, value) entry per slot of keys/values: the Morton
// code of centroid i and i itself for i < count, PaddingKey and the slot index
// for the padding slots past count.
func Generate(keys, values []uint32, centroids []mgl32.Vec3, count int, bounds actor.AABB, workers int) {
	compute.Dispatch(workers, len(keys), func(i int) {
		values[i] = uint32(i)
		if i >= count {
			keys[i] = PaddingKey
			return
		}
		keys[i] = Code(centroids[i], bounds)
	})
}
