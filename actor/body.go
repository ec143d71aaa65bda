package actor

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Body is one animated mesh instance taking part in collision detection.
//
// Triangles and Centroids are rewritten by Update every frame; the collision
// engine only reads them.
type Body struct {
	Name      string
	Transform Transform

	// Interpolated world-space triangle positions, 3 per triangle.
	Triangles []mgl32.Vec3
	// Per-triangle centroid of Triangles.
	Centroids []mgl32.Vec3
	// Root bounding box of the current frame.
	AABB AABB

	// Optional shared-vertex topology: Indices[3*t+k] is the vertex id of
	// corner k of triangle t. Without it every corner is its own vertex.
	Indices     []uint32
	vertexCount int

	animation *Animation
}

// NewBody creates a body driven by an animation. The triangle buffers are
// allocated once and reused every frame.
func NewBody(name string, animation *Animation, transform Transform) *Body {
	n := animation.TriangleCount()
	b := &Body{
		Name:      name,
		Transform: transform,
		Triangles: make([]mgl32.Vec3, 3*n),
		Centroids: make([]mgl32.Vec3, n),
		animation: animation,
	}
	b.Update(0, 0, 0)
	return b
}

// NewStaticBody creates a body from a single triangle list.
func NewStaticBody(name string, triangles []mgl32.Vec3, transform Transform) (*Body, error) {
	animation, err := NewAnimation(triangles)
	if err != nil {
		return nil, errors.Wrapf(err, "body %q", name)
	}
	return NewBody(name, animation, transform), nil
}

// TriangleCount returns the number of triangles of the body.
func (b *Body) TriangleCount() int {
	return len(b.Centroids)
}

// VertexCount returns the number of distinct vertices, 3 per triangle unless
// an index buffer was attached.
func (b *Body) VertexCount() int {
	if b.Indices == nil {
		return len(b.Triangles)
	}
	return b.vertexCount
}

// Vertex returns the vertex id of corner k of triangle t.
func (b *Body) Vertex(t, k int) int {
	if b.Indices == nil {
		return 3*t + k
	}
	return int(b.Indices[3*t+k])
}

// SetIndices attaches the shared-vertex topology of the mesh.
func (b *Body) SetIndices(indices []uint32, vertexCount int) error {
	if len(indices) != len(b.Triangles) {
		return errors.Wrapf(ErrIndexCount, "body %q: %d indices for %d triangles", b.Name, len(indices), b.TriangleCount())
	}
	for _, idx := range indices {
		if int(idx) >= vertexCount {
			return errors.Wrapf(ErrIndexRange, "body %q: index %d >= %d", b.Name, idx, vertexCount)
		}
	}
	b.Indices = indices
	b.vertexCount = vertexCount
	return nil
}

// Triangle returns the three world-space corners of triangle t.
func (b *Body) Triangle(t int) [3]mgl32.Vec3 {
	return [3]mgl32.Vec3{b.Triangles[3*t], b.Triangles[3*t+1], b.Triangles[3*t+2]}
}

// Update interpolates the body between keyframes current and next, writing the
// triangle and centroid buffers and rebuilding the root AABB in the same pass.
func (b *Body) Update(current, next int, factor float32) {
	aabb := EmptyAABB()
	for t := range b.Centroids {
		var centroid mgl32.Vec3
		for k := 0; k < 3; k++ {
			p := b.Transform.Apply(b.animation.Vertex(current, next, 3*t+k, factor))
			b.Triangles[3*t+k] = p
			centroid = centroid.Add(p)
			aabb = aabb.Extend(p)
		}
		b.Centroids[t] = centroid.Mul(1.0 / 3.0)
	}
	b.AABB = aabb
}
