package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []mgl32.Vec3
	Indices  []uint32 // [i0,i1,i2, ...] triangles
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangles expands the mesh into a flat triangle list.
func (m Mesh) Triangles() []mgl32.Vec3 {
	triangles := make([]mgl32.Vec3, len(m.Indices))
	for i, idx := range m.Indices {
		triangles[i] = m.Vertices[idx]
	}
	return triangles
}

// Scaled returns a copy of the mesh with every vertex scaled about the origin.
func (m Mesh) Scaled(factor float32) Mesh {
	vertices := make([]mgl32.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = v.Mul(factor)
	}
	return Mesh{Vertices: vertices, Indices: m.Indices}
}

// Cube returns an axis-aligned cube of the given edge length centered on the
// origin: 8 vertices, 12 triangles.
func Cube(size float32) Mesh {
	h := size / 2
	vertices := make([]mgl32.Vec3, 8)
	for i := range vertices {
		vertices[i] = mgl32.Vec3{
			float32(i&1)*size - h,
			float32(i>>1&1)*size - h,
			float32(i>>2&1)*size - h,
		}
	}

	return Mesh{
		Vertices: vertices,
		Indices: []uint32{
			0, 4, 6, 0, 6, 2, // -x
			1, 3, 7, 1, 7, 5, // +x
			0, 1, 5, 0, 5, 4, // -y
			2, 6, 7, 2, 7, 3, // +y
			0, 2, 3, 0, 3, 1, // -z
			4, 5, 7, 4, 7, 6, // +z
		},
	}
}

// Sphere returns a UV sphere centered on the origin. rings counts the
// latitude bands and segments the longitude slices.
func Sphere(radius float32, rings, segments int) Mesh {
	rings, segments = max(rings, 2), max(segments, 3)

	var m Mesh
	// Poles are shared by their fan of triangles.
	m.Vertices = append(m.Vertices, mgl32.Vec3{0, radius, 0})
	for r := 1; r < rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s < segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			m.Vertices = append(m.Vertices, mgl32.Vec3{
				radius * float32(math.Sin(theta)*math.Cos(phi)),
				radius * float32(math.Cos(theta)),
				radius * float32(math.Sin(theta)*math.Sin(phi)),
			})
		}
	}
	south := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, mgl32.Vec3{0, -radius, 0})

	ring := func(r, s int) uint32 {
		return uint32(1 + (r-1)*segments + s%segments)
	}
	for s := 0; s < segments; s++ {
		m.Indices = append(m.Indices, 0, ring(1, s+1), ring(1, s))
	}
	for r := 1; r < rings-1; r++ {
		for s := 0; s < segments; s++ {
			m.Indices = append(m.Indices,
				ring(r, s), ring(r, s+1), ring(r+1, s+1),
				ring(r, s), ring(r+1, s+1), ring(r+1, s),
			)
		}
	}
	for s := 0; s < segments; s++ {
		m.Indices = append(m.Indices, south, ring(rings-1, s), ring(rings-1, s+1))
	}
	return m
}

// NewMeshBody creates a body animated through keyframe meshes sharing the
// topology of the first one.
func NewMeshBody(name string, transform Transform, keyframes ...Mesh) (*Body, error) {
	if len(keyframes) == 0 {
		return nil, errors.Wrapf(ErrNoKeyframes, "body %q", name)
	}

	frames := make([][]mgl32.Vec3, len(keyframes))
	for i, mesh := range keyframes {
		frames[i] = mesh.Triangles()
	}
	animation, err := NewAnimation(frames...)
	if err != nil {
		return nil, errors.Wrapf(err, "body %q", name)
	}

	body := NewBody(name, animation, transform)
	if err := body.SetIndices(keyframes[0].Indices, keyframes[0].VertexCount()); err != nil {
		return nil, err
	}
	return body, nil
}
