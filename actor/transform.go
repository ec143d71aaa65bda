package actor

import "github.com/go-gl/mathgl/mgl32"

// Transform represents a position in 3D space
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
	}
}

// Translation creates a transform that only moves points by position.
func Translation(position mgl32.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl32.QuatIdent()}
}

// Apply moves a point from mesh space into world space.
func (t Transform) Apply(point mgl32.Vec3) mgl32.Vec3 {
	// The zero quaternion is treated as identity so zero-value transforms are usable.
	if t.Rotation.W == 0 && t.Rotation.V == (mgl32.Vec3{}) {
		return point.Add(t.Position)
	}
	return t.Rotation.Rotate(point).Add(t.Position)
}
