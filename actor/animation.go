package actor

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Animation holds the keyframes of an animated mesh. Every keyframe is a flat
// triangle list (3 vertices per triangle) and all keyframes share the same
// triangle count.
type Animation struct {
	keyframes     [][]mgl32.Vec3
	triangleCount int
}

// NewAnimation validates the keyframes and returns the animation.
func NewAnimation(keyframes ...[]mgl32.Vec3) (*Animation, error) {
	if len(keyframes) == 0 {
		return nil, ErrNoKeyframes
	}

	triangleCount := -1
	for frame, vertices := range keyframes {
		if len(vertices)%3 != 0 {
			return nil, errors.Wrapf(ErrMalformedKeyframe, "keyframe %d has %d vertices", frame, len(vertices))
		}
		if triangleCount == -1 {
			triangleCount = len(vertices) / 3
			continue
		}
		if len(vertices)/3 != triangleCount {
			return nil, errors.Wrapf(ErrVariableTriangleCount,
				"keyframe %d has %d triangles, keyframe 0 has %d", frame, len(vertices)/3, triangleCount)
		}
	}

	return &Animation{
		keyframes:     keyframes,
		triangleCount: triangleCount,
	}, nil
}

// FrameCount returns the number of keyframes.
func (a *Animation) FrameCount() int {
	return len(a.keyframes)
}

// TriangleCount returns the triangle count shared by every keyframe.
func (a *Animation) TriangleCount() int {
	return a.triangleCount
}

// Vertex returns the blend of vertex v between keyframes current and next.
// Frame indices wrap around the keyframe count.
func (a *Animation) Vertex(current, next, v int, factor float32) mgl32.Vec3 {
	from := a.keyframes[wrap(current, len(a.keyframes))][v]
	to := a.keyframes[wrap(next, len(a.keyframes))][v]
	if factor == 0 {
		return from
	}
	return from.Add(to.Sub(from).Mul(factor))
}

func wrap(frame, count int) int {
	frame %= count
	if frame < 0 {
		frame += count
	}
	return frame
}
