package actor

import "github.com/pkg/errors"

var (
	ErrNoKeyframes           = errors.New("actor: animation has no keyframes")
	ErrMalformedKeyframe     = errors.New("actor: keyframe vertex count is not a multiple of 3")
	ErrVariableTriangleCount = errors.New("actor: triangle count differs between keyframes")
	ErrIndexCount            = errors.New("actor: index buffer does not match triangle count")
	ErrIndexRange            = errors.New("actor: index buffer references a missing vertex")
)
