package hlbvh

import "github.com/pkg/errors"

var (
	ErrTriangleCeiling = errors.New("hlbvh: invalid triangle ceiling")
	ErrSortPreference  = errors.New("hlbvh: invalid sort preference")

	ErrEmptyBody        = errors.New("hlbvh: body has no triangles")
	ErrTooManyTriangles = errors.New("hlbvh: body exceeds the triangle ceiling")
	ErrDuplicateBody    = errors.New("hlbvh: body already added")
	ErrUnknownBody      = errors.New("hlbvh: body not in world")
)
