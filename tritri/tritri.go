// Package tritri implements an exact triangle/triangle intersection predicate.
//
// The test follows Möller's interval overlap method: each triangle is first
// classified against the plane of the other one, and when both straddle the
// opposite plane their intervals on the line shared by the two planes are
// compared.
//
// References:
//   - Möller: "A Fast Triangle-Triangle Intersection Test" (1997)
package tritri

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon snaps near-zero signed distances to the other triangle's plane to
// exactly zero.
const Epsilon = 1e-6

type vec3 [3]float64

func toVec(v mgl32.Vec3) vec3 {
	return vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func (a vec3) sub(b vec3) vec3 {
	return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (a vec3) dot(b vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// interval is the unnormalized parametric interval of a triangle on the
// intersection line: a + b/x0 and a + c/x1 in projected coordinates.
type interval struct {
	a, b, c float64
	x0, x1  float64
}

// Intersects reports whether triangles t1 and t2 intersect. Coplanar pairs are
// reported as not intersecting.
func Intersects(t1, t2 [3]mgl32.Vec3) bool {
	v0, v1, v2 := toVec(t1[0]), toVec(t1[1]), toVec(t1[2])
	u0, u1, u2 := toVec(t2[0]), toVec(t2[1]), toVec(t2[2])

	// Plane of t1: n1.x + d1 = 0
	n1 := v1.sub(v0).cross(v2.sub(v0))
	d1 := -n1.dot(v0)

	du0 := snap(n1.dot(u0) + d1)
	du1 := snap(n1.dot(u1) + d1)
	du2 := snap(n1.dot(u2) + d1)
	du0du1 := du0 * du1
	du0du2 := du0 * du2

	// t2 lies strictly on one side of t1's plane
	if du0du1 > 0 && du0du2 > 0 {
		return false
	}

	// Plane of t2: n2.x + d2 = 0
	n2 := u1.sub(u0).cross(u2.sub(u0))
	d2 := -n2.dot(u0)

	dv0 := snap(n2.dot(v0) + d2)
	dv1 := snap(n2.dot(v1) + d2)
	dv2 := snap(n2.dot(v2) + d2)
	dv0dv1 := dv0 * dv1
	dv0dv2 := dv0 * dv2

	if dv0dv1 > 0 && dv0dv2 > 0 {
		return false
	}

	// Direction of the intersection line; project onto its dominant axis.
	d := n1.cross(n2)
	axis := dominantAxis(d)

	vp0, vp1, vp2 := v0[axis], v1[axis], v2[axis]
	up0, up1, up2 := u0[axis], u1[axis], u2[axis]

	i1, ok := computeInterval(vp0, vp1, vp2, dv0, dv1, dv2, dv0dv1, dv0dv2)
	if !ok {
		return false
	}
	i2, ok := computeInterval(up0, up1, up2, du0, du1, du2, du0du1, du0du2)
	if !ok {
		return false
	}

	xx := i1.x0 * i1.x1
	yy := i2.x0 * i2.x1
	xxyy := xx * yy

	tmp := i1.a * xxyy
	s1, e1 := sorted(tmp+i1.b*i1.x1*yy, tmp+i1.c*i1.x0*yy)

	tmp = i2.a * xxyy
	s2, e2 := sorted(tmp+i2.b*xx*i2.x1, tmp+i2.c*xx*i2.x0)

	return !(e1 < s2 || e2 < s1)
}

func snap(d float64) float64 {
	if math.Abs(d) < Epsilon {
		return 0
	}
	return d
}

func dominantAxis(d vec3) int {
	ax, ay, az := math.Abs(d[0]), math.Abs(d[1]), math.Abs(d[2])
	axis := 0
	best := ax
	if ay > best {
		axis, best = 1, ay
	}
	if az > best {
		axis = 2
	}
	return axis
}

// computeInterval selects the vertex isolated on its own side of the other
// plane and returns the interval description. The second result is false for
// the coplanar case.
func computeInterval(p0, p1, p2, d0, d1, d2, d0d1, d0d2 float64) (interval, bool) {
	switch {
	case d0d1 > 0:
		// d0 and d1 on the same side, d2 on the other side or on the plane
		return interval{a: p2, b: (p0 - p2) * d2, c: (p1 - p2) * d2, x0: d2 - d0, x1: d2 - d1}, true
	case d0d2 > 0:
		// d0 and d2 on the same side, d1 on the other side or on the plane
		return interval{a: p1, b: (p0 - p1) * d1, c: (p2 - p1) * d1, x0: d1 - d0, x1: d1 - d2}, true
	case d1*d2 > 0 || d0 != 0:
		// d1 and d2 on the same side or d0 is off the plane
		return interval{a: p0, b: (p1 - p0) * d0, c: (p2 - p0) * d0, x0: d0 - d1, x1: d0 - d2}, true
	case d1 != 0:
		return interval{a: p1, b: (p0 - p1) * d1, c: (p2 - p1) * d1, x0: d1 - d0, x1: d1 - d2}, true
	case d2 != 0:
		return interval{a: p2, b: (p0 - p2) * d2, c: (p1 - p2) * d2, x0: d2 - d0, x1: d2 - d1}, true
	}
	return interval{}, false
}

func sorted(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Coincident reports whether both triangles have exactly the same corners, in
// any order. Intersects rejects such pairs because they are coplanar.
func Coincident(t1, t2 [3]mgl32.Vec3) bool {
	var used [3]bool
	for _, v := range t1 {
		found := false
		for k, u := range t2 {
			if !used[k] && u == v {
				used[k] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
