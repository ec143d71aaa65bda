package tritri

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func tri(a, b, c mgl32.Vec3) [3]mgl32.Vec3 {
	return [3]mgl32.Vec3{a, b, c}
}

func translate(t [3]mgl32.Vec3, offset mgl32.Vec3) [3]mgl32.Vec3 {
	return tri(t[0].Add(offset), t[1].Add(offset), t[2].Add(offset))
}

// Lies in the z=0 plane.
var flat = tri(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 0, 0}, mgl32.Vec3{0, 2, 0})

// Lies in the y=0.5 plane and crosses z=0 for x in [-0.25, 1.25].
var upright = tri(mgl32.Vec3{-1, 0.5, -1}, mgl32.Vec3{2, 0.5, -1}, mgl32.Vec3{0.5, 0.5, 1})

func TestIntersects(t *testing.T) {
	tests := []struct {
		name     string
		t1, t2   [3]mgl32.Vec3
		expected bool
	}{
		{"crossing triangles", flat, upright, true},
		{"above the plane", flat, translate(upright, mgl32.Vec3{0, 0, 5}), false},
		{"below the plane", flat, translate(upright, mgl32.Vec3{0, 0, -5}), false},
		{"planes cross but intervals are disjoint", flat, translate(upright, mgl32.Vec3{10, 0, 0}), false},
		{"crossing outside the hypotenuse", flat, translate(upright, mgl32.Vec3{0, 2, 0}), false},
		{
			"vertex piercing the interior",
			flat,
			tri(mgl32.Vec3{0.5, 0.5, -1}, mgl32.Vec3{0.5, 0.5, 1}, mgl32.Vec3{0.6, 0.4, 1}),
			true,
		},
		{
			"touching at a vertex on the plane",
			flat,
			tri(mgl32.Vec3{0.5, 0.5, 0}, mgl32.Vec3{0.5, 0.5, 1}, mgl32.Vec3{0.6, 0.4, 1}),
			true,
		},
		{"coplanar overlapping", flat, translate(flat, mgl32.Vec3{0.5, 0.5, 0}), false},
		{"identical", flat, flat, false},
		{"parallel planes", flat, translate(flat, mgl32.Vec3{0, 0, 1}), false},
		{
			"degenerate triangle",
			flat,
			tri(mgl32.Vec3{0.5, 0.5, -1}, mgl32.Vec3{0.5, 0.5, 1}, mgl32.Vec3{0.5, 0.5, 1}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersects(tt.t1, tt.t2); got != tt.expected {
				t.Errorf("Intersects = %v, expected %v", got, tt.expected)
			}
			if got := Intersects(tt.t2, tt.t1); got != tt.expected {
				t.Errorf("Intersects (swapped) = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestIntersectsSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomVec := func() mgl32.Vec3 {
		return mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
	}

	hits := 0
	for i := 0; i < 5000; i++ {
		a := tri(randomVec(), randomVec(), randomVec())
		b := tri(randomVec(), randomVec(), randomVec())

		ab := Intersects(a, b)
		if ab != Intersects(b, a) {
			t.Fatalf("asymmetric result for %v / %v", a, b)
		}
		if ab {
			hits++
		}
	}

	// Random triangles in the same cube intersect often enough that both
	// branches are exercised.
	if hits == 0 || hits == 5000 {
		t.Errorf("unexpected hit count %d", hits)
	}
}

func TestCoincident(t *testing.T) {
	if !Coincident(flat, flat) {
		t.Error("a triangle should coincide with itself")
	}
	if !Coincident(flat, tri(flat[2], flat[0], flat[1])) {
		t.Error("vertex order should not matter")
	}
	if Coincident(flat, translate(flat, mgl32.Vec3{0, 0, 1e-3})) {
		t.Error("translated triangle should not coincide")
	}
	degenerate := tri(flat[0], flat[0], flat[1])
	if Coincident(degenerate, flat) || Coincident(flat, degenerate) {
		t.Error("repeated corners must be matched one to one")
	}
}
