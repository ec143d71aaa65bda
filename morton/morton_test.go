package morton

import (
	"testing"

	"github.com/akmonengine/hlbvh/actor"
	"github.com/go-gl/mathgl/mgl32"
)

func TestExpandBits(t *testing.T) {
	tests := []struct {
		in, out uint32
	}{
		{0, 0},
		{1, 1},
		{0b11, 0b1001},
		{0b101, 0b1000001},
		{GridMax, 0x09249249},
		{0xFFFF, 0x09249249}, // bits above the grid are dropped
	}
	for _, tt := range tests {
		if got := ExpandBits(tt.in); got != tt.out {
			t.Errorf("ExpandBits(%b) = %b, want %b", tt.in, got, tt.out)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	if got := Encode(1, 0, 0); got != 0b100 {
		t.Errorf("Encode(1,0,0) = %b", got)
	}
	if got := Encode(0, 1, 0); got != 0b010 {
		t.Errorf("Encode(0,1,0) = %b", got)
	}
	if got := Encode(0, 0, 1); got != 0b001 {
		t.Errorf("Encode(0,0,1) = %b", got)
	}
	if got := Encode(GridMax, GridMax, GridMax); got != 1<<30-1 {
		t.Errorf("Encode(max) = %x, want 30 set bits", got)
	}

	for _, c := range [][3]uint32{{0, 0, 0}, {1, 2, 3}, {1023, 0, 511}, {77, 900, 1023}} {
		x, y, z := Decode(Encode(c[0], c[1], c[2]))
		if [3]uint32{x, y, z} != c {
			t.Errorf("Decode(Encode(%v)) = %v", c, [3]uint32{x, y, z})
		}
	}
}

func TestCode(t *testing.T) {
	bounds := actor.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	t.Run("corners map to grid extremes", func(t *testing.T) {
		if got := Code(bounds.Min, bounds); got != 0 {
			t.Errorf("min corner code = %x", got)
		}
		if got := Code(bounds.Max, bounds); got != 1<<30-1 {
			t.Errorf("max corner code = %x", got)
		}
	})

	t.Run("points outside the box are clamped", func(t *testing.T) {
		if got := Code(mgl32.Vec3{-5, -5, -5}, bounds); got != 0 {
			t.Errorf("below min code = %x", got)
		}
		if got := Code(mgl32.Vec3{5, 5, 5}, bounds); got != 1<<30-1 {
			t.Errorf("above max code = %x", got)
		}
	})

	t.Run("flat box axis collapses to zero", func(t *testing.T) {
		flat := actor.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 0}}
		x, y, z := Decode(Code(mgl32.Vec3{1, 1, 0}, flat))
		if x != GridMax || y != GridMax || z != 0 {
			t.Errorf("decoded = %d %d %d", x, y, z)
		}
	})

	t.Run("locality along x", func(t *testing.T) {
		a := Code(mgl32.Vec3{-0.9, 0, 0}, bounds)
		b := Code(mgl32.Vec3{0.9, 0, 0}, bounds)
		if a >= b {
			t.Errorf("expected code to grow along x: %x >= %x", a, b)
		}
	})
}

func TestGeneratePadding(t *testing.T) {
	centroids := []mgl32.Vec3{{0, 0, 0}, {1, 1, 1}, {0.5, 0.5, 0.5}}
	bounds := actor.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	keys := make([]uint32, 8)
	values := make([]uint32, 8)

	Generate(keys, values, centroids, len(centroids), bounds, 3)

	for i := range keys {
		if values[i] != uint32(i) {
			t.Errorf("values[%d] = %d", i, values[i])
		}
		if i >= len(centroids) && keys[i] != PaddingKey {
			t.Errorf("padding slot %d has key %x", i, keys[i])
		}
		if i < len(centroids) && keys[i] >= 1<<30 {
			t.Errorf("slot %d key %x exceeds 30 bits", i, keys[i])
		}
	}
	if keys[0] != 0 || keys[1] != 1<<30-1 {
		t.Errorf("unexpected extreme keys %x %x", keys[0], keys[1])
	}
}
