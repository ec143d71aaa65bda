package hlbvh

import (
	"testing"

	"github.com/akmonengine/hlbvh/actor"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPairIndex_Bijection(t *testing.T) {
	for _, n := range []int{2, 3, 10, 257} {
		seen := make([]bool, PairCount(n))
		for j := 1; j < n; j++ {
			for i := 0; i < j; i++ {
				k := PairIndex(i, j)
				if k < 0 || k >= len(seen) {
					t.Fatalf("n=%d: index %d of pair (%d, %d) out of range", n, k, i, j)
				}
				if seen[k] {
					t.Fatalf("n=%d: index %d produced twice", n, k)
				}
				seen[k] = true

				gotI, gotJ := PairFromIndex(k)
				if gotI != i || gotJ != j {
					t.Fatalf("PairFromIndex(%d) = (%d, %d); want (%d, %d)", k, gotI, gotJ, i, j)
				}
			}
		}
	}
}

func TestPairFromIndex_Large(t *testing.T) {
	// Triangular numbers where the float square root is closest to rounding.
	for _, j := range []int{1 << 15, 1<<16 - 1, 92681, 1 << 20} {
		for _, i := range []int{0, j - 1} {
			k := PairIndex(i, j)
			gotI, gotJ := PairFromIndex(k)
			if gotI != i || gotJ != j {
				t.Errorf("PairFromIndex(%d) = (%d, %d); want (%d, %d)", k, gotI, gotJ, i, j)
			}
		}
	}
}

func TestPairCount(t *testing.T) {
	tests := map[int]int{0: 0, 1: 0, 2: 1, 3: 3, 5: 10}
	for n, want := range tests {
		if got := PairCount(n); got != want {
			t.Errorf("PairCount(%d) = %d; want %d", n, got, want)
		}
	}
}

func boxAt(x float32) actor.AABB {
	return actor.AABB{Min: mgl32.Vec3{x, 0, 0}, Max: mgl32.Vec3{x + 1, 1, 1}}
}

func TestBroadPhase(t *testing.T) {
	tests := []struct {
		name           string
		boxes          []actor.AABB
		wantPairs      []Pair
		wantImplicated []int
	}{
		{"no bodies", nil, []Pair{}, []int{}},
		{"single body", []actor.AABB{boxAt(0)}, []Pair{}, []int{}},
		{"far apart", []actor.AABB{boxAt(0), boxAt(1000)}, []Pair{}, []int{}},
		{"overlapping", []actor.AABB{boxAt(0), boxAt(0.5)}, []Pair{{0, 1}}, []int{0, 1}},
		{"touching", []actor.AABB{boxAt(0), boxAt(1)}, []Pair{{0, 1}}, []int{0, 1}},
		{
			"chain",
			[]actor.AABB{boxAt(0), boxAt(10), boxAt(0.5), boxAt(20), boxAt(10.5)},
			[]Pair{{0, 2}, {1, 4}},
			[]int{0, 2, 1, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := make([]uint32, PairCount(len(tt.boxes)))
			pairs, implicated := BroadPhase(tt.boxes, flags, 3)

			if diff := cmp.Diff(tt.wantPairs, pairs, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("pairs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantImplicated, implicated, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("implicated bodies mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
