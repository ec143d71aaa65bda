package hlbvh

import (
	"math"

	"github.com/akmonengine/hlbvh/actor"
	"github.com/akmonengine/hlbvh/compute"
	"github.com/samber/lo"
)

// Pair holds the indices of two bodies, I < J.
type Pair struct {
	I, J int
}

// PairCount returns the number of unordered pairs of n bodies.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// PairIndex maps the pair (i, j), i < j, to its linear index.
func PairIndex(i, j int) int {
	return j*(j-1)/2 + i
}

// PairFromIndex is the inverse of PairIndex.
func PairFromIndex(k int) (i, j int) {
	j = int((1 + math.Sqrt(1+8*float64(k))) / 2)
	// Float rounding can land one off for large k.
	for j*(j-1)/2 > k {
		j--
	}
	for (j+1)*j/2 <= k {
		j++
	}
	return k - j*(j-1)/2, j
}

// BroadPhase tests the root boxes of every pair of bodies, one task per
// linear pair index. flags must hold PairCount(len(boxes)) entries; it is
// overwritten. It returns the overlapping pairs and the bodies they involve.
func BroadPhase(boxes []actor.AABB, flags []uint32, workers int) ([]Pair, []int) {
	flags = flags[:PairCount(len(boxes))]

	compute.Dispatch(workers, len(flags), func(k int) {
		i, j := PairFromIndex(k)
		flags[k] = 0
		if boxes[i].Overlaps(boxes[j]) {
			flags[k] = 1
		}
	})

	pairs := lo.FilterMap(flags, func(flag uint32, k int) (Pair, bool) {
		i, j := PairFromIndex(k)
		return Pair{I: i, J: j}, flag != 0
	})
	implicated := lo.Uniq(lo.FlatMap(pairs, func(p Pair, _ int) []int {
		return []int{p.I, p.J}
	}))

	return pairs, implicated
}
