package radix

import (
	"math/bits"

	"github.com/akmonengine/hlbvh/compute"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

const (
	// SubgroupSize is the SIMD width the downsweep ranking is written for.
	SubgroupSize = 32

	// MaxValue is the largest value OneSweep carries along with a key.
	MaxValue = 1<<16 - 1

	digitBits   = 8
	radixSize   = 1 << digitBits
	digitMask   = radixSize - 1
	digitPasses = keyBits / digitBits

	subgroupsPerPartition = 8
	partitionSize         = SubgroupSize * subgroupsPerPartition
)

type oneSweepSorter struct {
	workers      int
	localAtomics bool
	capacity     int

	altKeys   []uint32
	altValues []uint32

	// Histogram of every digit position, filled during the first upsweep.
	globalHist    [digitPasses * radixSize]atomic.Uint32
	globalOffsets [radixSize]uint32
	scanTmp       [radixSize]uint32

	// Per partition digit counts of the current pass and their exclusive
	// prefix across partitions.
	partitionHist    []uint32
	partitionOffsets []uint32

	// Group-local counters of the atomic histogram variant, one set per
	// partition so partitions can run concurrently.
	localHist []atomic.Uint32
	// Per-subgroup private histograms of the shuffle variant.
	subgroupHist []uint32
}

func newOneSweep(capacity int, opts Options) *oneSweepSorter {
	s := &oneSweepSorter{
		workers:      max(compute.DefaultWorkers, opts.Workers),
		localAtomics: opts.LocalAtomics,
	}
	s.capacity = s.PaddedLen(capacity)
	partitions := s.capacity / partitionSize

	s.altKeys = make([]uint32, s.capacity)
	s.altValues = make([]uint32, s.capacity)
	s.partitionHist = make([]uint32, partitions*radixSize)
	s.partitionOffsets = make([]uint32, partitions*radixSize)
	if s.localAtomics {
		s.localHist = make([]atomic.Uint32, partitions*digitPasses*radixSize)
	} else {
		s.subgroupHist = make([]uint32, partitions*subgroupsPerPartition*digitPasses*radixSize)
	}
	return s
}

func (s *oneSweepSorter) Strategy() Strategy {
	return OneSweep
}

func (s *oneSweepSorter) PaddedLen(n int) int {
	return roundUp(n, partitionSize)
}

func digit(key uint32, pass int) uint32 {
	return (key >> (pass * digitBits)) & digitMask
}

// Sort runs four digit passes for the shifts 0, 8, 16 and 24.
func (s *oneSweepSorter) Sort(keys, values []uint32) error {
	if err := checkBuffers(keys, values, s.capacity); err != nil {
		return err
	}
	n := len(keys)
	if n == 0 {
		return nil
	}
	for i, v := range values {
		if v > MaxValue {
			return errors.Wrapf(ErrValueRange, "value %d at slot %d", v, i)
		}
	}

	for i := range s.globalHist {
		s.globalHist[i].Store(0)
	}

	partitions := (n + partitionSize - 1) / partitionSize
	srcKeys, srcValues := keys, values
	dstKeys, dstValues := s.altKeys[:n], s.altValues[:n]

	for pass := 0; pass < digitPasses; pass++ {
		s.upsweep(srcKeys, pass, partitions)
		s.scan(pass, partitions)
		s.downsweep(srcKeys, srcValues, dstKeys, dstValues, pass, partitions)

		srcKeys, dstKeys = dstKeys, srcKeys
		srcValues, dstValues = dstValues, srcValues
	}
	return nil
}

// partitionKeys returns the keys owned by subgroup sg of partition p.
func partitionKeys(keys []uint32, p, sg int) []uint32 {
	start := min(p*partitionSize+sg*SubgroupSize, len(keys))
	end := min(start+SubgroupSize, len(keys))
	return keys[start:end]
}

// upsweep computes the digit histogram of every partition for the current
// pass. The first pass also accumulates the global histogram of all four
// digit positions.
func (s *oneSweepSorter) upsweep(keys []uint32, pass, partitions int) {
	// Digit positions counted by this pass.
	positions := 1
	if pass == 0 {
		positions = digitPasses
	}

	compute.Dispatch(s.workers, partitions, func(p int) {
		if s.localAtomics {
			s.upsweepAtomic(keys, pass, positions, p)
		} else {
			s.upsweepShuffle(keys, pass, positions, p)
		}
	})
}

// upsweepAtomic runs the partition as one work-group whose subgroups bump
// shared group-local counters.
func (s *oneSweepSorter) upsweepAtomic(keys []uint32, pass, positions, p int) {
	local := s.localHist[p*digitPasses*radixSize : (p+1)*digitPasses*radixSize]

	compute.DispatchGroup(subgroupsPerPartition, func(sg int, barrier *compute.Barrier) {
		for _, key := range partitionKeys(keys, p, sg) {
			for pos := 0; pos < positions; pos++ {
				local[pos*radixSize+int(digit(key, pass+pos))].Inc()
			}
		}
		barrier.Wait()

		// Each subgroup flushes a contiguous share of the digits.
		for d := sg * radixSize / subgroupsPerPartition; d < (sg+1)*radixSize/subgroupsPerPartition; d++ {
			s.partitionHist[p*radixSize+d] = local[d].Load()
			for pos := 0; pos < positions; pos++ {
				if count := local[pos*radixSize+d].Swap(0); count > 0 && positions > 1 {
					s.globalHist[(pass+pos)*radixSize+d].Add(count)
				}
			}
		}
	})
}

// upsweepShuffle builds a private histogram per subgroup without local
// atomics: within a subgroup only the lowest lane of every group of
// equal-digit lanes writes, adding the population count of its match mask.
func (s *oneSweepSorter) upsweepShuffle(keys []uint32, pass, positions, p int) {
	const histSize = digitPasses * radixSize
	private := s.subgroupHist[p*subgroupsPerPartition*histSize : (p+1)*subgroupsPerPartition*histSize]

	compute.DispatchGroup(subgroupsPerPartition, func(sg int, barrier *compute.Barrier) {
		hist := private[sg*histSize : (sg+1)*histSize]
		clear(hist)

		lanes := partitionKeys(keys, p, sg)
		for pos := 0; pos < positions; pos++ {
			for lane, key := range lanes {
				d := digit(key, pass+pos)
				mask := ballot(len(lanes), func(other int) bool {
					return digit(lanes[other], pass+pos) == d
				})
				if bits.TrailingZeros32(mask) == lane {
					hist[pos*radixSize+int(d)] += uint32(bits.OnesCount32(mask))
				}
			}
		}
		barrier.Wait()

		for d := sg * radixSize / subgroupsPerPartition; d < (sg+1)*radixSize/subgroupsPerPartition; d++ {
			for pos := 0; pos < positions; pos++ {
				var count uint32
				for other := 0; other < subgroupsPerPartition; other++ {
					count += private[other*histSize+pos*radixSize+d]
				}
				if pos == 0 {
					s.partitionHist[p*radixSize+d] = count
				}
				if positions > 1 && count > 0 {
					s.globalHist[(pass+pos)*radixSize+d].Add(count)
				}
			}
		}
	})
}

// scan turns the partition histograms into per-partition digit offsets and
// the global histogram of the pass into digit base offsets. One lane per
// digit.
func (s *oneSweepSorter) scan(pass, partitions int) {
	compute.DispatchGroup(radixSize, func(d int, barrier *compute.Barrier) {
		var running uint32
		for p := 0; p < partitions; p++ {
			s.partitionOffsets[p*radixSize+d] = running
			running += s.partitionHist[p*radixSize+d]
		}

		count := s.globalHist[pass*radixSize+d].Load()
		s.scanTmp[d] = count
		inclusiveScanLane(d, s.scanTmp[:], barrier)
		s.globalOffsets[d] = s.scanTmp[d] - count
	})
}

// downsweep ranks the keys of every partition and scatters them. Subgroups of
// a partition are processed in order; inside a subgroup the rank of a lane is
// the number of lower lanes sharing its digit.
func (s *oneSweepSorter) downsweep(srcKeys, srcValues, dstKeys, dstValues []uint32, pass, partitions int) {
	compute.Dispatch(s.workers, partitions, func(p int) {
		var offsets [radixSize]uint32
		for d := range offsets {
			offsets[d] = s.globalOffsets[d] + s.partitionOffsets[p*radixSize+d]
		}

		var dest [SubgroupSize]uint32
		for sg := 0; sg < subgroupsPerPartition; sg++ {
			lanes := partitionKeys(srcKeys, p, sg)
			if len(lanes) == 0 {
				break
			}
			base := p*partitionSize + sg*SubgroupSize

			// Lanes compute their destination in lockstep, then the leader of
			// every digit advances the running offset.
			var advance [SubgroupSize]uint32
			for lane, key := range lanes {
				d := digit(key, pass)
				mask := ballot(len(lanes), func(other int) bool {
					return digit(lanes[other], pass) == d
				})
				below := mask & (1<<uint(lane) - 1)
				dest[lane] = offsets[d] + uint32(bits.OnesCount32(below))
				if below == 0 {
					advance[lane] = uint32(bits.OnesCount32(mask))
				}
			}
			for lane, key := range lanes {
				if advance[lane] > 0 {
					offsets[digit(key, pass)] += advance[lane]
				}
			}

			for lane, key := range lanes {
				dstKeys[dest[lane]] = key
				dstValues[dest[lane]] = srcValues[base+lane]
			}
		}
	})
}

// ballot returns the mask of the active lanes for which pred holds.
func ballot(active int, pred func(lane int) bool) uint32 {
	var mask uint32
	for lane := 0; lane < active; lane++ {
		if pred(lane) {
			mask |= 1 << uint(lane)
		}
	}
	return mask
}
