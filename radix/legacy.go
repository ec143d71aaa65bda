package radix

import (
	"github.com/akmonengine/hlbvh/compute"
	"github.com/pkg/errors"
)

const (
	// Number of fixed groups the array is split into for every bit pass.
	legacyGroups = 256

	// Input length must be a multiple of this value so that every group
	// owns an equal, non-empty slice. It is derived from the group count.
	legacyAlignment = legacyGroups

	keyBits = 32
)

type legacySorter struct {
	workers  int
	capacity int

	altKeys   []uint32
	altValues []uint32

	zeros       []uint32
	zeroOffsets []uint32
	scanTmp     []uint32
}

func newLegacy(capacity int, opts Options) *legacySorter {
	s := &legacySorter{
		workers:     max(compute.DefaultWorkers, opts.Workers),
		zeros:       make([]uint32, legacyGroups),
		zeroOffsets: make([]uint32, legacyGroups),
		scanTmp:     make([]uint32, legacyGroups),
	}
	s.capacity = s.PaddedLen(capacity)
	s.altKeys = make([]uint32, s.capacity)
	s.altValues = make([]uint32, s.capacity)
	return s
}

func (s *legacySorter) Strategy() Strategy {
	return Legacy
}

func (s *legacySorter) PaddedLen(n int) int {
	return roundUp(n, legacyAlignment)
}

// Sort runs one stable partition per key bit, least significant first.
// The buffers ping-pong between the caller's arrays and the scratch arrays;
// with an even number of passes the result ends in the caller's arrays.
func (s *legacySorter) Sort(keys, values []uint32) error {
	if err := checkBuffers(keys, values, s.capacity); err != nil {
		return err
	}
	n := len(keys)
	if n == 0 {
		return nil
	}
	if n%legacyAlignment != 0 {
		return errors.Wrapf(ErrUnaligned, "length %d, alignment %d", n, legacyAlignment)
	}

	sliceLen := n / legacyGroups
	srcKeys, srcValues := keys, values
	dstKeys, dstValues := s.altKeys[:n], s.altValues[:n]

	for bit := 0; bit < keyBits; bit++ {
		s.countZeros(srcKeys, bit, sliceLen)
		totalZeros := exclusiveScan(s.zeros, s.zeroOffsets, s.scanTmp)
		s.split(srcKeys, srcValues, dstKeys, dstValues, bit, sliceLen, totalZeros)

		srcKeys, dstKeys = dstKeys, srcKeys
		srcValues, dstValues = dstValues, srcValues
	}
	return nil
}

// countZeros counts, per group, the keys of its slice with the bit clear.
func (s *legacySorter) countZeros(keys []uint32, bit, sliceLen int) {
	compute.Dispatch(s.workers, legacyGroups, func(group int) {
		var count uint32
		for _, key := range keys[group*sliceLen : (group+1)*sliceLen] {
			if (key>>bit)&1 == 0 {
				count++
			}
		}
		s.zeros[group] = count
	})
}

// split scatters every group's slice into the bit-clear partition followed by
// the bit-set partition, preserving the relative order inside each partition.
func (s *legacySorter) split(srcKeys, srcValues, dstKeys, dstValues []uint32, bit, sliceLen int, totalZeros uint32) {
	compute.Dispatch(s.workers, legacyGroups, func(group int) {
		zeroPos := s.zeroOffsets[group]
		// Entries with the bit set that precede this group: all entries of the
		// previous groups minus their zeros.
		onePos := totalZeros + uint32(group*sliceLen) - s.zeroOffsets[group]

		start := group * sliceLen
		for i := start; i < start+sliceLen; i++ {
			key := srcKeys[i]
			if (key>>bit)&1 == 0 {
				dstKeys[zeroPos] = key
				dstValues[zeroPos] = srcValues[i]
				zeroPos++
			} else {
				dstKeys[onePos] = key
				dstValues[onePos] = srcValues[i]
				onePos++
			}
		}
	})
}
