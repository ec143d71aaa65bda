// Package radix sorts (key, value) pairs by their full 32-bit key.
//
// Two interchangeable strategies are provided. Legacy performs 32 stable one-bit
// partitions using per-group zero counts and a single work-group scan. OneSweep
// performs four 8-bit digit passes, each made of an upsweep (partition digit
// histograms), a scan and a downsweep that ranks keys inside 32-wide SIMD
// groups with ballot/popcount and scatters them to their final position.
//
// Both strategies are stable and leave the sorted result in the caller's
// buffers. Scratch memory is allocated once, for the capacity given to New.
package radix

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrCapacity   = errors.New("radix: input exceeds sorter capacity")
	ErrUnaligned  = errors.New("radix: input length is not padded to the sorter alignment")
	ErrValueRange = errors.New("radix: value does not fit in 16 bits")
	ErrMismatch   = errors.New("radix: key and value buffers differ in length")
)

// Strategy selects a sort implementation.
type Strategy uint8

const (
	Legacy Strategy = iota
	OneSweep
)

func (s Strategy) String() string {
	switch s {
	case Legacy:
		return "legacy"
	case OneSweep:
		return "onesweep"
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

// ParseStrategy converts a strategy name back to its value.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "legacy":
		return Legacy, nil
	case "onesweep":
		return OneSweep, nil
	}
	return 0, errors.Errorf("radix: unknown strategy %q", name)
}

// The Sorter interface is implemented by both sort strategies.
type Sorter interface {
	// Strategy returns the algorithm implemented by the sorter.
	Strategy() Strategy

	// PaddedLen returns the buffer length the sorter expects for n entries.
	// Slots past n must be filled with keys that sort last.
	PaddedLen(n int) int

	// Sort stably sorts keys in ascending order, applying the same
	// permutation to values.
	Sort(keys, values []uint32) error
}

// Options tune the scheduling of a sorter.
type Options struct {
	// Number of goroutines used by the per-group kernels.
	Workers int

	// Use group-local atomic counters for the OneSweep histograms. When false
	// the ballot/shuffle variant is used instead.
	LocalAtomics bool
}

// New allocates a sorter able to sort up to capacity entries.
func New(strategy Strategy, capacity int, opts Options) Sorter {
	switch strategy {
	case OneSweep:
		return newOneSweep(capacity, opts)
	default:
		return newLegacy(capacity, opts)
	}
}

func roundUp(n, multiple int) int {
	return (n + multiple - 1) / multiple * multiple
}

func checkBuffers(keys, values []uint32, capacity int) error {
	if len(keys) != len(values) {
		return ErrMismatch
	}
	if len(keys) > capacity {
		return errors.Wrapf(ErrCapacity, "%d entries, capacity %d", len(keys), capacity)
	}
	return nil
}
