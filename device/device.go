// Package device describes the compute device the collision kernels run on
// and resolves the radix sort strategy from its capabilities.
package device

import (
	"fmt"
	"runtime"

	"github.com/akmonengine/hlbvh/radix"
	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"
)

// Preference is the sort strategy requested by the configuration.
type Preference uint8

// Supported sort preferences.
const (
	Auto Preference = iota
	Legacy
	OneSweep
)

func (p Preference) String() string {
	switch p {
	case Auto:
		return "auto"
	case Legacy:
		return "legacy"
	case OneSweep:
		return "onesweep"
	}
	return fmt.Sprintf("Preference(%d)", p)
}

// ParsePreference converts a preference name to its value.
func ParsePreference(name string) (Preference, error) {
	switch name {
	case "auto", "":
		return Auto, nil
	case "legacy":
		return Legacy, nil
	case "onesweep":
		return OneSweep, nil
	}
	return Auto, errors.Errorf("device: unknown sort preference %q", name)
}

// Device lists the capabilities that matter to the sort and traversal kernels.
type Device struct {
	Name         string
	ComputeUnits int

	// SIMD width a subgroup ballot covers.
	SubgroupSize int

	// Group-local atomic counters are available.
	LocalAtomics bool

	// Subgroup ballot/popcount operations are available.
	SubgroupOps bool

	// Scatter writes can be compacted within a subgroup.
	ScatterCompaction bool
}

// Implements Stringer.
func (d Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nSpecs: %d compute units, subgroup size %d, local atomics %t, subgroup ops %t, scatter compaction %t",
		d.Name,
		d.ComputeUnits,
		d.SubgroupSize,
		d.LocalAtomics,
		d.SubgroupOps,
		d.ScatterCompaction,
	)
}

// SupportsOneSweep reports whether the device can run the OneSweep sort.
func (d Device) SupportsOneSweep() bool {
	return d.SubgroupOps && d.ScatterCompaction && d.SubgroupSize >= radix.SubgroupSize
}

// Detect inspects the host processor.
func Detect() Device {
	d := Device{
		Name:         fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		ComputeUnits: runtime.NumCPU(),
		SubgroupSize: radix.SubgroupSize,
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		d.SubgroupOps = cpu.X86.HasPOPCNT
		d.LocalAtomics = true
		d.ScatterCompaction = cpu.X86.HasAVX2
	case "arm64":
		d.SubgroupOps = cpu.ARM64.HasASIMD
		d.LocalAtomics = cpu.ARM64.HasATOMICS
		d.ScatterCompaction = cpu.ARM64.HasASIMD
	default:
		d.LocalAtomics = true
	}
	return d
}

// Select resolves the sort strategy for the preference. Auto picks OneSweep
// when the device supports it. A forced OneSweep on a device that lacks the
// required operations falls back to Legacy and reports downgraded.
func (d Device) Select(pref Preference) (strategy radix.Strategy, downgraded bool) {
	switch pref {
	case Legacy:
		return radix.Legacy, false
	case OneSweep:
		if d.SupportsOneSweep() {
			return radix.OneSweep, false
		}
		return radix.Legacy, true
	default:
		if d.SupportsOneSweep() {
			return radix.OneSweep, false
		}
		return radix.Legacy, false
	}
}

// SortOptions returns the radix options matching the device.
func (d Device) SortOptions(workers int) radix.Options {
	return radix.Options{
		Workers:      workers,
		LocalAtomics: d.LocalAtomics,
	}
}
