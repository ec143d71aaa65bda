package hlbvh

import (
	"github.com/akmonengine/hlbvh/device"
	"github.com/pkg/errors"
)

const DEFAULT_WORKERS = 1

// MAX_TRIANGLES is the largest triangle count a body may have. Traversal
// stacks and sorted triangle ids are 16 bits wide.
const MAX_TRIANGLES = 1<<16 - 1

// Config holds the knobs of a World. They are read once by NewWorld.
type Config struct {
	// Number of goroutines used by every kernel.
	Workers int

	// Triangle ceiling per body, at most MAX_TRIANGLES.
	MaxTriangles int

	// Radix sort strategy; Auto lets the device decide.
	Sort device.Preference

	// Count contacts per triangle and per vertex. Without it the narrow phase
	// stops a pair as soon as both bodies are known to collide.
	Visualize bool

	// Validate every tree after it is built.
	Debug bool
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Workers:      DEFAULT_WORKERS,
		MaxTriangles: MAX_TRIANGLES,
		Sort:         device.Auto,
	}
}

func (c Config) validate() error {
	if c.MaxTriangles < 1 || c.MaxTriangles > MAX_TRIANGLES {
		return errors.Wrapf(ErrTriangleCeiling, "%d not in [1, %d]", c.MaxTriangles, MAX_TRIANGLES)
	}
	if c.Sort > device.OneSweep {
		return errors.Wrapf(ErrSortPreference, "%d", c.Sort)
	}
	return nil
}
