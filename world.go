// Package hlbvh detects contacts between animated triangle meshes.
//
// Every frame the bodies are animated, their root boxes are tested pairwise
// (broad phase), a linear BVH is built for each body of an overlapping pair
// and the leaves of one body are traversed through the tree of the other
// (narrow phase).
package hlbvh

import (
	"time"

	"github.com/akmonengine/hlbvh/actor"
	"github.com/akmonengine/hlbvh/bvh"
	"github.com/akmonengine/hlbvh/compute"
	"github.com/akmonengine/hlbvh/device"
	"github.com/akmonengine/hlbvh/log"
	"github.com/akmonengine/hlbvh/morton"
	"github.com/akmonengine/hlbvh/radix"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

var logger = log.New("hlbvh")

// World runs the per-frame collision pipeline over its bodies.
type World struct {
	// Bodies taking part in collision detection
	Bodies []*actor.Body
	Events Events

	config    Config
	device    device.Device
	strategy  radix.Strategy
	colliders map[*actor.Body]*collider

	pairFlags []uint32
	boxes     []actor.AABB
	stats     Stats
}

// NewWorld creates a world for the detected device. The sort strategy is
// resolved once here.
func NewWorld(config Config) (*World, error) {
	return NewWorldOn(device.Detect(), config)
}

// NewWorldOn creates a world running on the given device.
func NewWorldOn(dev device.Device, config Config) (*World, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.Workers = max(DEFAULT_WORKERS, config.Workers)

	strategy, _ := dev.Select(config.Sort)
	if config.Sort != device.Legacy && !dev.SupportsOneSweep() {
		logger.Warningf("device %s lacks subgroup operations, falling back to %s radix sort", dev.Name, strategy)
	}
	if !dev.LocalAtomics {
		logger.Warningf("device %s lacks local atomics, using subgroup histograms", dev.Name)
	}
	logger.Noticef("using %s radix sort with %d workers", strategy, config.Workers)

	return &World{
		Events:    NewEvents(),
		config:    config,
		device:    dev,
		strategy:  strategy,
		colliders: make(map[*actor.Body]*collider),
	}, nil
}

// Config returns the configuration the world runs with.
func (w *World) Config() Config {
	return w.config
}

// Strategy returns the radix sort strategy selected for the device.
func (w *World) Strategy() radix.Strategy {
	return w.strategy
}

// AddBody adds a body to the world. A body whose configuration is invalid is
// rejected and never takes part in collisions.
func (w *World) AddBody(body *actor.Body) error {
	if err := w.check(body); err != nil {
		logger.Errorf("rejected body: %v", err)
		return err
	}

	w.colliders[body] = newCollider(body, w.strategy, w.device.SortOptions(w.config.Workers), w.config.Visualize)
	w.Bodies = append(w.Bodies, body)
	return nil
}

// AddBodies adds every valid body and returns the errors of the rejected ones.
func (w *World) AddBodies(bodies ...*actor.Body) error {
	var err error
	for _, body := range bodies {
		err = multierr.Append(err, w.AddBody(body))
	}
	return err
}

func (w *World) check(body *actor.Body) error {
	if _, ok := w.colliders[body]; ok {
		return errors.Wrapf(ErrDuplicateBody, "body %q", body.Name)
	}
	n := body.TriangleCount()
	if n == 0 {
		return errors.Wrapf(ErrEmptyBody, "body %q", body.Name)
	}
	if n > w.config.MaxTriangles {
		return errors.Wrapf(ErrTooManyTriangles, "body %q: %d triangles, ceiling %d", body.Name, n, w.config.MaxTriangles)
	}
	return nil
}

// RemoveBody removes a body from the world
func (w *World) RemoveBody(body *actor.Body) error {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k == -1 {
		return errors.Wrapf(ErrUnknownBody, "body %q", body.Name)
	}
	w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	delete(w.colliders, body)
	w.Events.forget(body)
	return nil
}

// Step runs the collision pipeline for one frame, with every body blended
// factor of the way between keyframes current and next.
func (w *World) Step(current, next int, factor float32) error {
	stats := Stats{Frame: w.stats.Frame + 1, Bodies: len(w.Bodies)}

	// Phase 1: animation, contact state reset
	start := time.Now()
	w.animate(current, next, factor)
	stats.Animate = time.Since(start)

	// Phase 2: broad phase on the root boxes
	start = time.Now()
	pairs, implicated := w.broadPhase()
	stats.BroadPhase = time.Since(start)
	stats.CandidatePairs = len(pairs)
	stats.BodiesBuilt = len(implicated)

	// Phase 3: one sort, build and refit chain per implicated body
	start = time.Now()
	if err := w.build(implicated); err != nil {
		return err
	}
	stats.Build = time.Since(start)

	// Phase 4: narrow phase per candidate pair
	start = time.Now()
	for _, pair := range pairs {
		a, b := w.colliders[w.Bodies[pair.I]], w.colliders[w.Bodies[pair.J]]
		if narrowPhase(a, b, w.config.Visualize, w.config.Workers) {
			stats.CollidingPairs++
			w.Events.recordContact(a.body, b.body)
		}
	}
	if w.config.Visualize {
		for _, i := range implicated {
			w.colliders[w.Bodies[i]].accumulateTouched()
		}
	}
	stats.NarrowPhase = time.Since(start)

	w.stats = stats
	logger.Debugf("frame %d: %d bodies, %d candidate pairs, %d built, %d colliding in %s",
		stats.Frame, stats.Bodies, stats.CandidatePairs, stats.BodiesBuilt, stats.CollidingPairs, stats.Total())

	w.Events.flush()
	return nil
}

func (w *World) animate(current, next int, factor float32) {
	compute.Each(w.config.Workers, w.Bodies, func(body *actor.Body) {
		body.Update(current, next, factor)
		w.colliders[body].reset()
	})
}

func (w *World) broadPhase() ([]Pair, []int) {
	w.boxes = w.boxes[:0]
	for _, body := range w.Bodies {
		w.boxes = append(w.boxes, body.AABB)
	}
	if count := PairCount(len(w.boxes)); cap(w.pairFlags) < count {
		w.pairFlags = make([]uint32, count)
	}

	return BroadPhase(w.boxes, w.pairFlags, w.config.Workers)
}

// build runs the per-body chains concurrently. Within a chain every stage
// starts once the previous one returned.
func (w *World) build(implicated []int) error {
	var g errgroup.Group
	g.SetLimit(w.config.Workers)

	for _, i := range implicated {
		c := w.colliders[w.Bodies[i]]
		g.Go(func() error {
			return w.buildBody(c)
		})
	}
	return g.Wait()
}

func (w *World) buildBody(c *collider) error {
	body := c.body
	n := body.TriangleCount()
	workers := w.config.Workers

	morton.Generate(c.keys, c.values, body.Centroids, n, body.AABB, workers)
	if err := c.sorter.Sort(c.keys, c.values); err != nil {
		return errors.Wrapf(err, "body %q", body.Name)
	}
	bvh.Build(c.tree, c.keys, n, workers)
	c.tree.SetLeaves(c.values, body.Triangles, workers)
	bvh.Refit(c.tree, workers)

	if w.config.Debug {
		if err := bvh.Validate(c.tree); err != nil {
			return errors.Wrapf(err, "body %q", body.Name)
		}
	}
	return nil
}

// Collided reports whether body touched any other body during the last Step.
func (w *World) Collided(body *actor.Body) bool {
	c, ok := w.colliders[body]
	return ok && c.flag.Load() != 0
}

// Contacts describes the contact state of one body after a Step.
type Contacts struct {
	Collided bool

	// Contacting triangle pairs per triangle. Nil unless visualizing.
	Triangles []uint32
	// Adjacent contacting triangles per vertex. Nil unless visualizing.
	Vertices []uint32
}

// Contacts returns a copy of the contact buffers of body.
func (w *World) Contacts(body *actor.Body) (Contacts, error) {
	c, ok := w.colliders[body]
	if !ok {
		return Contacts{}, errors.Wrapf(ErrUnknownBody, "body %q", body.Name)
	}

	contacts := Contacts{Collided: c.flag.Load() != 0}
	if c.counts != nil {
		contacts.Triangles = make([]uint32, len(c.counts))
		for i := range c.counts {
			contacts.Triangles[i] = c.counts[i].Load()
		}
		contacts.Vertices = append([]uint32(nil), c.touched...)
	}
	return contacts, nil
}

// Stats returns the statistics of the last Step.
func (w *World) Stats() Stats {
	return w.stats
}
