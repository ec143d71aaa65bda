package compute

import "sync"

// Barrier is a reusable group-wide barrier: every lane of the group must call
// Wait before any of them proceeds. It may be reused for any number of phases.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	size       int
	arrived    int
	generation uint64
}

// NewBarrier creates a barrier for a group of size lanes.
func NewBarrier(size int) *Barrier {
	b := &Barrier{size: size}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all lanes of the group reached the barrier.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	generation := b.generation
	b.arrived++
	if b.arrived == b.size {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return
	}

	for generation == b.generation {
		b.cond.Wait()
	}
}

// DispatchGroup runs a single work-group of size lanes concurrently. Lanes
// share the barrier passed to fn.
func DispatchGroup(size int, fn func(lane int, barrier *Barrier)) {
	if size <= 0 {
		return
	}

	barrier := NewBarrier(size)
	var wg sync.WaitGroup
	wg.Add(size)
	for lane := 0; lane < size; lane++ {
		go func(lane int) {
			defer wg.Done()
			fn(lane, barrier)
		}(lane)
	}
	wg.Wait()
}
