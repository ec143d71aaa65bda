// Package compute is the scheduling substrate the collision kernels run on.
//
// It mirrors the data-parallel model of a GPU: Dispatch runs one logical
// thread per global id over a small pool of goroutines, and DispatchGroup runs
// a single work-group whose lanes can synchronise on a shared Barrier.
package compute

import "sync"

// DefaultWorkers is used whenever a caller asks for less than one worker.
const DefaultWorkers = 1

// Dispatch invokes fn once for every id in [0, n), splitting the range into
// contiguous chunks, one per worker. It returns once every invocation returned.
func Dispatch(workers, n int, fn func(id int)) {
	if n <= 0 {
		return
	}
	workers = max(DefaultWorkers, min(workers, n))
	if workers == 1 {
		for id := 0; id < n; id++ {
			fn(id)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for workerID := 0; workerID < workers; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, n)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for id := start; id < end; id++ {
				fn(id)
			}
		}(start, end)
	}
	wg.Wait()
}

// Each applies fn to every element of data using Dispatch.
func Each[T any](workers int, data []T, fn func(item T)) {
	Dispatch(workers, len(data), func(id int) {
		fn(data[id])
	})
}
