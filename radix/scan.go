package radix

import "github.com/akmonengine/hlbvh/compute"

// inclusiveScanLane runs one lane's share of a Hillis-Steele inclusive scan
// over buf, which holds one element per lane. Every lane of the group must
// call it; buf must be fully written before the call.
func inclusiveScanLane(lane int, buf []uint32, barrier *compute.Barrier) {
	barrier.Wait()
	for offset := 1; offset < len(buf); offset <<= 1 {
		v := buf[lane]
		if lane >= offset {
			v += buf[lane-offset]
		}
		barrier.Wait()
		buf[lane] = v
		barrier.Wait()
	}
}

// exclusiveScan writes the exclusive prefix sum of in to out with a single
// work-group of len(in) lanes and returns the total. tmp must be as long as in.
func exclusiveScan(in, out, tmp []uint32) uint32 {
	compute.DispatchGroup(len(in), func(lane int, barrier *compute.Barrier) {
		tmp[lane] = in[lane]
		inclusiveScanLane(lane, tmp, barrier)
		out[lane] = tmp[lane] - in[lane]
	})
	if len(in) == 0 {
		return 0
	}
	return tmp[len(in)-1]
}
