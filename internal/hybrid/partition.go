package hybrid

import (
	"math"

	"github.com/agbru/crtcalc/internal/crt"
	"github.com/agbru/crtcalc/internal/transport"
)

// TotalTasks is the number of worker residues needed for a value bounded by
// hb: ceil(Log2E * hb / (bitsPerPrime - 1)). Every prime of bitsPerPrime bits
// contributes at least bitsPerPrime-1 bits to the modulus, so these residues
// alone reach crt.BoundBits(hb).
func TotalTasks(hb float64, bitsPerPrime int) int {
	if hb <= 0 || bitsPerPrime < 2 {
		return 0
	}
	return int(math.Ceil(crt.Log2E * hb / float64(bitsPerPrime-1)))
}

// WorkerIDs returns the worker ranks of a cluster of the given size.
func WorkerIDs(size int) []int {
	if size <= 1 {
		return nil
	}
	ids := make([]int, 0, size-1)
	for rank := transport.CoordinatorRank + 1; rank < size; rank++ {
		ids = append(ids, rank)
	}
	return ids
}

// Partition splits total tasks between workers. Counts differ by at most one
// and the first workers in the slice receive the larger share. With fewer
// tasks than workers the trailing workers get zero.
func Partition(total int, workers []int) map[int]int {
	assignment := make(map[int]int, len(workers))
	if len(workers) == 0 {
		return assignment
	}
	if total < 0 {
		total = 0
	}
	base, rem := total/len(workers), total%len(workers)
	for i, id := range workers {
		n := base
		if i < rem {
			n++
		}
		assignment[id] = n
	}
	return assignment
}
