package metrics

import "runtime"

// MemorySnapshot is a point-in-time reading of the runtime heap, used to
// report the footprint of large reconstructions.
type MemorySnapshot struct {
	HeapAlloc    uint64 // live heap bytes
	HeapSys      uint64 // heap bytes obtained from the OS
	Sys          uint64 // total bytes obtained from the OS
	NumGC        uint32
	PauseTotalNs uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

func NewMemoryCollector() *MemoryCollector { return &MemoryCollector{} }

// Snapshot reads the current statistics. It briefly stops the world.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return MemorySnapshot{
		HeapAlloc:    ms.HeapAlloc,
		HeapSys:      ms.HeapSys,
		Sys:          ms.Sys,
		NumGC:        ms.NumGC,
		PauseTotalNs: ms.PauseTotalNs,
	}
}

// PeakDelta returns how much the heap grew from before to after, or zero.
func PeakDelta(before, after MemorySnapshot) uint64 {
	if after.HeapAlloc <= before.HeapAlloc {
		return 0
	}
	return after.HeapAlloc - before.HeapAlloc
}
