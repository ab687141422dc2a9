// Package sysmon samples host CPU and memory usage for the metrics
// endpoint, and the process's own CPU time for the run summary.
package sysmon

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// Watch calls fn with a fresh sample every interval until ctx is done.
// The first sample is taken immediately.
func Watch(ctx context.Context, interval time.Duration, fn func(Stats)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		fn(Sample())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CPUTime is the CPU time consumed by this process so far.
type CPUTime struct {
	User   time.Duration
	System time.Duration
}

// Total returns user plus system time.
func (c CPUTime) Total() time.Duration { return c.User + c.System }

// Sub returns the CPU time spent between earlier and c.
func (c CPUTime) Sub(earlier CPUTime) CPUTime {
	return CPUTime{User: c.User - earlier.User, System: c.System - earlier.System}
}
