// Package memory tunes the Go garbage collector around a reconstruction.
// Folding residues into a large modulus allocates a fresh big.Int per step,
// so long runs spend noticeable time in GC when left at the default pacing.
package memory

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// GCMode selects how the collector is handled during a run.
type GCMode string

const (
	GCModeAuto       GCMode = "auto"
	GCModeAggressive GCMode = "aggressive"
	GCModeDisabled   GCMode = "disabled"
)

// ParseGCMode validates a mode name. The empty string means auto.
func ParseGCMode(s string) (GCMode, error) {
	switch GCMode(s) {
	case "", GCModeAuto:
		return GCModeAuto, nil
	case GCModeAggressive, GCModeDisabled:
		return GCMode(s), nil
	}
	return "", fmt.Errorf("unknown gc mode %q (want auto, aggressive or disabled)", s)
}

// GCAutoThreshold is the total result size, in bits, from which auto mode
// pauses the collector.
const GCAutoThreshold = 1 << 20

// liveCopies is how many result-sized big.Int buffers a fold keeps alive at
// once: the modulus, the values, and the product and sum temporaries.
const liveCopies = 4

// Plan is the decision taken for one reconstruction.
type Plan struct {
	Mode GCMode
	// ResultBits is the modulus bit bound times the vector dimension.
	ResultBits int
	Pause      bool
}

// ResultBytes estimates the bytes held by the builder at termination.
func (p Plan) ResultBytes() uint64 {
	return uint64(p.ResultBits+7) / 8
}

// Headroom is the heap growth allowed while the collector is paused. It
// never drops below twice the footprint at Begin.
func (p Plan) Headroom(sys uint64) uint64 {
	return max(2*sys, liveCopies*p.ResultBytes())
}

// PlanFor sizes a run reconstructing dimension entries up to boundBits bits.
func PlanFor(mode GCMode, dimension, boundBits int) Plan {
	p := Plan{Mode: mode, ResultBits: max(dimension, 0) * max(boundBits, 0)}
	switch mode {
	case GCModeAggressive:
		p.Pause = true
	case GCModeAuto, "":
		p.Pause = p.ResultBits >= GCAutoThreshold
	}
	return p
}

// GCController applies a Plan: between Begin and End the collector is off
// and a soft memory limit caps the heap at Sys + Headroom.
type GCController struct {
	plan   Plan
	logger zerolog.Logger

	prevPct   int
	prevLimit int64
	limit     int64
	before    runtime.MemStats
	after     runtime.MemStats
}

// GCStats is the collector activity between Begin and End.
type GCStats struct {
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// NewGCController builds a controller for a run of the given shape.
func NewGCController(mode GCMode, dimension, boundBits int) *GCController {
	return &GCController{plan: PlanFor(mode, dimension, boundBits), logger: zerolog.Nop()}
}

// SetLogger configures the logger for GC events.
func (gc *GCController) SetLogger(l zerolog.Logger) {
	gc.logger = l
}

// Plan returns the controller's decision.
func (gc *GCController) Plan() Plan { return gc.plan }

// Active reports whether Begin will touch the collector.
func (gc *GCController) Active() bool { return gc.plan.Pause }

// MemoryLimit is the soft limit installed by Begin, or zero.
func (gc *GCController) MemoryLimit() int64 { return gc.limit }

// Begin pauses the collector if the plan says so.
func (gc *GCController) Begin() {
	if !gc.plan.Pause {
		return
	}
	runtime.ReadMemStats(&gc.before)
	gc.prevLimit = debug.SetMemoryLimit(-1)
	gc.limit = int64(gc.before.Sys + gc.plan.Headroom(gc.before.Sys))
	if gc.limit > 0 && gc.limit < gc.prevLimit {
		debug.SetMemoryLimit(gc.limit)
	} else {
		gc.limit = gc.prevLimit
	}
	gc.prevPct = debug.SetGCPercent(-1)

	gc.logger.Debug().
		Str("mode", string(gc.plan.Mode)).
		Int("result_bits", gc.plan.ResultBits).
		Int64("memory_limit_bytes", gc.limit).
		Msg("gc paused")
}

// End puts back the previous percent and limit, then collects once.
func (gc *GCController) End() {
	if !gc.plan.Pause {
		return
	}
	runtime.ReadMemStats(&gc.after)
	debug.SetGCPercent(gc.prevPct)
	debug.SetMemoryLimit(gc.prevLimit)
	runtime.GC()

	s := gc.Stats()
	gc.logger.Debug().
		Uint64("total_alloc_bytes", s.TotalAlloc).
		Uint32("gc_cycles", s.NumGC).
		Msg("gc resumed")
}

// Stats returns the delta between Begin and End. It is zero when the
// controller was inactive.
func (gc *GCController) Stats() GCStats {
	if !gc.plan.Pause {
		return GCStats{}
	}
	return GCStats{
		HeapAlloc:    gc.after.HeapAlloc,
		TotalAlloc:   gc.after.TotalAlloc - gc.before.TotalAlloc,
		NumGC:        gc.after.NumGC - gc.before.NumGC,
		PauseTotalNs: gc.after.PauseTotalNs - gc.before.PauseTotalNs,
	}
}
