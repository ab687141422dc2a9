package hybrid

import (
	"runtime"

	"go.opentelemetry.io/otel"

	"github.com/agbru/crtcalc/internal/crt"
	"github.com/agbru/crtcalc/internal/logging"
	"github.com/agbru/crtcalc/internal/metrics"
)

// Iteration is the residue computation distributed by this package.
type Iteration = crt.Iteration

var tracer = otel.Tracer("github.com/agbru/crtcalc/internal/hybrid")

// Progress reports how many residues have been folded into the
// reconstruction out of the total expected.
type Progress struct {
	Received int
	Total    int
}

// Fraction returns Received/Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Received) / float64(p.Total)
}

// Options tunes a coordinator or worker. The zero value is usable.
type Options struct {
	// Threads bounds local concurrency: evaluation goroutines in a worker,
	// receiver goroutines in the coordinator. Zero means runtime.NumCPU().
	Threads int
	Logger  logging.Logger
	Metrics *metrics.Metrics
	// Progress, if set, receives an update after each fold. Sends never
	// block; size the buffer to the expected total to see every update.
	Progress chan<- Progress
}

func (o Options) threads() int {
	if o.Threads > 0 {
		return o.Threads
	}
	return runtime.NumCPU()
}

func (o Options) logger() logging.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.Nop()
}

func (o Options) report(p Progress) {
	if o.Progress == nil {
		return
	}
	select {
	case o.Progress <- p:
	default:
	}
}
