package orchestration

import (
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/agbru/crtcalc/internal/hybrid"
)

// Result is the outcome of one reconstruction as seen by this process.
type Result struct {
	// Problem is the problem name, e.g. "det".
	Problem string
	Kind    hybrid.Kind
	Outcome hybrid.Outcome
	// Values is nil on workers and on failure.
	Values   []*big.Rat
	Duration time.Duration
	Err      error
}

// PresentationOptions configures how results are presented.
type PresentationOptions struct {
	Verbose bool
	Quiet   bool
}

// ProgressReporter displays progress updates until progressChan is closed,
// then calls wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan hybrid.Progress, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan hybrid.Progress, out io.Writer)

func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan hybrid.Progress, out io.Writer) {
	f(wg, progressChan, out)
}

// NullProgressReporter drains the channel silently.
type NullProgressReporter struct{}

func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan hybrid.Progress, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter displays a successful result.
type ResultPresenter interface {
	PresentResult(res Result, opts PresentationOptions, out io.Writer)
}
