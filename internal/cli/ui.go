package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"

	"github.com/agbru/crtcalc/internal/format"
	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/orchestration"
)

const (
	// TruncationLimit is the digit count above which values are shortened
	// on standard output.
	TruncationLimit = 100
	// DisplayEdges is how many leading and trailing digits a shortened
	// value keeps.
	DisplayEdges = 25
	// ProgressRefreshRate is the spinner frame interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the bar width in runes.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Lock(); rs.s.Suffix = suffix; rs.s.Unlock() }

var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// IsTerminal reports whether w is a terminal. Only terminals get spinners.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DisplayProgress shows a spinner with the residue progress bar until
// progressChan is closed, then prints the final line.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan hybrid.Progress, out io.Writer) {
	defer wg.Done()

	tracker := orchestration.NewProgressTracker()
	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(" waiting for residues")
	s.Start()

	seen := false
	for p := range progressChan {
		seen = true
		frac, eta := tracker.Update(p)
		s.UpdateSuffix(fmt.Sprintf(" %d/%d residues %s", p.Received, p.Total,
			format.FormatProgressBarWithETA(frac, eta, ProgressBarWidth)))
	}
	s.Stop()

	if seen {
		last := tracker.Last()
		fmt.Fprintf(out, "Folded %d/%d residues in %s.\n", last.Received, last.Total,
			format.FormatExecutionDuration(tracker.Elapsed()))
	}
}
