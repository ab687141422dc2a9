package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/orchestration"
	"github.com/agbru/crtcalc/internal/ui"
)

// CLIProgressReporter shows DisplayProgress on terminals and drains
// silently elsewhere.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan hybrid.Progress, out io.Writer) {
	if !IsTerminal(out) {
		orchestration.NullProgressReporter{}.DisplayProgress(wg, progressChan, out)
		return
	}
	DisplayProgress(wg, progressChan, out)
}

// CLIResultPresenter prints results and writes the output file.
type CLIResultPresenter struct {
	OutputFile string
}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

func (p CLIResultPresenter) PresentResult(res orchestration.Result, opts orchestration.PresentationOptions, out io.Writer) {
	if opts.Quiet {
		if res.Values != nil {
			DisplayQuietResult(out, res.Values)
		}
	} else {
		DisplayResult(res, opts.Verbose, out)
	}

	if p.OutputFile == "" || res.Values == nil {
		return
	}
	if err := WriteResultToFile(res, OutputConfig{OutputFile: p.OutputFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving result: %v\n", err)
		return
	}
	if !opts.Quiet {
		fmt.Fprintf(out, "%s✓ Result saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), p.OutputFile, ui.ColorReset())
	}
}
