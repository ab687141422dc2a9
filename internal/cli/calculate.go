package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/crtcalc/internal/config"
	"github.com/agbru/crtcalc/internal/crt"
	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/problems"
	"github.com/agbru/crtcalc/internal/ui"
)

// PrintExecutionConfig describes the run before it starts.
func PrintExecutionConfig(cfg config.AppConfig, p problems.Problem, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Reconstructing %s%s%s (dimension %d, bound %s%d%s bits).\n",
		ui.ColorMagenta(), p.Name(), ui.ColorReset(), p.Dimension(),
		ui.ColorYellow(), crt.BoundBits(p.Bound()), ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())

	total := hybrid.TotalTasks(p.Bound(), cfg.PrimeBits)
	switch cfg.Role {
	case config.RoleLocal:
		mode := "sequential"
		if cfg.Participants > 1 {
			mode = fmt.Sprintf("in-process cluster of %d participants", cfg.Participants)
		}
		fmt.Fprintf(out, "Execution mode: %s%s%s, %d threads each.\n", ui.ColorGreen(), mode, ui.ColorReset(), cfg.Threads)
	case config.RoleCoordinator:
		fmt.Fprintf(out, "Execution mode: %scoordinator%s on %s for %d participants, %d threads.\n",
			ui.ColorGreen(), ui.ColorReset(), cfg.Addr, cfg.Participants, cfg.Threads)
	case config.RoleWorker:
		fmt.Fprintf(out, "Execution mode: %sworker %d%s of %s, %d threads.\n",
			ui.ColorGreen(), cfg.Rank, ui.ColorReset(), cfg.Addr, cfg.Threads)
	}
	fmt.Fprintf(out, "Moduli: %d-bit primes, %d residues expected.\n", cfg.PrimeBits, total)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
