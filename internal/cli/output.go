// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* functions return a string without performing I/O.
//   - Write* functions write to the filesystem.

package cli

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/crtcalc/internal/format"
	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/orchestration"
	"github.com/agbru/crtcalc/internal/ui"
)

// OutputConfig holds the result output settings.
type OutputConfig struct {
	OutputFile string
	Quiet      bool
	Verbose    bool
}

// FormatValue renders one entry: integers as decimal, fractions as a/b.
func FormatValue(v *big.Rat) string {
	if v.IsInt() {
		return v.Num().String()
	}
	return v.RatString()
}

// FormatQuietResult renders the values one per line for scripting.
func FormatQuietResult(values []*big.Rat) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatValue(v))
	}
	return b.String()
}

// DisplayQuietResult prints the values only.
func DisplayQuietResult(out io.Writer, values []*big.Rat) {
	fmt.Fprintln(out, FormatQuietResult(values))
}

// truncate shortens long decimal strings to their edges.
func truncate(s string) (string, bool) {
	digits := strings.TrimPrefix(s, "-")
	if len(digits) <= TruncationLimit {
		return s, false
	}
	sign := s[:len(s)-len(digits)]
	return fmt.Sprintf("%s%s...%s", sign, digits[:DisplayEdges], digits[len(digits)-DisplayEdges:]), true
}

// DisplayResult prints the summary box and the values of a coordinator or
// sequential result, and a short notice for workers.
func DisplayResult(res orchestration.Result, verbose bool, out io.Writer) {
	o := res.Outcome
	if !o.HasResult() {
		fmt.Fprintf(out, "\n%sWorker %d sent %d residues in %s.%s\n",
			ui.ColorGreen(), o.Rank, o.Residues, format.FormatExecutionDuration(res.Duration), ui.ColorReset())
		return
	}

	b := o.Builder
	rows := []ui.Row{
		{Label: "Problem", Value: res.Problem},
		{Label: "Role", Value: o.Role.String()},
		{Label: "Result kind", Value: res.Kind.String()},
		{Label: "Dimension", Value: fmt.Sprint(b.Dimension())},
		{Label: "Residues", Value: fmt.Sprint(o.Residues)},
		{Label: "Modulus bits", Value: fmt.Sprintf("%d (bound %d)", b.Modulus().BitLen(), b.BoundBits())},
		{Label: "Duration", Value: format.FormatExecutionDuration(res.Duration)},
	}
	fmt.Fprintf(out, "\n%s\n", ui.SummaryBox("Reconstruction", rows))

	truncated := false
	for i, v := range res.Values {
		s := FormatValue(v)
		if !verbose && v.IsInt() {
			var cut bool
			if s, cut = truncate(s); cut {
				truncated = true
			} else {
				s = format.FormatNumberString(s)
			}
		}
		label := "x"
		if res.Kind != hybrid.Rational && len(res.Values) == 1 {
			label = res.Problem
		}
		fmt.Fprintf(out, "%s%s[%d]%s = %s\n", ui.ColorBold(), label, i, ui.ColorReset(), s)
	}
	if truncated {
		fmt.Fprintf(out, "%s(truncated) Tip: use --verbose or --output to see every digit.%s\n", ui.ColorYellow(), ui.ColorReset())
	}
}

// WriteResultToFile writes the values with a short header. An empty
// OutputFile writes nothing.
func WriteResultToFile(res orchestration.Result, cfg OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if dir := filepath.Dir(cfg.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# crtcalc result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Problem: %s\n", res.Problem)
	fmt.Fprintf(file, "# Kind: %s\n", res.Kind)
	fmt.Fprintf(file, "# Duration: %s\n", res.Duration)
	if b := res.Outcome.Builder; b != nil {
		fmt.Fprintf(file, "# Residues: %d\n", res.Outcome.Residues)
		fmt.Fprintf(file, "# Modulus bits: %d\n", b.Modulus().BitLen())
	}
	fmt.Fprintln(file)
	if _, err := fmt.Fprintln(file, FormatQuietResult(res.Values)); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}
