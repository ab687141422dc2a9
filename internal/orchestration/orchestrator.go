package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/crtcalc/internal/errors"
	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/problems"
	"github.com/agbru/crtcalc/internal/transport"
)

// ProgressBufferSize is the capacity of the progress channel. Updates that
// do not fit are dropped by the coordinator, never blocked on.
const ProgressBufferSize = 64

// Options describes where this process's share of the run happens.
type Options struct {
	// Comm, when set, is this process's endpoint in a TCP cluster.
	// Otherwise a Local cluster of Participants ranks runs in-process.
	Comm         transport.Communicator
	Participants int
	// Hybrid carries threads, prime size, logger and metrics. Dimension,
	// Bound and Progress are filled from the problem.
	Hybrid hybrid.Config
	Kind   hybrid.Kind
}

// RunLocalCluster runs every rank of a Local cluster of the given size and
// returns their outcomes indexed by rank. The first failure cancels the
// other ranks.
func RunLocalCluster(ctx context.Context, size int, cfg hybrid.Config, iter hybrid.Iteration) ([]hybrid.Outcome, error) {
	r, err := hybrid.NewReconstructor(cfg)
	if err != nil {
		return nil, err
	}
	members, err := transport.NewLocalCluster(size)
	if err != nil {
		return nil, err
	}
	// Close tears down the whole hub, so only after every rank returned.
	defer members[0].Close()

	outcomes := make([]hybrid.Outcome, size)
	g, gctx := errgroup.WithContext(ctx)
	for rank, comm := range members {
		g.Go(func() error {
			out, err := r.Run(gctx, comm, iter)
			outcomes[rank] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Execute reconstructs p and returns this process's result. Progress is
// shown through reporter for the duration of the run.
func Execute(ctx context.Context, p problems.Problem, opts Options, reporter ProgressReporter, out io.Writer) Result {
	cfg := opts.Hybrid
	cfg.Dimension, cfg.Bound = p.Dimension(), p.Bound()

	progressChan := make(chan hybrid.Progress, ProgressBufferSize)
	cfg.Progress = progressChan
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, out)

	start := time.Now()
	outcome, err := run(ctx, p, opts, cfg)
	close(progressChan)
	displayWg.Wait()

	res := Result{
		Problem:  p.Name(),
		Kind:     opts.Kind,
		Outcome:  outcome,
		Duration: time.Since(start),
		Err:      err,
	}
	if err == nil && outcome.HasResult() {
		values, err := outcome.Value(opts.Kind)
		if err != nil {
			res.Err = apperrors.ReconstructionError{Phase: apperrors.PhaseResult, Rank: outcome.Rank, Cause: err}
		}
		res.Values = values
	}
	return res
}

func run(ctx context.Context, p problems.Problem, opts Options, cfg hybrid.Config) (hybrid.Outcome, error) {
	if opts.Comm != nil {
		r, err := hybrid.NewReconstructor(cfg)
		if err != nil {
			return hybrid.Outcome{}, err
		}
		return r.Run(ctx, opts.Comm, p.Iteration())
	}
	outcomes, err := RunLocalCluster(ctx, max(1, opts.Participants), cfg, p.Iteration())
	if err != nil {
		return hybrid.Outcome{}, err
	}
	return outcomes[0], nil
}

// Verify reconstructs p again on a single participant and compares the
// result with got entry by entry.
func Verify(ctx context.Context, p problems.Problem, cfg hybrid.Config, kind hybrid.Kind, got []*big.Rat) error {
	cfg.Dimension, cfg.Bound, cfg.Progress = p.Dimension(), p.Bound(), nil
	r, err := hybrid.NewReconstructor(cfg)
	if err != nil {
		return err
	}
	outcome, err := r.Run(ctx, nil, p.Iteration())
	if err != nil {
		return apperrors.WrapError(err, "sequential verification")
	}
	want, err := outcome.Value(kind)
	if err != nil {
		return apperrors.WrapError(err, "sequential verification")
	}
	if len(got) != len(want) {
		return fmt.Errorf("verification: %d entries, sequential run has %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Cmp(want[i]) != 0 {
			return apperrors.MismatchError{Index: i, Got: got[i].RatString(), Wanted: want[i].RatString()}
		}
	}
	return nil
}

// AnalyzeResult presents a successful result or reports the failure, and
// returns the exit code.
func AnalyzeResult(res Result, opts PresentationOptions, presenter ResultPresenter, out io.Writer) int {
	if res.Err != nil {
		var recErr apperrors.ReconstructionError
		if !opts.Quiet && errors.As(res.Err, &recErr) {
			fmt.Fprintf(out, "Reconstruction failed during %s.\n", recErr.Phase)
		}
		return apperrors.HandleError(res.Err, out)
	}
	presenter.PresentResult(res, opts, out)
	return apperrors.ExitSuccess
}
