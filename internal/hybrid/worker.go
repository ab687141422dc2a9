package hybrid

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/crtcalc/internal/crt"
	apperrors "github.com/agbru/crtcalc/internal/errors"
	"github.com/agbru/crtcalc/internal/logging"
	"github.com/agbru/crtcalc/internal/primes"
	"github.com/agbru/crtcalc/internal/transport"
)

// Worker runs the non-coordinator side of the protocol.
type Worker struct {
	comm      transport.Communicator
	supply    *primes.Supply
	iter      Iteration
	dimension int
	opts      Options
	log       logging.Logger
}

// NewWorker prepares a worker producing residue vectors of the given
// dimension.
func NewWorker(comm transport.Communicator, supply *primes.Supply, dimension int, iter Iteration, opts Options) (*Worker, error) {
	if comm == nil || supply == nil || iter == nil {
		return nil, errors.New("hybrid: worker requires a communicator, supply and iteration")
	}
	if comm.Rank() == transport.CoordinatorRank {
		return nil, fmt.Errorf("hybrid: worker cannot run at coordinator rank %d", transport.CoordinatorRank)
	}
	if dimension < 1 {
		return nil, fmt.Errorf("hybrid: dimension must be positive, got %d", dimension)
	}
	return &Worker{
		comm:      comm,
		supply:    supply,
		iter:      iter,
		dimension: dimension,
		opts:      opts,
		log:       opts.logger(),
	}, nil
}

// Run waits for the task count, computes that many residues and sends each
// one to the coordinator as soon as it is ready. It returns the number of
// residues sent. A zero count ends the worker immediately.
func (w *Worker) Run(ctx context.Context) (sent int, err error) {
	rank := w.comm.Rank()
	count, err := w.comm.RecvTaskCount(ctx)
	if err != nil {
		return 0, apperrors.ReconstructionError{Phase: apperrors.PhaseAssign, Rank: rank, Cause: err}
	}
	if count <= 0 {
		w.log.Debug("no residues assigned, exiting", logging.Int("rank", rank))
		return 0, nil
	}

	ctx, span := tracer.Start(ctx, "hybrid.Worker.Run")
	span.SetAttributes(attribute.Int("hybrid.rank", rank), attribute.Int("hybrid.tasks", count))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	batch, err := DrawBatch(w.supply, count)
	if err != nil {
		return 0, apperrors.ReconstructionError{Phase: apperrors.PhaseCompute, Rank: rank, Cause: err}
	}
	for range batch {
		w.opts.Metrics.PrimeDrawn("worker")
	}
	w.log.Info("computing residues",
		logging.Int("rank", rank),
		logging.Int("tasks", count),
		logging.Int("threads", w.opts.threads()),
	)

	results := make(chan struct{}, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.threads())
	for _, p := range batch {
		g.Go(func() error {
			residue, err := crt.Evaluate(gctx, w.iter, p, w.dimension)
			if err != nil {
				return err
			}
			if err := w.comm.SendResidue(gctx, EncodeResidue(residue, p)); err != nil {
				return fmt.Errorf("send residue at prime %d: %w", p, err)
			}
			results <- struct{}{}
			w.log.Debug("residue sent", logging.Int("rank", rank), logging.Uint64("prime", p))
			return nil
		})
	}
	err = g.Wait()
	close(results)
	for range results {
		sent++
	}
	if err != nil {
		return sent, apperrors.ReconstructionError{Phase: apperrors.PhaseCompute, Rank: rank, Cause: err}
	}
	return sent, nil
}

// DrawBatch draws n pairwise distinct primes from supply, rejecting any
// candidate that shares a factor with the primes already drawn.
func DrawBatch(supply *primes.Supply, n int) ([]uint64, error) {
	batch := make([]uint64, 0, n)
	product := big.NewInt(1)
	var bp big.Int
	for len(batch) < n {
		p, err := supply.NextAcceptable(product)
		if err != nil {
			return nil, err
		}
		batch = append(batch, p)
		product.Mul(product, bp.SetUint64(p))
	}
	return batch, nil
}
