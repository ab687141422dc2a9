package hybrid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/crtcalc/internal/crt"
	apperrors "github.com/agbru/crtcalc/internal/errors"
	"github.com/agbru/crtcalc/internal/logging"
	"github.com/agbru/crtcalc/internal/primes"
	"github.com/agbru/crtcalc/internal/transport"
)

// Coordinator runs the rank-0 side of the protocol.
type Coordinator struct {
	comm    transport.Communicator
	supply  *primes.Supply
	builder *crt.Builder
	iter    Iteration
	opts    Options
	log     logging.Logger

	// mu guards everything below and the builder.
	mu       sync.Mutex
	total    int
	pending  int
	received int
}

// NewCoordinator prepares a coordinator. builder must be uninitialized;
// supply provides the coordinator's own seed prime.
func NewCoordinator(comm transport.Communicator, supply *primes.Supply, builder *crt.Builder, iter Iteration, opts Options) (*Coordinator, error) {
	if comm == nil || supply == nil || builder == nil || iter == nil {
		return nil, errors.New("hybrid: coordinator requires a communicator, supply, builder and iteration")
	}
	if comm.Rank() != transport.CoordinatorRank {
		return nil, fmt.Errorf("hybrid: coordinator must run at rank %d, got %d", transport.CoordinatorRank, comm.Rank())
	}
	return &Coordinator{
		comm:    comm,
		supply:  supply,
		builder: builder,
		iter:    iter,
		opts:    opts,
		log:     opts.logger(),
	}, nil
}

// Run assigns work, seeds the builder and folds every worker residue. When
// it returns nil the builder has received all expected residues.
func (c *Coordinator) Run(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "hybrid.Coordinator.Run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	workers := WorkerIDs(c.comm.Size())
	total := TotalTasks(c.builder.Bound(), c.supply.Bits())
	assignment := Partition(total, workers)
	span.SetAttributes(
		attribute.Int("hybrid.tasks", total),
		attribute.Int("hybrid.workers", len(workers)),
		attribute.Int("hybrid.receivers", c.opts.threads()),
	)
	c.log.Info("assigning residues",
		logging.Int("tasks", total),
		logging.Int("workers", len(workers)),
		logging.Int("bound_bits", c.builder.BoundBits()),
		logging.Int("prime_bits", c.supply.Bits()),
	)

	if len(workers) == 0 && total > 0 {
		return apperrors.ReconstructionError{Phase: apperrors.PhaseAssign, Cause: errors.New("no workers to assign residues to")}
	}
	for _, id := range workers {
		if err := c.comm.SendTaskCount(ctx, id, assignment[id]); err != nil {
			return apperrors.ReconstructionError{Phase: apperrors.PhaseAssign, Cause: fmt.Errorf("rank %d: %w", id, err)}
		}
		c.log.Debug("task count sent", logging.Int("rank", id), logging.Int("tasks", assignment[id]))
	}
	c.opts.Metrics.AddTasks(total)

	c.mu.Lock()
	c.total, c.pending = total, total
	c.mu.Unlock()
	c.opts.Metrics.SetPending(total)

	if err := c.seed(ctx); err != nil {
		return apperrors.ReconstructionError{Phase: apperrors.PhaseSeed, Cause: err}
	}
	if err := c.drain(ctx, total); err != nil {
		return apperrors.ReconstructionError{Phase: apperrors.PhaseDrain, Cause: err}
	}

	c.log.Info("all residues received",
		logging.Int("received", c.Received()),
		logging.Int("modulus_bits", c.builder.Modulus().BitLen()),
	)
	return nil
}

func (c *Coordinator) seed(ctx context.Context) error {
	p, err := c.supply.Next()
	if err != nil {
		return err
	}
	c.opts.Metrics.PrimeDrawn("coordinator")
	residue, err := crt.Evaluate(ctx, c.iter, p, c.builder.Dimension())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.builder.Initialize(p, residue); err != nil {
		return err
	}
	c.opts.Metrics.ResidueReceived(c.builder.Modulus().BitLen())
	c.log.Debug("builder seeded", logging.Uint64("prime", p))
	return nil
}

// drain runs up to Threads receivers. Each receiver claims one outstanding
// slot before blocking on an any-source receive, so exactly total messages
// are consumed.
func (c *Coordinator) drain(ctx context.Context, total int) error {
	if total == 0 {
		return nil
	}
	receivers := min(c.opts.threads(), total)

	var claimed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < receivers; i++ {
		g.Go(func() error {
			for claimed.Add(1) <= int64(total) {
				env, err := c.comm.RecvResidue(gctx)
				if err != nil {
					return err
				}
				if err := c.deliver(env); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// deliver is the only path that mutates the builder after seeding.
func (c *Coordinator) deliver(env transport.Envelope) error {
	prime, residue, err := DecodeResidue(env.Payload, c.builder.Dimension())
	if err != nil {
		return fmt.Errorf("from rank %d: %w", env.From, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--
	if err := c.builder.Progress(prime, residue); err != nil {
		return fmt.Errorf("residue from rank %d at prime %d: %w", env.From, prime, err)
	}
	c.received++

	c.opts.Metrics.ResidueReceived(c.builder.Modulus().BitLen())
	c.opts.Metrics.SetPending(c.pending)
	c.opts.report(Progress{Received: c.received, Total: c.total})
	c.log.Debug("residue folded",
		logging.Int("from", env.From),
		logging.Uint64("prime", prime),
		logging.Int("pending", c.pending),
	)
	return nil
}

// Pending returns the number of worker residues still expected.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Received returns the number of worker residues folded so far.
func (c *Coordinator) Received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received
}

// Total returns the number of worker residues assigned.
func (c *Coordinator) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
