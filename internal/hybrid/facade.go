package hybrid

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/agbru/crtcalc/internal/crt"
	"github.com/agbru/crtcalc/internal/field"
	"github.com/agbru/crtcalc/internal/logging"
	"github.com/agbru/crtcalc/internal/metrics"
	"github.com/agbru/crtcalc/internal/primes"
	"github.com/agbru/crtcalc/internal/transport"
)

// Role is the part a participant played in a run.
type Role int

const (
	RoleSequential Role = iota
	RoleCoordinator
	RoleWorker
)

func (r Role) String() string {
	switch r {
	case RoleSequential:
		return "sequential"
	case RoleCoordinator:
		return "coordinator"
	case RoleWorker:
		return "worker"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Kind selects how the reconstructed residues are interpreted.
type Kind int

const (
	// Integer yields representatives in [0, modulus).
	Integer Kind = iota
	// Signed yields representatives in (-modulus/2, modulus/2].
	Signed
	// Rational yields fractions by rational reconstruction.
	Rational
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Signed:
		return "signed"
	case Rational:
		return "rational"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "integer", "signed" or "rational".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return Integer, nil
	case "signed":
		return Signed, nil
	case "rational":
		return Rational, nil
	}
	return 0, fmt.Errorf("unknown result kind %q", s)
}

// ErrNoResult is returned when a result is requested from a worker outcome.
var ErrNoResult = errors.New("hybrid: workers hold no reconstructed value")

// Config describes one reconstruction.
type Config struct {
	Dimension int
	// Bound is the natural-log magnitude bound HB of the value.
	Bound     float64
	PrimeBits int
	Threads   int
	Logger    logging.Logger
	Metrics   *metrics.Metrics
	Progress  chan<- Progress
}

func (c Config) options() Options {
	return Options{Threads: c.Threads, Logger: c.Logger, Metrics: c.Metrics, Progress: c.Progress}
}

// Outcome is what a participant holds at the end of a run.
type Outcome struct {
	Role     Role
	Rank     int
	Builder  *crt.Builder // nil for workers
	Residues int          // residues this participant computed or folded
	Duration time.Duration
}

// HasResult reports whether the outcome carries a reconstructed value.
func (o Outcome) HasResult() bool { return o.Builder != nil }

// Integers returns the value with entries in [0, modulus).
func (o Outcome) Integers() ([]*big.Int, error) {
	if o.Builder == nil {
		return nil, ErrNoResult
	}
	return o.Builder.Result()
}

// Signed returns the value with symmetric entries.
func (o Outcome) Signed() ([]*big.Int, error) {
	if o.Builder == nil {
		return nil, ErrNoResult
	}
	return o.Builder.SignedResult()
}

// Rationals returns the value by rational reconstruction.
func (o Outcome) Rationals() ([]*big.Rat, error) {
	if o.Builder == nil {
		return nil, ErrNoResult
	}
	return o.Builder.RationalResult()
}

// Value returns the result of kind k as big.Rat entries, the common
// denominator of all three kinds.
func (o Outcome) Value(k Kind) ([]*big.Rat, error) {
	if k == Rational {
		return o.Rationals()
	}
	var (
		ints []*big.Int
		err  error
	)
	if k == Signed {
		ints, err = o.Signed()
	} else {
		ints, err = o.Integers()
	}
	if err != nil {
		return nil, err
	}
	out := make([]*big.Rat, len(ints))
	for i, v := range ints {
		out[i] = new(big.Rat).SetInt(v)
	}
	return out, nil
}

// Reconstructor picks the sequential path, the coordinator or a worker for
// the calling participant.
type Reconstructor struct {
	cfg Config
}

// NewReconstructor validates cfg.
func NewReconstructor(cfg Config) (*Reconstructor, error) {
	if cfg.Dimension < 1 {
		return nil, fmt.Errorf("hybrid: dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.Bound < 0 {
		return nil, fmt.Errorf("hybrid: bound must be non-negative, got %v", cfg.Bound)
	}
	if cfg.PrimeBits == 0 {
		cfg.PrimeBits = primes.DefaultBits
	}
	if cfg.PrimeBits < primes.MinBits || cfg.PrimeBits > field.MaxModulusBits {
		return nil, fmt.Errorf("hybrid: prime bits %d out of range [%d, %d]", cfg.PrimeBits, primes.MinBits, field.MaxModulusBits)
	}
	if cfg.Threads < 0 {
		return nil, fmt.Errorf("hybrid: threads must be non-negative, got %d", cfg.Threads)
	}
	return &Reconstructor{cfg: cfg}, nil
}

// Run executes this participant's share. A nil communicator, or one of size
// one, runs crt.Sequential on a single-participant supply.
func (r *Reconstructor) Run(ctx context.Context, comm transport.Communicator, iter Iteration) (Outcome, error) {
	start := time.Now()
	out, err := r.run(ctx, comm, iter)
	out.Duration = time.Since(start)
	r.cfg.Metrics.ObserveRun(out.Role.String(), err, out.Duration)
	return out, err
}

func (r *Reconstructor) run(ctx context.Context, comm transport.Communicator, iter Iteration) (Outcome, error) {
	if iter == nil {
		return Outcome{}, errors.New("hybrid: nil iteration")
	}
	opts := r.cfg.options()

	if comm == nil || comm.Size() == 1 {
		return r.sequential(ctx, iter, opts)
	}

	rank, size := comm.Rank(), comm.Size()
	supply, err := primes.New(r.cfg.PrimeBits, rank, size)
	if err != nil {
		return Outcome{Rank: rank}, err
	}

	if rank != transport.CoordinatorRank {
		w, err := NewWorker(comm, supply, r.cfg.Dimension, iter, opts)
		if err != nil {
			return Outcome{Role: RoleWorker, Rank: rank}, err
		}
		sent, err := w.Run(ctx)
		return Outcome{Role: RoleWorker, Rank: rank, Residues: sent}, err
	}

	builder, err := crt.NewBuilder(r.cfg.Dimension, r.cfg.Bound)
	if err != nil {
		return Outcome{Role: RoleCoordinator}, err
	}
	c, err := NewCoordinator(comm, supply, builder, iter, opts)
	if err != nil {
		return Outcome{Role: RoleCoordinator}, err
	}
	if err := c.Run(ctx); err != nil {
		return Outcome{Role: RoleCoordinator, Residues: c.Received()}, err
	}
	return Outcome{Role: RoleCoordinator, Builder: builder, Residues: c.Received() + 1}, nil
}

func (r *Reconstructor) sequential(ctx context.Context, iter Iteration, opts Options) (Outcome, error) {
	supply, err := primes.New(r.cfg.PrimeBits, 0, 1)
	if err != nil {
		return Outcome{Role: RoleSequential}, err
	}
	builder, err := crt.NewBuilder(r.cfg.Dimension, r.cfg.Bound)
	if err != nil {
		return Outcome{Role: RoleSequential}, err
	}

	total := TotalTasks(r.cfg.Bound, r.cfg.PrimeBits)
	received := 0
	counted := func(ctx context.Context, f field.Modular) ([]uint64, error) {
		res, err := iter(ctx, f)
		if err == nil {
			received++
			opts.Metrics.PrimeDrawn("sequential")
			opts.report(Progress{Received: received, Total: max(total, received)})
		}
		return res, err
	}

	opts.logger().Info("single participant, reconstructing sequentially",
		logging.Int("bound_bits", builder.BoundBits()),
		logging.Int("prime_bits", r.cfg.PrimeBits),
	)
	if err := crt.Sequential(ctx, builder, supply, counted); err != nil {
		return Outcome{Role: RoleSequential, Residues: received}, err
	}
	opts.Metrics.ResidueReceived(builder.Modulus().BitLen())
	return Outcome{Role: RoleSequential, Builder: builder, Residues: builder.Steps()}, nil
}
