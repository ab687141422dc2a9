package problems

import (
	"context"
	"fmt"
	"math"

	"github.com/agbru/crtcalc/internal/crt"
	"github.com/agbru/crtcalc/internal/field"
	"github.com/agbru/crtcalc/internal/hybrid"
)

// Solve is the rational solution x of A x = b for a nonsingular integer A.
type Solve struct {
	a     [][]int64
	b     []int64
	bound float64
}

// NewSolve validates the system. By Cramer's rule every entry of x is a
// ratio of two determinants, each bounded by the Hadamard bound H of the
// augmented rows, so the modulus must exceed 2*H^2.
func NewSolve(a [][]int64, b []int64) (*Solve, error) {
	if err := checkSquare(a); err != nil {
		return nil, err
	}
	if len(b) != len(a) {
		return nil, fmt.Errorf("problems: right-hand side has %d entries, want %d", len(b), len(a))
	}
	augmented := make([][]int64, len(a))
	for i, row := range a {
		augmented[i] = append(append([]int64(nil), row...), b[i])
	}
	return &Solve{a: a, b: b, bound: math.Ln2 + 2*hadamardLog(augmented)}, nil
}

func (s *Solve) Name() string      { return "solve" }
func (s *Solve) Dimension() int    { return len(s.a) }
func (s *Solve) Bound() float64    { return s.bound }
func (s *Solve) Kind() hybrid.Kind { return hybrid.Rational }

func (s *Solve) Iteration() crt.Iteration {
	return func(ctx context.Context, f field.Modular) ([]uint64, error) {
		x, err := solveMod(ctx, f, reduce(f, s.a, s.b))
		if err != nil {
			return nil, fmt.Errorf("prime %d: %w", f.Modulus(), err)
		}
		return x, nil
	}
}
