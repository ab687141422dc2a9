package problems

import (
	"context"
	"math"

	"github.com/agbru/crtcalc/internal/crt"
	"github.com/agbru/crtcalc/internal/field"
	"github.com/agbru/crtcalc/internal/hybrid"
)

// Determinant is the determinant of a square integer matrix.
type Determinant struct {
	matrix [][]int64
	bound  float64
}

// NewDeterminant validates m. The matrix is not copied.
func NewDeterminant(m [][]int64) (*Determinant, error) {
	if err := checkSquare(m); err != nil {
		return nil, err
	}
	// ln 2 leaves room for the sign.
	return &Determinant{matrix: m, bound: hadamardLog(m) + math.Ln2}, nil
}

func (d *Determinant) Name() string      { return "det" }
func (d *Determinant) Dimension() int    { return 1 }
func (d *Determinant) Bound() float64    { return d.bound }
func (d *Determinant) Kind() hybrid.Kind { return hybrid.Signed }

func (d *Determinant) Iteration() crt.Iteration {
	return func(ctx context.Context, f field.Modular) ([]uint64, error) {
		det, err := detMod(ctx, f, reduce(f, d.matrix, nil))
		if err != nil {
			return nil, err
		}
		return []uint64{det}, nil
	}
}
