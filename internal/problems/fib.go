package problems

import (
	"context"
	"errors"
	"math"
	"math/bits"

	"github.com/agbru/crtcalc/internal/crt"
	"github.com/agbru/crtcalc/internal/field"
	"github.com/agbru/crtcalc/internal/hybrid"
)

// lnPhi is ln((1+sqrt 5)/2).
var lnPhi = math.Log((1 + math.Sqrt(5)) / 2)

// Fibonacci is F(n), reconstructed from F(n) mod p.
type Fibonacci struct {
	n uint64
}

// NewFibonacci returns the problem for F(n).
func NewFibonacci(n uint64) (*Fibonacci, error) {
	if n > 1<<40 {
		return nil, errors.New("problems: fibonacci index too large")
	}
	return &Fibonacci{n: n}, nil
}

func (p *Fibonacci) Name() string      { return "fib" }
func (p *Fibonacci) Dimension() int    { return 1 }
func (p *Fibonacci) Kind() hybrid.Kind { return hybrid.Integer }

// Bound uses F(n) <= phi^n, plus one for rounding.
func (p *Fibonacci) Bound() float64 { return float64(p.n)*lnPhi + 1 }

func (p *Fibonacci) Iteration() crt.Iteration {
	return func(_ context.Context, f field.Modular) ([]uint64, error) {
		return []uint64{FibMod(p.n, f)}, nil
	}
}

// FibMod computes F(n) mod f.Modulus() by fast doubling:
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k+1)^2 + F(k)^2
func FibMod(n uint64, f field.Modular) uint64 {
	var fk, fk1 uint64 = 0, f.Reduce(1)
	for i := bits.Len64(n) - 1; i >= 0; i-- {
		t1 := f.Mul(fk, f.Sub(f.Add(fk1, fk1), fk))
		t2 := f.Add(f.Mul(fk1, fk1), f.Mul(fk, fk))
		fk, fk1 = t1, t2
		if (n>>uint(i))&1 == 1 {
			fk, fk1 = fk1, f.Add(fk, fk1)
		}
	}
	return fk
}
