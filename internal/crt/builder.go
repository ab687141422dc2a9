// Package crt implements incremental Chinese Remainder reconstruction of a
// fixed-dimension vector of integers whose magnitude is bounded in advance.
//
// A Builder accumulates (prime, residue vector) pairs against a growing
// modulus product. It is not safe for concurrent use: callers that receive
// residues from several goroutines must serialize calls to Progress.
package crt

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/agbru/crtcalc/internal/field"
)

// Log2E converts a natural-log magnitude into bits (1/ln 2).
const Log2E = 1.442695

var (
	// ErrNotInitialized is returned by Progress before Initialize was called.
	ErrNotInitialized = errors.New("crt: builder not initialized")
	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("crt: builder already initialized")
	// ErrNotTerminated is returned when a result is requested before the
	// modulus has reached the bound.
	ErrNotTerminated = errors.New("crt: modulus has not reached the bound")
	// ErrNoncoprime is returned when a prime shares a factor with the modulus.
	ErrNoncoprime = errors.New("crt: prime is not coprime to the accumulated modulus")
	// ErrDimension is returned when a residue vector has the wrong length.
	ErrDimension = errors.New("crt: residue dimension mismatch")
)

// BoundBits returns the number of modulus bits needed to reconstruct a value
// whose natural-log magnitude is at most hb.
func BoundBits(hb float64) int {
	if hb <= 0 {
		return 0
	}
	return int(math.Ceil(Log2E * hb))
}

// PrimesNeeded expresses the bound as a prime count for primes of
// bitsPerPrime bits: ceil(Log2E * hb / bitsPerPrime).
func PrimesNeeded(hb float64, bitsPerPrime int) int {
	if hb <= 0 || bitsPerPrime <= 0 {
		return 0
	}
	return int(math.Ceil(Log2E * hb / float64(bitsPerPrime)))
}

// Builder is the incremental reconstruction state machine.
type Builder struct {
	dimension int
	hb        float64
	bound     int

	modulus *big.Int
	values  []*big.Int
	steps   int
}

// NewBuilder creates a builder for vectors of the given dimension whose
// entries are bounded by exp(hb) in absolute value (or whatever hb encodes
// for the chosen result kind).
func NewBuilder(dimension int, hb float64) (*Builder, error) {
	if dimension < 1 {
		return nil, fmt.Errorf("crt: dimension must be positive, got %d", dimension)
	}
	if hb < 0 || math.IsNaN(hb) || math.IsInf(hb, 0) {
		return nil, fmt.Errorf("crt: invalid bound %v", hb)
	}
	return &Builder{
		dimension: dimension,
		hb:        hb,
		bound:     BoundBits(hb),
	}, nil
}

// Initialize seeds the builder with its first residue.
func (b *Builder) Initialize(prime uint64, residue []uint64) error {
	if b.modulus != nil {
		return ErrAlreadyInitialized
	}
	if err := b.check(prime, residue); err != nil {
		return err
	}
	b.modulus = new(big.Int).SetUint64(prime)
	b.values = make([]*big.Int, b.dimension)
	for i, r := range residue {
		b.values[i] = new(big.Int).SetUint64(r)
	}
	b.steps = 1
	return nil
}

// Progress folds in one more residue. The resulting value is the unique
// vector in [0, modulus*prime) congruent to the previous value modulo the
// previous modulus and to residue modulo prime, so the final result does not
// depend on the order in which residues are applied.
func (b *Builder) Progress(prime uint64, residue []uint64) error {
	if b.modulus == nil {
		return ErrNotInitialized
	}
	if err := b.check(prime, residue); err != nil {
		return err
	}
	f, err := field.New(prime)
	if err != nil {
		return err
	}
	inv, err := f.Inv(f.FromBig(b.modulus))
	if err != nil {
		return fmt.Errorf("%w: %d", ErrNoncoprime, prime)
	}

	// x = v + m * ((r - v) * m^-1 mod p)
	coeffs := make([]uint64, b.dimension)
	for i, r := range residue {
		coeffs[i] = f.Mul(f.Sub(r, f.FromBig(b.values[i])), inv)
	}
	accumulate(b.values, b.modulus, coeffs)

	b.modulus.Mul(b.modulus, new(big.Int).SetUint64(prime))
	b.steps++
	return nil
}

func (b *Builder) check(prime uint64, residue []uint64) error {
	if prime < 2 {
		return fmt.Errorf("crt: invalid prime %d", prime)
	}
	if len(residue) != b.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(residue), b.dimension)
	}
	for i, r := range residue {
		if r >= prime {
			return fmt.Errorf("crt: residue[%d] = %d not reduced modulo %d", i, r, prime)
		}
	}
	return nil
}

// Terminated reports whether the modulus bit length has reached the bound.
func (b *Builder) Terminated() bool {
	return b.modulus != nil && b.modulus.BitLen() >= b.bound
}

// Noncoprime reports whether candidate shares a factor with the modulus.
func (b *Builder) Noncoprime(candidate uint64) bool {
	if b.modulus == nil {
		return false
	}
	f, err := field.New(candidate)
	if err != nil {
		return true
	}
	_, err = f.Inv(f.FromBig(b.modulus))
	return err != nil
}

// Result returns the reconstructed vector as non-negative representatives
// in [0, modulus).
func (b *Builder) Result() ([]*big.Int, error) {
	if !b.Terminated() {
		return nil, ErrNotTerminated
	}
	out := make([]*big.Int, b.dimension)
	for i, v := range b.values {
		out[i] = new(big.Int).Set(v)
	}
	return out, nil
}

// SignedResult returns the reconstructed vector as symmetric representatives
// in (-modulus/2, modulus/2].
func (b *Builder) SignedResult() ([]*big.Int, error) {
	out, err := b.Result()
	if err != nil {
		return nil, err
	}
	half := new(big.Int).Rsh(b.modulus, 1)
	for _, v := range out {
		if v.Cmp(half) > 0 {
			v.Sub(v, b.modulus)
		}
	}
	return out, nil
}

// RationalResult reconstructs each entry as a fraction n/d with
// |n|, d <= sqrt(modulus/2).
func (b *Builder) RationalResult() ([]*big.Rat, error) {
	if !b.Terminated() {
		return nil, ErrNotTerminated
	}
	out := make([]*big.Rat, b.dimension)
	for i, v := range b.values {
		r, err := ReconstructRational(v, b.modulus)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

// Modulus returns a copy of the accumulated modulus, or nil before
// initialization.
func (b *Builder) Modulus() *big.Int {
	if b.modulus == nil {
		return nil
	}
	return new(big.Int).Set(b.modulus)
}

// Dimension returns the residue vector length.
func (b *Builder) Dimension() int { return b.dimension }

// Bound returns the natural-log bound the builder was created with.
func (b *Builder) Bound() float64 { return b.hb }

// BoundBits returns the modulus size at which the builder terminates.
func (b *Builder) BoundBits() int { return b.bound }

// Steps returns the number of residues folded in so far.
func (b *Builder) Steps() int { return b.steps }
