// Package primes provides per-participant prime streams for modular
// reconstruction.
//
// Each participant draws primes from its own residue class modulo a power of
// two (the "mask"), so participants with distinct identifiers never select
// the same prime without any coordination between them.
package primes

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
)

const (
	// MinBits is the smallest supported prime size.
	MinBits = 3
	// MaxBits is the largest supported prime size, matching field.MaxModulusBits.
	MaxBits = 62
	// DefaultBits is the prime size used when none is configured.
	DefaultBits = 28

	// primalityRounds is the Miller-Rabin round count for candidate testing.
	primalityRounds = 20
)

// ErrExhausted is returned when a supply has no more primes of its bit size
// in its residue class.
var ErrExhausted = errors.New("primes: supply exhausted for the configured bit size")

// Supply produces an increasing sequence of primes of a fixed bit size,
// restricted to the residue class reserved for one participant.
//
// A Supply is not safe for concurrent use.
type Supply struct {
	bits   int
	id     int
	stride uint64
	next   uint64
	limit  uint64
	last   uint64
}

// New creates the supply for participant id out of participants, producing
// primes of exactly bits bits.
func New(bits, id, participants int) (*Supply, error) {
	if bits < MinBits || bits > MaxBits {
		return nil, fmt.Errorf("primes: bit size %d out of range [%d, %d]", bits, MinBits, MaxBits)
	}
	if participants < 1 {
		return nil, fmt.Errorf("primes: participant count must be positive, got %d", participants)
	}
	if id < 0 || id >= participants {
		return nil, fmt.Errorf("primes: participant id %d out of range [0, %d)", id, participants)
	}

	stride := 2 * nextPow2(uint64(participants))
	offset := uint64(2*id + 1)
	low := uint64(1) << (bits - 1)

	start := low - low%stride + offset
	if start < low {
		start += stride
	}
	return &Supply{
		bits:   bits,
		id:     id,
		stride: stride,
		next:   start,
		limit:  uint64(1) << bits,
	}, nil
}

// Bits returns the bit size of the primes produced.
func (s *Supply) Bits() int { return s.bits }

// ID returns the participant identifier the supply was created for.
func (s *Supply) ID() int { return s.id }

// Last returns the most recent prime returned by Next, or 0.
func (s *Supply) Last() uint64 { return s.last }

// Next returns the next prime strictly greater than the previous one.
func (s *Supply) Next() (uint64, error) {
	var candidate big.Int
	for c := s.next; c < s.limit; c += s.stride {
		candidate.SetUint64(c)
		if candidate.ProbablyPrime(primalityRounds) {
			s.next = c + s.stride
			s.last = c
			return c, nil
		}
	}
	s.next = s.limit
	return 0, ErrExhausted
}

// IsAcceptable reports whether candidate is coprime to modulusSoFar, i.e.
// whether it has not already been folded into that product.
func (s *Supply) IsAcceptable(candidate uint64, modulusSoFar *big.Int) bool {
	return Coprime(candidate, modulusSoFar)
}

// NextAcceptable returns the next prime that is coprime to modulusSoFar.
func (s *Supply) NextAcceptable(modulusSoFar *big.Int) (uint64, error) {
	for {
		p, err := s.Next()
		if err != nil {
			return 0, err
		}
		if s.IsAcceptable(p, modulusSoFar) {
			return p, nil
		}
	}
}

// Coprime reports whether gcd(candidate, modulus) == 1. A nil or zero modulus
// is coprime to everything.
func Coprime(candidate uint64, modulus *big.Int) bool {
	if modulus == nil || modulus.Sign() == 0 || candidate == 0 {
		return true
	}
	var r big.Int
	r.Mod(modulus, new(big.Int).SetUint64(candidate))
	return gcd(candidate, r.Uint64()) == 1
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len64(x-1)
}
