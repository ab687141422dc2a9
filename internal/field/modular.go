// Package field implements word-sized arithmetic in Z/pZ. A Modular value is
// the "domain" handed to a residue computation: each goroutine evaluating a
// residue owns its own instance.
package field

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
)

// MaxModulusBits is the largest supported modulus size. Keeping p below 2^63
// lets Add work on plain uint64 without overflow.
const MaxModulusBits = 62

// ErrNotInvertible is returned when an element has no inverse modulo p.
var ErrNotInvertible = errors.New("field: element is not invertible")

// Modular performs arithmetic modulo p. The zero value is not usable; create
// instances with New.
type Modular struct {
	p uint64
}

// New returns the arithmetic domain for modulus p.
func New(p uint64) (Modular, error) {
	if p < 2 {
		return Modular{}, fmt.Errorf("field: modulus must be at least 2, got %d", p)
	}
	if bits.Len64(p) > MaxModulusBits {
		return Modular{}, fmt.Errorf("field: modulus %d exceeds %d bits", p, MaxModulusBits)
	}
	return Modular{p: p}, nil
}

// Modulus returns p.
func (m Modular) Modulus() uint64 { return m.p }

// Reduce maps x into [0, p).
func (m Modular) Reduce(x uint64) uint64 { return x % m.p }

// FromInt64 maps a signed integer into [0, p).
func (m Modular) FromInt64(x int64) uint64 {
	if x >= 0 {
		return uint64(x) % m.p
	}
	r := uint64(-(x + 1)) % m.p // avoids overflow on MinInt64
	return m.p - 1 - r
}

// FromBig maps an arbitrary integer into [0, p).
func (m Modular) FromBig(x *big.Int) uint64 {
	var r big.Int
	r.Mod(x, new(big.Int).SetUint64(m.p))
	return r.Uint64()
}

// Add returns a+b mod p.
func (m Modular) Add(a, b uint64) uint64 {
	s := a + b
	if s >= m.p {
		s -= m.p
	}
	return s
}

// Sub returns a-b mod p.
func (m Modular) Sub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + m.p - b
}

// Neg returns -a mod p.
func (m Modular) Neg(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return m.p - a
}

// Mul returns a*b mod p.
func (m Modular) Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m.p)
}

// Pow returns a^e mod p.
func (m Modular) Pow(a, e uint64) uint64 {
	result := uint64(1) % m.p
	base := a % m.p
	for e > 0 {
		if e&1 == 1 {
			result = m.Mul(result, base)
		}
		base = m.Mul(base, base)
		e >>= 1
	}
	return result
}

// Inv returns the inverse of a modulo p using the extended Euclidean
// algorithm, so it also works for composite moduli when gcd(a, p) = 1.
func (m Modular) Inv(a uint64) (uint64, error) {
	a %= m.p
	if a == 0 {
		return 0, ErrNotInvertible
	}
	// Invariant: r0 ≡ s0*a, r1 ≡ s1*a (mod p); s tracked mod p.
	r0, r1 := m.p, a
	s0, s1 := uint64(0), uint64(1)
	for r1 != 0 {
		q := r0 / r1
		r0, r1 = r1, r0-q*r1
		s0, s1 = s1, m.Sub(s0, m.Mul(q%m.p, s1))
	}
	if r0 != 1 {
		return 0, ErrNotInvertible
	}
	return s0, nil
}
