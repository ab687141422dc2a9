package crt

import (
	"errors"
	"math/big"
)

// ErrNoRationalReconstruction is returned when a residue has no fraction
// within the reconstruction bounds.
var ErrNoRationalReconstruction = errors.New("crt: no rational reconstruction within bounds")

// ReconstructRational finds n/d with n ≡ d*v (mod m), |n| <= sqrt(m/2) and
// 0 < d <= sqrt(m/2), using the half-extended Euclidean algorithm.
func ReconstructRational(v, m *big.Int) (*big.Rat, error) {
	bound := new(big.Int).Rsh(m, 1)
	bound.Sqrt(bound)

	r0 := new(big.Int).Set(m)
	r1 := new(big.Int).Mod(v, m)
	t0 := new(big.Int)
	t1 := big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r1.Cmp(bound) > 0 {
		q.Quo(r0, r1)

		tmp.Mul(q, r1)
		tmp.Sub(r0, tmp)
		r0, r1 = r1, r0
		r1.Set(tmp)

		tmp.Mul(q, t1)
		tmp.Sub(t0, tmp)
		t0, t1 = t1, t0
		t1.Set(tmp)
	}

	den := new(big.Int).Abs(t1)
	if den.Sign() == 0 || den.Cmp(bound) > 0 {
		return nil, ErrNoRationalReconstruction
	}
	if new(big.Int).GCD(nil, nil, new(big.Int).Abs(r1), den).Cmp(big.NewInt(1)) != 0 {
		return nil, ErrNoRationalReconstruction
	}
	num := new(big.Int).Set(r1)
	if t1.Sign() < 0 {
		num.Neg(num)
	}
	return new(big.Rat).SetFrac(num, den), nil
}
