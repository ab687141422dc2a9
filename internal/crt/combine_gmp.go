//go:build gmp

package crt

import (
	"math/big"

	"github.com/ncw/gmp"
)

// accumulate sets values[i] += modulus * coeffs[i] using GMP for the
// multiplication. Values stay non-negative so the byte round trip is exact.
func accumulate(values []*big.Int, modulus *big.Int, coeffs []uint64) {
	m := new(gmp.Int).SetBytes(modulus.Bytes())
	var v, t gmp.Int
	for i, x := range values {
		if coeffs[i] == 0 {
			continue
		}
		v.SetBytes(x.Bytes())
		t.Mul(m, gmp.NewInt(int64(coeffs[i])))
		v.Add(&v, &t)
		x.SetBytes(v.Bytes())
	}
}
