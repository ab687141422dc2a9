//go:build !gmp

package crt

import "math/big"

// accumulate sets values[i] += modulus * coeffs[i].
func accumulate(values []*big.Int, modulus *big.Int, coeffs []uint64) {
	var c, t big.Int
	for i, v := range values {
		if coeffs[i] == 0 {
			continue
		}
		c.SetUint64(coeffs[i])
		t.Mul(modulus, &c)
		v.Add(v, &t)
	}
}
