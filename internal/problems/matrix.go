package problems

import (
	"context"
	"math/rand/v2"

	"github.com/agbru/crtcalc/internal/field"
)

// reduce copies m into a fresh matrix of residues modulo f.
func reduce(f field.Modular, m [][]int64, extra []int64) [][]uint64 {
	out := make([][]uint64, len(m))
	for i, row := range m {
		width := len(row)
		if extra != nil {
			width++
		}
		r := make([]uint64, width)
		for j, v := range row {
			r[j] = f.FromInt64(v)
		}
		if extra != nil {
			r[len(row)] = f.FromInt64(extra[i])
		}
		out[i] = r
	}
	return out
}

// detMod computes the determinant of a square residue matrix by Gaussian
// elimination. a is overwritten.
func detMod(ctx context.Context, f field.Modular, a [][]uint64) (uint64, error) {
	n := len(a)
	det := uint64(1)
	for col := 0; col < n; col++ {
		if col%32 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		pivot := col
		for pivot < n && a[pivot][col] == 0 {
			pivot++
		}
		if pivot == n {
			return 0, nil
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			det = f.Neg(det)
		}
		det = f.Mul(det, a[col][col])
		inv, err := f.Inv(a[col][col])
		if err != nil {
			return 0, err
		}
		for r := col + 1; r < n; r++ {
			if a[r][col] == 0 {
				continue
			}
			factor := f.Mul(a[r][col], inv)
			for c := col; c < n; c++ {
				a[r][c] = f.Sub(a[r][c], f.Mul(factor, a[col][c]))
			}
		}
	}
	return det, nil
}

// solveMod solves the augmented system [A | b] by Gauss-Jordan elimination.
func solveMod(ctx context.Context, f field.Modular, a [][]uint64) ([]uint64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		if col%32 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pivot := col
		for pivot < n && a[pivot][col] == 0 {
			pivot++
		}
		if pivot == n {
			return nil, ErrSingular
		}
		a[pivot], a[col] = a[col], a[pivot]

		inv, err := f.Inv(a[col][col])
		if err != nil {
			return nil, err
		}
		for c := col; c <= n; c++ {
			a[col][c] = f.Mul(a[col][c], inv)
		}
		for r := 0; r < n; r++ {
			if r == col || a[r][col] == 0 {
				continue
			}
			factor := a[r][col]
			for c := col; c <= n; c++ {
				a[r][c] = f.Sub(a[r][c], f.Mul(factor, a[col][c]))
			}
		}
	}
	x := make([]uint64, n)
	for i := range x {
		x[i] = a[i][n]
	}
	return x, nil
}

// RandomMatrix returns a reproducible size x size matrix with entries in
// [-limit, limit].
func RandomMatrix(size int, seed uint64, limit int64) [][]int64 {
	r := rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
	m := make([][]int64, size)
	for i := range m {
		m[i] = make([]int64, size)
		for j := range m[i] {
			m[i][j] = r.Int64N(2*limit+1) - limit
		}
	}
	return m
}

// RandomVector returns a reproducible vector with entries in [-limit, limit].
func RandomVector(size int, seed uint64, limit int64) []int64 {
	r := rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
	v := make([]int64, size)
	for i := range v {
		v[i] = r.Int64N(2*limit+1) - limit
	}
	return v
}
