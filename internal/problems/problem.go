// Package problems provides residue computations that the CLI can
// reconstruct: integer determinants, rational solutions of linear systems
// and Fibonacci numbers. Each problem supplies its natural-log bound, its
// result dimension and a concurrency-safe crt.Iteration.
package problems

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agbru/crtcalc/internal/crt"
	"github.com/agbru/crtcalc/internal/hybrid"
)

// ErrSingular is returned when a matrix has no inverse modulo the prime.
var ErrSingular = errors.New("problems: matrix is singular modulo the prime")

// Problem is a value that can be computed modulo primes and reconstructed.
type Problem interface {
	Name() string
	Dimension() int
	// Bound returns HB, the natural-log bound used to size the modulus.
	Bound() float64
	// Kind is how residues must be interpreted once reconstructed.
	Kind() hybrid.Kind
	Iteration() crt.Iteration
}

// Spec is the YAML form of a problem.
type Spec struct {
	Type   string    `yaml:"type"`
	Matrix [][]int64 `yaml:"matrix,omitempty"`
	RHS    []int64   `yaml:"rhs,omitempty"`
	N      uint64    `yaml:"n,omitempty"`
	// Size and Seed generate a random matrix when Matrix is empty.
	Size int    `yaml:"size,omitempty"`
	Seed uint64 `yaml:"seed,omitempty"`
	Max  int64  `yaml:"max,omitempty"`
}

// Types lists the accepted Spec.Type values.
var Types = []string{"det", "solve", "fib"}

// Build turns a spec into a Problem.
func Build(s Spec) (Problem, error) {
	matrix := s.Matrix
	if len(matrix) == 0 && s.Size > 0 && s.Type != "fib" {
		limit := s.Max
		if limit == 0 {
			limit = 100
		}
		matrix = RandomMatrix(s.Size, s.Seed, limit)
	}

	switch strings.ToLower(s.Type) {
	case "det", "determinant":
		return NewDeterminant(matrix)
	case "solve":
		rhs := s.RHS
		if len(rhs) == 0 && len(matrix) > 0 {
			rhs = RandomVector(len(matrix), s.Seed+1, 100)
		}
		return NewSolve(matrix, rhs)
	case "fib", "fibonacci":
		return NewFibonacci(s.N)
	}
	return nil, fmt.Errorf("problems: unknown type %q (want one of %s)", s.Type, strings.Join(Types, ", "))
}

// LoadSpec reads a problem spec from a YAML file.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to read problem file: %w", err)
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Spec{}, fmt.Errorf("failed to parse problem file: %w", err)
	}
	return s, nil
}

// hadamardLog returns the natural log of the Hadamard bound of the rows,
// i.e. the sum of the log Euclidean row norms. Zero rows are skipped.
func hadamardLog(rows [][]int64) float64 {
	var total float64
	for _, row := range rows {
		var sq big.Int
		for _, v := range row {
			x := big.NewInt(v)
			sq.Add(&sq, x.Mul(x, x))
		}
		if sq.Sign() == 0 {
			continue
		}
		f, _ := new(big.Float).SetInt(&sq).Float64()
		total += 0.5 * math.Log(f)
	}
	return total
}

func checkSquare(m [][]int64) error {
	if len(m) == 0 {
		return errors.New("problems: empty matrix")
	}
	for i, row := range m {
		if len(row) != len(m) {
			return fmt.Errorf("problems: row %d has %d entries, want %d", i, len(row), len(m))
		}
	}
	return nil
}
