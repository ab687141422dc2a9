package problems

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/crtcalc/internal/field"
	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/transport"
)

// exactSolve runs Gauss-Jordan over the rationals on [A | b] and returns
// det(A) and, when b is non-nil and A is nonsingular, the solution.
func exactSolve(a [][]int64, b []int64) (*big.Rat, []*big.Rat) {
	n := len(a)
	m := make([][]*big.Rat, n)
	for i := range a {
		m[i] = make([]*big.Rat, n+1)
		for j := range a[i] {
			m[i][j] = new(big.Rat).SetInt64(a[i][j])
		}
		m[i][n] = new(big.Rat)
		if b != nil {
			m[i][n].SetInt64(b[i])
		}
	}
	det := big.NewRat(1, 1)
	for col := 0; col < n; col++ {
		pivot := col
		for pivot < n && m[pivot][col].Sign() == 0 {
			pivot++
		}
		if pivot == n {
			return new(big.Rat), nil
		}
		if pivot != col {
			m[pivot], m[col] = m[col], m[pivot]
			det.Neg(det)
		}
		det.Mul(det, m[col][col])
		inv := new(big.Rat).Inv(m[col][col])
		for c := col; c <= n; c++ {
			m[col][c].Mul(m[col][c], inv)
		}
		for r := 0; r < n; r++ {
			if r == col || m[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(m[r][col])
			for c := col; c <= n; c++ {
				m[r][c].Sub(m[r][c], new(big.Rat).Mul(factor, m[col][c]))
			}
		}
	}
	x := make([]*big.Rat, n)
	for i := range x {
		x[i] = m[i][n]
	}
	return det, x
}

func reconstruct(t *testing.T, p Problem, size, threads int) []*big.Rat {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	members, err := transport.NewLocalCluster(size)
	if err != nil {
		t.Fatalf("NewLocalCluster: %v", err)
	}
	r, err := hybrid.NewReconstructor(hybrid.Config{
		Dimension: p.Dimension(),
		Bound:     p.Bound(),
		PrimeBits: 20,
		Threads:   threads,
	})
	if err != nil {
		t.Fatalf("NewReconstructor: %v", err)
	}

	outcomes := make([]hybrid.Outcome, size)
	g, gctx := errgroup.WithContext(ctx)
	for rank, comm := range members {
		g.Go(func() error {
			out, err := r.Run(gctx, comm, p.Iteration())
			outcomes[rank] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("%s on %d participants: %v", p.Name(), size, err)
	}
	got, err := outcomes[0].Value(p.Kind())
	if err != nil {
		t.Fatalf("Value(%v): %v", p.Kind(), err)
	}
	return got
}

func TestDeterminant_MatchesExact(t *testing.T) {
	t.Parallel()

	matrices := map[string][][]int64{
		"identity": {{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		"negative": {{0, 2}, {3, 0}},
		"singular": {{1, 2, 3}, {2, 4, 6}, {7, 8, 9}},
		"random6":  RandomMatrix(6, 7, 1000),
		"random12": RandomMatrix(12, 11, 50),
	}
	for name, m := range matrices {
		for size := 1; size <= 5; size++ {
			t.Run(fmt.Sprintf("%s/size=%d", name, size), func(t *testing.T) {
				t.Parallel()
				p, err := NewDeterminant(m)
				if err != nil {
					t.Fatalf("NewDeterminant: %v", err)
				}
				want, _ := exactSolve(m, nil)
				got := reconstruct(t, p, size, 2)
				if len(got) != 1 || got[0].Cmp(want) != 0 {
					t.Errorf("det = %v, want %v", got, want.RatString())
				}
			})
		}
	}
}

func TestSolve_MatchesExact(t *testing.T) {
	t.Parallel()

	systems := []struct {
		name string
		a    [][]int64
		b    []int64
	}{
		{"diagonal", [][]int64{{2, 0}, {0, 3}}, []int64{1, 1}},
		{"dense3", [][]int64{{4, -2, 1}, {3, 6, -4}, {2, 1, 8}}, []int64{12, -25, 32}},
		{"random5", RandomMatrix(5, 3, 100), RandomVector(5, 4, 100)},
	}
	for _, tc := range systems {
		for size := 1; size <= 5; size++ {
			t.Run(fmt.Sprintf("%s/size=%d", tc.name, size), func(t *testing.T) {
				t.Parallel()
				p, err := NewSolve(tc.a, tc.b)
				if err != nil {
					t.Fatalf("NewSolve: %v", err)
				}
				det, want := exactSolve(tc.a, tc.b)
				if det.Sign() == 0 {
					t.Skip("singular fixture")
				}
				got := reconstruct(t, p, size, 3)
				for i := range want {
					if got[i].Cmp(want[i]) != 0 {
						t.Errorf("x[%d] = %v, want %v", i, got[i].RatString(), want[i].RatString())
					}
				}
			})
		}
	}
}

func TestFibonacci_MatchesExact(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{0, 1, 2, 10, 93, 100, 1000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			t.Parallel()
			a, b := big.NewInt(0), big.NewInt(1)
			for i := uint64(0); i < n; i++ {
				a.Add(a, b)
				a, b = b, a
			}
			p, err := NewFibonacci(n)
			if err != nil {
				t.Fatalf("NewFibonacci: %v", err)
			}
			got := reconstruct(t, p, 3, 2)
			if got[0].Cmp(new(big.Rat).SetInt(a)) != 0 {
				t.Errorf("F(%d) = %v, want %v", n, got[0], a)
			}
		})
	}
}

func TestFibMod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, mod, want uint64
	}{
		{10, 1000003, 55},
		{100, 10000, 5075},
		{1000, 1000000, 228875},
	}
	for _, tt := range tests {
		f, err := field.New(tt.mod)
		if err != nil {
			t.Fatal(err)
		}
		if got := FibMod(tt.n, f); got != tt.want {
			t.Errorf("FibMod(%d) mod %d = %d, want %d", tt.n, tt.mod, got, tt.want)
		}
	}
}

func TestSolve_SingularModPrime(t *testing.T) {
	t.Parallel()

	p, err := NewSolve([][]int64{{1, 2}, {2, 4}}, []int64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	f, _ := field.New(101)
	if _, err := p.Iteration()(context.Background(), f); !errors.Is(err, ErrSingular) {
		t.Errorf("error = %v, want ErrSingular", err)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    Spec
		kind    hybrid.Kind
		dim     int
		wantErr string
	}{
		{name: "det", spec: Spec{Type: "det", Matrix: [][]int64{{1, 2}, {3, 4}}}, kind: hybrid.Signed, dim: 1},
		{name: "random solve", spec: Spec{Type: "solve", Size: 4, Seed: 9}, kind: hybrid.Rational, dim: 4},
		{name: "fib", spec: Spec{Type: "fibonacci", N: 50}, kind: hybrid.Integer, dim: 1},
		{name: "unknown", spec: Spec{Type: "permanent"}, wantErr: "unknown type"},
		{name: "ragged", spec: Spec{Type: "det", Matrix: [][]int64{{1, 2}, {3}}}, wantErr: "row 1"},
		{name: "empty", spec: Spec{Type: "det"}, wantErr: "empty matrix"},
		{name: "rhs length", spec: Spec{Type: "solve", Matrix: [][]int64{{1}}, RHS: []int64{1, 2}}, wantErr: "right-hand side"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := Build(tt.spec)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Build error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if p.Kind() != tt.kind || p.Dimension() != tt.dim {
				t.Errorf("kind %v dim %d, want %v %d", p.Kind(), p.Dimension(), tt.kind, tt.dim)
			}
			if p.Bound() <= 0 {
				t.Errorf("bound %v, want positive", p.Bound())
			}
		})
	}
}

func TestLoadSpec(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "problem.yaml")
	content := "type: solve\nmatrix:\n  - [2, 1]\n  - [1, 3]\nrhs: [3, 5]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	if s.Type != "solve" || len(s.Matrix) != 2 || s.Matrix[1][1] != 3 || s.RHS[1] != 5 {
		t.Errorf("unexpected spec %+v", s)
	}

	if _, err := LoadSpec(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("type: [unterminated"), 0o600)
	if _, err := LoadSpec(bad); err == nil {
		t.Error("expected parse error")
	}
}
