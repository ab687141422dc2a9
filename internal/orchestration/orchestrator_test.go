package orchestration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/agbru/crtcalc/internal/errors"
	"github.com/agbru/crtcalc/internal/field"
	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/problems"
)

// countingReporter records how many updates it saw.
type countingReporter struct {
	updates atomic.Int64
	last    atomic.Int64
}

func (c *countingReporter) DisplayProgress(wg *sync.WaitGroup, ch <-chan hybrid.Progress, _ io.Writer) {
	defer wg.Done()
	for p := range ch {
		c.updates.Add(1)
		c.last.Store(int64(p.Received))
	}
}

// recordingPresenter keeps the last presented result.
type recordingPresenter struct {
	got *Result
}

func (r *recordingPresenter) PresentResult(res Result, _ PresentationOptions, out io.Writer) {
	r.got = &res
	io.WriteString(out, "presented\n")
}

func mustDet(t *testing.T, m [][]int64) problems.Problem {
	t.Helper()
	p, err := problems.NewDeterminant(m)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExecute_LocalClusterSizes(t *testing.T) {
	t.Parallel()
	m := [][]int64{{3, -1, 4}, {1, 5, -9}, {2, 6, 5}} // det 244
	for size := 1; size <= 4; size++ {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			t.Parallel()
			rep := &countingReporter{}
			res := Execute(context.Background(), mustDet(t, m), Options{
				Participants: size,
				Hybrid:       hybrid.Config{PrimeBits: 10, Threads: 2},
				Kind:         hybrid.Signed,
			}, rep, io.Discard)

			if res.Err != nil {
				t.Fatalf("Execute: %v", res.Err)
			}
			if len(res.Values) != 1 || res.Values[0].Cmp(big.NewRat(244, 1)) != 0 {
				t.Errorf("det = %v, want 244", res.Values)
			}
			if res.Problem != "det" || res.Duration <= 0 {
				t.Errorf("result metadata %q %v", res.Problem, res.Duration)
			}
			if rep.updates.Load() == 0 {
				t.Error("reporter saw no progress")
			}
			if int(rep.last.Load()) > res.Outcome.Residues {
				t.Errorf("progress %d beyond residues %d", rep.last.Load(), res.Outcome.Residues)
			}
		})
	}
}

func TestExecute_FailingIterationDoesNotHang(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	p := failing{err: boom}
	done := make(chan Result, 1)
	go func() {
		done <- Execute(context.Background(), p, Options{
			Participants: 3,
			Hybrid:       hybrid.Config{PrimeBits: 12, Threads: 2},
		}, NullProgressReporter{}, io.Discard)
	}()

	select {
	case res := <-done:
		if !errors.Is(res.Err, boom) {
			t.Errorf("error = %v, want boom", res.Err)
		}
		if res.Values != nil {
			t.Error("failed run carried values")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Execute deadlocked on a failing iteration")
	}
}

func TestExecute_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Execute(ctx, mustDet(t, [][]int64{{2}}), Options{Participants: 2}, NullProgressReporter{}, io.Discard)
	if !apperrors.IsContextError(res.Err) {
		t.Errorf("error = %v, want a context error", res.Err)
	}
}

// failing fails every residue after a short delay.
type failing struct{ err error }

func (failing) Name() string          { return "failing" }
func (failing) Dimension() int        { return 1 }
func (failing) Bound() float64        { return 200 }
func (failing) Kind() hybrid.Kind     { return hybrid.Integer }
func (f failing) Iteration() hybrid.Iteration {
	return func(ctx context.Context, _ field.Modular) ([]uint64, error) {
		select {
		case <-time.After(time.Millisecond):
			return nil, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()
	p, err := problems.NewFibonacci(300)
	if err != nil {
		t.Fatal(err)
	}
	res := Execute(context.Background(), p, Options{
		Participants: 3,
		Hybrid:       hybrid.Config{PrimeBits: 16, Threads: 2},
		Kind:         hybrid.Integer,
	}, NullProgressReporter{}, io.Discard)
	if res.Err != nil {
		t.Fatalf("Execute: %v", res.Err)
	}

	cfg := hybrid.Config{PrimeBits: 16}
	if err := Verify(context.Background(), p, cfg, hybrid.Integer, res.Values); err != nil {
		t.Fatalf("Verify of a correct result: %v", err)
	}

	tampered := []*big.Rat{new(big.Rat).Add(res.Values[0], big.NewRat(1, 1))}
	err = Verify(context.Background(), p, cfg, hybrid.Integer, tampered)
	var mismatch apperrors.MismatchError
	if !errors.As(err, &mismatch) || mismatch.Index != 0 {
		t.Fatalf("Verify of a tampered result = %v, want MismatchError", err)
	}
	if apperrors.ExitCode(err) != apperrors.ExitErrorMismatch {
		t.Errorf("exit code %d", apperrors.ExitCode(err))
	}
}

func TestAnalyzeResult(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		pr := &recordingPresenter{}
		code := AnalyzeResult(Result{Problem: "fib", Values: []*big.Rat{big.NewRat(55, 1)}}, PresentationOptions{}, pr, &out)
		if code != apperrors.ExitSuccess || pr.got == nil || pr.got.Problem != "fib" {
			t.Errorf("code %d, presented %+v", code, pr.got)
		}
	})

	t.Run("reconstruction failure", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		pr := &recordingPresenter{}
		err := apperrors.ReconstructionError{Phase: apperrors.PhaseDrain, Cause: errors.New("lost worker")}
		code := AnalyzeResult(Result{Err: err}, PresentationOptions{}, pr, &out)
		if code != apperrors.ExitErrorGeneric {
			t.Errorf("code = %d", code)
		}
		if pr.got != nil {
			t.Error("presenter called on failure")
		}
		if !strings.Contains(out.String(), "during drain") || !strings.Contains(out.String(), "lost worker") {
			t.Errorf("output: %q", out.String())
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		code := AnalyzeResult(Result{Err: context.DeadlineExceeded}, PresentationOptions{Quiet: true}, &recordingPresenter{}, io.Discard)
		if code != apperrors.ExitErrorTimeout {
			t.Errorf("code = %d, want %d", code, apperrors.ExitErrorTimeout)
		}
	})
}

func TestRunLocalCluster_WorkersHoldNoResult(t *testing.T) {
	t.Parallel()
	p := mustDet(t, [][]int64{{7, 1}, {2, 3}})
	outcomes, err := RunLocalCluster(context.Background(), 4, hybrid.Config{
		Dimension: 1, Bound: p.Bound(), PrimeBits: 8, Threads: 1,
	}, p.Iteration())
	if err != nil {
		t.Fatalf("RunLocalCluster: %v", err)
	}
	if !outcomes[0].HasResult() {
		t.Fatal("coordinator has no result")
	}
	for _, o := range outcomes[1:] {
		if o.HasResult() || o.Role != hybrid.RoleWorker {
			t.Errorf("rank %d: role %v result %v", o.Rank, o.Role, o.HasResult())
		}
	}
	got, _ := outcomes[0].Signed()
	if got[0].Int64() != 19 {
		t.Errorf("det = %v, want 19", got[0])
	}
}

func TestProgressTracker(t *testing.T) {
	t.Parallel()
	tr := NewProgressTracker()
	tr.Update(hybrid.Progress{Received: 3, Total: 4})
	frac, _ := tr.Update(hybrid.Progress{Received: 1, Total: 4})
	if frac != 0.75 || tr.Last().Received != 3 {
		t.Errorf("stale update regressed progress: %v %+v", frac, tr.Last())
	}
	if tr.Fraction() != 0.75 {
		t.Errorf("Fraction = %v", tr.Fraction())
	}
}
