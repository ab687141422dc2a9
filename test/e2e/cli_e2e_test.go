package e2e

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

// buildBinary compiles cmd/crtcalc into a temporary directory.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "crtcalc"
	if runtime.GOOS == "windows" {
		binName = "crtcalc.exe"
	}
	binPath := filepath.Join(t.TempDir(), binName)

	// go test runs in test/e2e; build from the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/crtcalc")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build crtcalc: %v", err)
	}
	return binPath
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().String()
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

// TestCLI_E2E verifies the built binary functions correctly
func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binPath := buildBinary(t)

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{"Fibonacci", []string{"run", "--problem", "fib", "-n", "10", "-q"}, "55", 0},
		{"Help", []string{"--help"}, "usage", 0},
		{"Version", []string{"version"}, "crtcalc", 0},
		{"Local cluster determinant", []string{"run", "--problem", "det", "--size", "6", "-p", "4"}, "reconstruction", 0},
		{"Verified solve", []string{"run", "--problem", "solve", "--size", "4", "-p", "3", "--verify"}, "verified", 0},
		{"Config error", []string{"run", "--prime-bits", "2"}, "configuration error", 4},
		{"Coordinator timeout without workers", []string{"coordinator", "-p", "3", "--addr", "127.0.0.1:0", "--timeout", "500ms"}, "timed out", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", got, tt.wantCode, outStr)
			}
			if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}
}

// TestCLI_E2E_Cluster runs a coordinator and its workers as separate
// processes over TCP and compares the result with a local run.
func TestCLI_E2E_Cluster(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binPath := buildBinary(t)
	problem := []string{"--problem", "solve", "--size", "5", "--seed", "42", "-q", "--prime-bits", "24"}

	local, err := exec.Command(binPath, append([]string{"run"}, problem...)...).Output()
	if err != nil {
		t.Fatalf("local run: %v", err)
	}

	const participants = 4
	addr := freeAddr(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	outputs := make([]bytes.Buffer, participants)
	errs := make([]error, participants)
	var wg sync.WaitGroup
	for rank := 0; rank < participants; rank++ {
		args := []string{"coordinator"}
		if rank > 0 {
			args = []string{"worker", "--rank", fmt.Sprint(rank)}
		}
		args = append(args, "--addr", addr, "-p", fmt.Sprint(participants), "-t", "2")
		args = append(args, problem...)

		cmd := exec.CommandContext(ctx, binPath, args...)
		cmd.Stdout = &outputs[rank]
		cmd.Stderr = os.Stderr
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[rank] = cmd.Run()
		}()
	}
	wg.Wait()

	for rank, err := range errs {
		if err != nil {
			t.Errorf("rank %d: %v", rank, err)
		}
	}
	if got := outputs[0].String(); got != string(local) {
		t.Errorf("cluster result differs from local run:\ncluster:\n%s\nlocal:\n%s", got, local)
	}
}
