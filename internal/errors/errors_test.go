package apperrors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := NewConfigError("invalid value %d for flag %s", 1, "--prime-bits")
	if err.Error() != "invalid value 1 for flag --prime-bits" {
		t.Errorf("Error() = %q", err.Error())
	}
	var cfgErr ConfigError
	if !errors.As(fmt.Errorf("loading: %w", err), &cfgErr) {
		t.Error("errors.As should find ConfigError through a wrap")
	}
}

func TestReconstructionError(t *testing.T) {
	t.Parallel()

	cause := errors.New("noncoprime")
	err := ReconstructionError{Phase: PhaseDrain, Rank: 0, Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
	for _, want := range []string{"drain", "rank 0", "noncoprime"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error() = %q, want it to contain %q", err.Error(), want)
		}
	}
}

func TestTimeoutValidationMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{TimeoutError{Operation: "drain", Limit: 5 * time.Second}, `operation "drain" timed out after 5s`},
		{ValidationError{Field: "threads", Message: "must be positive"}, `validation error for "threads": must be positive`},
		{MismatchError{Index: 2, Got: "7", Wanted: "8"}, "result mismatch at entry 2: got 7, sequential 8"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	if WrapError(nil, "ignored") != nil {
		t.Error("WrapError(nil) should be nil")
	}
	base := errors.New("connection refused")
	err := WrapError(base, "dial worker %d", 3)
	if err.Error() != "dial worker 3: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should match base")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{context.Canceled, true},
		{fmt.Errorf("recv: %w", context.DeadlineExceeded), true},
		{errors.New("other"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsContextError(tt.err); got != tt.want {
			t.Errorf("IsContextError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"nil", nil, ExitSuccess, ""},
		{"config", NewConfigError("bad run file"), ExitErrorConfig, "Configuration error: bad run file"},
		{"validation", ValidationError{Field: "n", Message: "too large"}, ExitErrorConfig, "Configuration error"},
		{"timeout", TimeoutError{Operation: "run", Limit: time.Second}, ExitErrorTimeout, "Timed out"},
		{"deadline", ReconstructionError{Phase: PhaseDrain, Cause: context.DeadlineExceeded}, ExitErrorTimeout, "Timed out"},
		{"canceled", fmt.Errorf("worker: %w", context.Canceled), ExitErrorCanceled, "Canceled."},
		{"mismatch", MismatchError{Index: 0, Got: "1", Wanted: "2"}, ExitErrorMismatch, "Error: result mismatch"},
		{"generic", errors.New("boom"), ExitErrorGeneric, "Error: boom"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if code := HandleError(tt.err, &buf); code != tt.wantCode {
				t.Errorf("HandleError code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(buf.String(), tt.wantOut) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.wantOut)
			}
		})
	}
}
