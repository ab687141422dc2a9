package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2
	ExitErrorMismatch = 3 // distributed and sequential results differ (--verify)
	ExitErrorConfig   = 4
	ExitErrorCanceled = 130 // SIGINT
)

// ConfigError reports invalid user configuration: flags, environment or
// run file.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// Reconstruction phases reported by ReconstructionError.
const (
	PhaseAssign  = "assign"
	PhaseSeed    = "seed"
	PhaseDrain   = "drain"
	PhaseCompute = "compute"
	PhaseResult  = "result"
)

// ReconstructionError wraps a failure of the distributed reconstruction,
// tagged with the protocol phase and the participant rank.
type ReconstructionError struct {
	Phase string
	Rank  int
	Cause error
}

func (e ReconstructionError) Error() string {
	return fmt.Sprintf("reconstruction failed at %s (rank %d): %v", e.Phase, e.Rank, e.Cause)
}

func (e ReconstructionError) Unwrap() error { return e.Cause }

// TimeoutError reports that an operation exceeded its deadline.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError reports an invalid input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// MismatchError reports that two reconstructions of the same problem
// disagree.
type MismatchError struct {
	Index       int
	Got, Wanted string
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("result mismatch at entry %d: got %s, sequential %s", e.Index, e.Got, e.Wanted)
}

// WrapError adds context to err with %w, or returns nil for a nil err.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err is a cancellation or deadline error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	var (
		cfgErr      ConfigError
		validErr    ValidationError
		timeoutErr  TimeoutError
		mismatchErr MismatchError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr), errors.As(err, &validErr):
		return ExitErrorConfig
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &mismatchErr):
		return ExitErrorMismatch
	default:
		return ExitErrorGeneric
	}
}

// HandleError prints a one-line description of err to out and returns the
// matching exit code.
func HandleError(err error, out io.Writer) int {
	code := ExitCode(err)
	switch code {
	case ExitSuccess:
	case ExitErrorConfig:
		fmt.Fprintf(out, "Configuration error: %v\n", err)
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Timed out: %v\n", err)
	case ExitErrorCanceled:
		fmt.Fprintln(out, "Canceled.")
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
	}
	return code
}
