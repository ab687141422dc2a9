// Package config resolves the crtcalc run configuration. Values come from,
// in decreasing priority: command-line flags, CRTCALC_* environment
// variables, the YAML run file named by --config, and built-in defaults.
package config

import (
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	apperrors "github.com/agbru/crtcalc/internal/errors"
	"github.com/agbru/crtcalc/internal/field"
	"github.com/agbru/crtcalc/internal/primes"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CRTCALC_"

// Roles a process can play. RoleLocal runs every participant in-process.
const (
	RoleLocal       = "local"
	RoleCoordinator = "coordinator"
	RoleWorker      = "worker"
)

// DefaultAddr is the coordinator listen address.
const DefaultAddr = "127.0.0.1:7070"

// AppConfig is the resolved configuration of one crtcalc process.
type AppConfig struct {
	ConfigFile string

	// Problem selection.
	Problem     string
	ProblemFile string
	N           uint64
	Size        int
	Seed        uint64

	// Cluster layout.
	Role         string
	Participants int
	Rank         int
	Addr         string
	Threads      int
	PrimeBits    int

	// Output and lifecycle.
	Kind        string
	Timeout     time.Duration
	OutputFile  string
	Quiet       bool
	Verbose     bool
	Verify      bool
	NoColor     bool
	LogLevel    string
	MetricsAddr string
	GCMode      string
}

// Default returns the configuration before any flag, variable or file.
func Default() AppConfig {
	return AppConfig{
		Problem:      "det",
		N:            1000,
		Size:         8,
		Seed:         1,
		Role:         RoleLocal,
		Participants: 1,
		Addr:         DefaultAddr,
		PrimeBits:    primes.DefaultBits,
		LogLevel:     "warn",
		GCMode:       "auto",
	}
}

// RegisterFlags binds cfg to fs. Flags that only make sense for one role
// are still registered everywhere so that run files stay portable.
func RegisterFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML run file")
	fs.StringVar(&cfg.Problem, "problem", cfg.Problem, "problem type: det, solve or fib")
	fs.StringVar(&cfg.ProblemFile, "problem-file", cfg.ProblemFile, "YAML problem file (matrix, rhs, n)")
	fs.Uint64VarP(&cfg.N, "n", "n", cfg.N, "Fibonacci index for --problem fib")
	fs.IntVar(&cfg.Size, "size", cfg.Size, "dimension of the generated matrix")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed of the generated matrix")
	fs.IntVarP(&cfg.Participants, "participants", "p", cfg.Participants, "number of participants, coordinator included")
	fs.IntVar(&cfg.Rank, "rank", cfg.Rank, "worker rank (1..participants-1)")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "coordinator address")
	fs.IntVarP(&cfg.Threads, "threads", "t", cfg.Threads, "threads per participant (0 = adaptive)")
	fs.IntVar(&cfg.PrimeBits, "prime-bits", cfg.PrimeBits, "size of the moduli in bits")
	fs.StringVar(&cfg.Kind, "kind", cfg.Kind, "result kind: integer, signed or rational (default per problem)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "abort after this long (0 = no limit)")
	fs.StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "write the result to this file")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, "print only the result")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "print the full result")
	fs.BoolVar(&cfg.Verify, "verify", cfg.Verify, "recompute sequentially and compare")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "disable colours")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics on this address")
	fs.StringVar(&cfg.GCMode, "gc", cfg.GCMode, "garbage collector mode: auto, aggressive or disabled")
}

// Resolve layers the run file and the environment under the flags that
// were set explicitly on fs.
func Resolve(cfg *AppConfig, fs *pflag.FlagSet) error {
	if !fs.Changed("config") {
		cfg.ConfigFile = getEnvString("CONFIG", cfg.ConfigFile)
	}
	if cfg.ConfigFile != "" {
		rf, err := LoadRunFile(cfg.ConfigFile)
		if err != nil {
			return apperrors.NewConfigError("%v", err)
		}
		applyRunFile(cfg, rf, fs)
	}
	applyEnvOverrides(cfg, fs)
	return nil
}

var (
	problemTypes = []string{"det", "determinant", "solve", "fib", "fibonacci"}
	kinds        = []string{"", "integer", "int", "signed", "rational"}
	logLevels    = []string{"debug", "info", "warn", "error"}
	gcModes      = []string{"auto", "aggressive", "disabled"}
)

// Validate checks the configuration for the process role.
func (c AppConfig) Validate() error {
	if c.ProblemFile == "" && !slices.Contains(problemTypes, strings.ToLower(c.Problem)) {
		return apperrors.NewConfigError("unknown problem %q (want det, solve or fib)", c.Problem)
	}
	if c.ProblemFile == "" && c.Problem != "fib" && c.Problem != "fibonacci" && c.Size < 1 {
		return apperrors.NewConfigError("--size must be positive, got %d", c.Size)
	}
	if c.Participants < 1 {
		return apperrors.NewConfigError("--participants must be at least 1, got %d", c.Participants)
	}
	if c.Threads < 0 {
		return apperrors.NewConfigError("--threads must be non-negative, got %d", c.Threads)
	}
	if c.PrimeBits < primes.MinBits || c.PrimeBits > field.MaxModulusBits {
		return apperrors.NewConfigError("--prime-bits must be in [%d, %d], got %d", primes.MinBits, field.MaxModulusBits, c.PrimeBits)
	}
	if c.Timeout < 0 {
		return apperrors.NewConfigError("--timeout must be non-negative, got %s", c.Timeout)
	}
	if !slices.Contains(kinds, strings.ToLower(c.Kind)) {
		return apperrors.NewConfigError("unknown result kind %q", c.Kind)
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return apperrors.NewConfigError("unknown log level %q", c.LogLevel)
	}
	if !slices.Contains(gcModes, c.GCMode) {
		return apperrors.NewConfigError("unknown gc mode %q", c.GCMode)
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}

	switch c.Role {
	case RoleLocal:
	case RoleCoordinator:
		if c.Addr == "" {
			return apperrors.NewConfigError("coordinator needs --addr")
		}
	case RoleWorker:
		if c.Addr == "" {
			return apperrors.NewConfigError("worker needs --addr")
		}
		if c.Rank < 1 {
			return apperrors.NewConfigError("worker --rank must be at least 1, got %d", c.Rank)
		}
		if c.Verify {
			return apperrors.NewConfigError("--verify is only available where the result is held")
		}
	default:
		return apperrors.NewConfigError("unknown role %q", c.Role)
	}
	return nil
}
