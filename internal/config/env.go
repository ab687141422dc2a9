package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// isFlagSetAny reports whether any of names was given on the command line.
func isFlagSetAny(fs *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if f := fs.Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}

// envOverride maps one CRTCALC_ variable to the flags that shadow it.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// Invalid numbers and durations are ignored; Validate reports the result.
var envOverrides = []envOverride{
	// Numeric
	{"N", []string{"n"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.N = parsed
		}
	}},
	{"SIZE", []string{"size"}, intSetter(func(c *AppConfig) *int { return &c.Size })},
	{"SEED", []string{"seed"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}},
	{"PARTICIPANTS", []string{"participants"}, intSetter(func(c *AppConfig) *int { return &c.Participants })},
	{"RANK", []string{"rank"}, intSetter(func(c *AppConfig) *int { return &c.Rank })},
	{"THREADS", []string{"threads"}, intSetter(func(c *AppConfig) *int { return &c.Threads })},
	{"PRIME_BITS", []string{"prime-bits"}, intSetter(func(c *AppConfig) *int { return &c.PrimeBits })},

	// Duration
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String
	{"PROBLEM", []string{"problem"}, func(c *AppConfig, v string) { c.Problem = v }},
	{"PROBLEM_FILE", []string{"problem-file"}, func(c *AppConfig, v string) { c.ProblemFile = v }},
	{"ADDR", []string{"addr"}, func(c *AppConfig, v string) { c.Addr = v }},
	{"KIND", []string{"kind"}, func(c *AppConfig, v string) { c.Kind = v }},
	{"OUTPUT", []string{"output"}, func(c *AppConfig, v string) { c.OutputFile = v }},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) { c.LogLevel = strings.ToLower(v) }},
	{"METRICS_ADDR", []string{"metrics-addr"}, func(c *AppConfig, v string) { c.MetricsAddr = v }},
	{"GC", []string{"gc"}, func(c *AppConfig, v string) { c.GCMode = v }},

	// Boolean
	{"QUIET", []string{"quiet"}, func(c *AppConfig, v string) { c.Quiet = parseBoolEnv(v, c.Quiet) }},
	{"VERBOSE", []string{"verbose"}, func(c *AppConfig, v string) { c.Verbose = parseBoolEnv(v, c.Verbose) }},
	{"VERIFY", []string{"verify"}, func(c *AppConfig, v string) { c.Verify = parseBoolEnv(v, c.Verify) }},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) { c.NoColor = parseBoolEnv(v, c.NoColor) }},
}

func intSetter(field func(*AppConfig) *int) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			*field(c) = parsed
		}
	}
}

// parseBoolEnv accepts true/1/yes and false/0/no in any case.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies every CRTCALC_ variable whose flag was not set
// on the command line.
func applyEnvOverrides(cfg *AppConfig, fs *pflag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(cfg, val)
		}
	}
}
