package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// RunFile is the YAML form of a run. Zero values leave the current setting
// untouched.
//
//	problem: solve
//	problem_file: system.yaml
//	cluster:
//	  participants: 4
//	  threads: 2
//	  prime_bits: 31
//	timeout: 2m
type RunFile struct {
	Problem     string      `yaml:"problem"`
	ProblemFile string      `yaml:"problem_file"`
	N           uint64      `yaml:"n"`
	Size        int         `yaml:"size"`
	Seed        uint64      `yaml:"seed"`
	Cluster     ClusterFile `yaml:"cluster"`
	Kind        string      `yaml:"kind"`
	Timeout     string      `yaml:"timeout"`
	Output      string      `yaml:"output"`
	LogLevel    string      `yaml:"log_level"`
	MetricsAddr string      `yaml:"metrics_addr"`
	GC          string      `yaml:"gc"`
}

// ClusterFile groups the cluster layout settings.
type ClusterFile struct {
	Participants int    `yaml:"participants"`
	Threads      int    `yaml:"threads"`
	PrimeBits    int    `yaml:"prime_bits"`
	Addr         string `yaml:"addr"`
}

// LoadRunFile reads and parses a run file.
func LoadRunFile(path string) (RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunFile{}, fmt.Errorf("failed to read run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return RunFile{}, fmt.Errorf("failed to parse run file %s: %w", path, err)
	}
	if rf.Timeout != "" {
		if _, err := time.ParseDuration(rf.Timeout); err != nil {
			return RunFile{}, fmt.Errorf("run file %s: invalid timeout: %w", path, err)
		}
	}
	return rf, nil
}

// fileField copies one run file setting unless its flag was set.
type fileField struct {
	flag  string
	apply func(*AppConfig, RunFile)
}

var fileFields = []fileField{
	{"problem", func(c *AppConfig, f RunFile) { setString(&c.Problem, f.Problem) }},
	{"problem-file", func(c *AppConfig, f RunFile) { setString(&c.ProblemFile, f.ProblemFile) }},
	{"n", func(c *AppConfig, f RunFile) {
		if f.N != 0 {
			c.N = f.N
		}
	}},
	{"size", func(c *AppConfig, f RunFile) { setInt(&c.Size, f.Size) }},
	{"seed", func(c *AppConfig, f RunFile) {
		if f.Seed != 0 {
			c.Seed = f.Seed
		}
	}},
	{"participants", func(c *AppConfig, f RunFile) { setInt(&c.Participants, f.Cluster.Participants) }},
	{"threads", func(c *AppConfig, f RunFile) { setInt(&c.Threads, f.Cluster.Threads) }},
	{"prime-bits", func(c *AppConfig, f RunFile) { setInt(&c.PrimeBits, f.Cluster.PrimeBits) }},
	{"addr", func(c *AppConfig, f RunFile) { setString(&c.Addr, f.Cluster.Addr) }},
	{"kind", func(c *AppConfig, f RunFile) { setString(&c.Kind, f.Kind) }},
	{"timeout", func(c *AppConfig, f RunFile) {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			c.Timeout = d
		}
	}},
	{"output", func(c *AppConfig, f RunFile) { setString(&c.OutputFile, f.Output) }},
	{"log-level", func(c *AppConfig, f RunFile) { setString(&c.LogLevel, f.LogLevel) }},
	{"metrics-addr", func(c *AppConfig, f RunFile) { setString(&c.MetricsAddr, f.MetricsAddr) }},
	{"gc", func(c *AppConfig, f RunFile) { setString(&c.GCMode, f.GC) }},
}

func applyRunFile(cfg *AppConfig, rf RunFile, fs *pflag.FlagSet) {
	for _, f := range fileFields {
		if isFlagSetAny(fs, f.flag) {
			continue
		}
		f.apply(cfg, rf)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
