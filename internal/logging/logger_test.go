package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFieldHelpers(t *testing.T) {
	t.Parallel()

	failure := errors.New("noncoprime")
	tests := []struct {
		name      string
		field     Field
		wantKey   string
		wantValue any
	}{
		{"String", String("role", "coordinator"), "role", "coordinator"},
		{"Int", Int("tasks", 4), "tasks", 4},
		{"Uint64", Uint64("prime", 18446744073709551557), "prime", uint64(18446744073709551557)},
		{"Float64", Float64("bound", 20.5), "bound", 20.5},
		{"Err", Err(failure), "error", failure},
		{"Err nil", Err(nil), "error", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.field.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", tt.field.Key, tt.wantKey)
			}
			if tt.field.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", tt.field.Value, tt.wantValue)
			}
		})
	}
}

func TestNewLogger_IncludesComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, "coordinator")
	logger.Info("drain started", Int("pending", 7))

	for _, want := range []string{"coordinator", "drain started", `"pending":7`, "info"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output should contain %q, got: %s", want, buf.String())
		}
	}
}

func TestNewDefaultLoggerAndNop(t *testing.T) {
	t.Parallel()

	if NewDefaultLogger() == nil {
		t.Fatal("NewDefaultLogger returned nil")
	}
	Nop().Info("discarded")
}

func TestZerologAdapter_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		log      func(Logger)
		contains []string
	}{
		{
			name:     "error with cause and fields",
			log:      func(l Logger) { l.Error("progress failed", errors.New("noncoprime"), Uint64("prime", 1009)) },
			contains: []string{"progress failed", "noncoprime", "1009", "error"},
		},
		{
			name:     "error with nil cause",
			log:      func(l Logger) { l.Error("worker stopped", nil) },
			contains: []string{"worker stopped", "error"},
		},
		{
			name:     "debug",
			log:      func(l Logger) { l.Debug("residue sent", Int("rank", 2)) },
			contains: []string{"residue sent", "debug", `"rank":2`},
		},
		{
			name:     "printf",
			log:      func(l Logger) { l.Printf("%d of %d received", 3, 4) },
			contains: []string{"3 of 4 received"},
		},
		{
			name:     "println",
			log:      func(l Logger) { l.Println("worker", 3, "idle") },
			contains: []string{"worker 3 idle"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.log(NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel)))
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output should contain %q, got: %s", want, buf.String())
				}
			}
		})
	}
}

func TestZerologAdapter_FieldTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field    Field
		contains string
	}{
		{Field{Key: "s", Value: "rank-1"}, "rank-1"},
		{Field{Key: "i64", Value: int64(-9223372036854775808)}, "-9223372036854775808"},
		{Field{Key: "u64", Value: uint64(18446744073709551615)}, "18446744073709551615"},
		{Field{Key: "ok", Value: true}, "true"},
		{Field{Key: "cause", Value: errors.New("closed")}, "closed"},
		{Field{Key: "shape", Value: struct{ Dim int }{Dim: 3}}, "3"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		NewLogger(&buf, "test").Info("fields", tt.field)
		if !strings.Contains(buf.String(), tt.contains) {
			t.Errorf("field %q: output should contain %q, got: %s", tt.field.Key, tt.contains, buf.String())
		}
	}
}

func TestStdLoggerAdapter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		log      func(Logger)
		contains []string
	}{
		{"info", func(l Logger) { l.Info("assigned", Int("tasks", 2)) }, []string{"[INFO]", "assigned", "tasks=2"}},
		{"error", func(l Logger) { l.Error("send failed", errors.New("closed")) }, []string{"[ERROR]", "send failed", "error=closed"}},
		{"debug", func(l Logger) { l.Debug("prime drawn", Uint64("prime", 1013)) }, []string{"[DEBUG]", "prime=1013"}},
		{"printf", func(l Logger) { l.Printf("bound %d bits", 29) }, []string{"bound 29 bits"}},
		{"println", func(l Logger) { l.Println("a", "b") }, []string{"a b"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.log(NewStdLoggerAdapter(log.New(&buf, "", 0)))
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output should contain %q, got: %s", want, buf.String())
				}
			}
		})
	}
}
