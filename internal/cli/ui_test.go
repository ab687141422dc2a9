package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/briandowns/spinner"

	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/ui"
)

// MockSpinner for testing
type MockSpinner struct {
	started  bool
	stopped  bool
	suffixes []string
}

func (m *MockSpinner) Start() { m.started = true }
func (m *MockSpinner) Stop()  { m.stopped = true }
func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.suffixes = append(m.suffixes, suffix)
}

func withMockSpinner(t *testing.T) *MockSpinner {
	t.Helper()
	original := newSpinner
	t.Cleanup(func() { newSpinner = original })
	mock := &MockSpinner{}
	newSpinner = func(...spinner.Option) Spinner { return mock }
	return mock
}

func TestDisplayProgress(t *testing.T) {
	ui.InitTheme(true)
	mock := withMockSpinner(t)

	ch := make(chan hybrid.Progress, 4)
	ch <- hybrid.Progress{Received: 1, Total: 4}
	ch <- hybrid.Progress{Received: 2, Total: 4}
	ch <- hybrid.Progress{Received: 4, Total: 4}
	close(ch)

	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, ch, &buf)
	wg.Wait()

	if !mock.started || !mock.stopped {
		t.Errorf("spinner started=%v stopped=%v, want both", mock.started, mock.stopped)
	}
	last := mock.suffixes[len(mock.suffixes)-1]
	if !strings.Contains(last, "4/4 residues") || !strings.Contains(last, "100.0%") {
		t.Errorf("last suffix = %q", last)
	}
	if !strings.Contains(buf.String(), "Folded 4/4 residues") {
		t.Errorf("final line missing: %q", buf.String())
	}
}

func TestDisplayProgressNoUpdates(t *testing.T) {
	ui.InitTheme(true)
	mock := withMockSpinner(t)

	ch := make(chan hybrid.Progress)
	close(ch)
	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, ch, &buf)
	wg.Wait()

	if !mock.stopped {
		t.Error("spinner not stopped")
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
