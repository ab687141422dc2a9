package orchestration

import (
	"time"

	"github.com/agbru/crtcalc/internal/format"
	"github.com/agbru/crtcalc/internal/hybrid"
)

// ProgressTracker turns residue counts into a fraction and an ETA.
type ProgressTracker struct {
	state *format.ProgressWithETA
	last  hybrid.Progress
}

// NewProgressTracker starts the ETA clock.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{state: format.NewProgressWithETA()}
}

// Update records p and returns the fraction done and the estimate.
// Updates may arrive out of order from concurrent receivers; older counts
// are ignored.
func (t *ProgressTracker) Update(p hybrid.Progress) (float64, time.Duration) {
	if p.Received >= t.last.Received {
		t.last = p
	}
	return t.state.UpdateWithETA(t.last.Fraction())
}

// Last returns the most advanced update seen.
func (t *ProgressTracker) Last() hybrid.Progress { return t.last }

// Fraction returns the current fraction without updating.
func (t *ProgressTracker) Fraction() float64 { return t.state.Fraction() }

// Elapsed returns the time since the tracker was created.
func (t *ProgressTracker) Elapsed() time.Duration { return t.state.Elapsed() }

// ETA returns the current estimate without updating.
func (t *ProgressTracker) ETA() time.Duration { return t.state.GetETA() }

// DrainChannel discards updates until the channel is closed.
func DrainChannel(progressChan <-chan hybrid.Progress) {
	for range progressChan {
	}
}
