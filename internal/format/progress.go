// Package format holds the pure string formatting used by the CLI: durations,
// byte sizes, digit grouping and the residue progress bar with its ETA.
package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// etaSmoothing is the weight of the newest rate sample.
	etaSmoothing = 0.3
	// maxETA caps estimates made from very slow early samples.
	maxETA = 24 * time.Hour
)

// ProgressWithETA tracks the fraction of residues received and estimates
// the remaining time from an exponentially smoothed rate.
type ProgressWithETA struct {
	mu           sync.Mutex
	fraction     float64
	lastUpdate   time.Time
	startTime    time.Time
	progressRate float64 // fraction per second
}

// NewProgressWithETA starts the clock.
func NewProgressWithETA() *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{startTime: now, lastUpdate: now}
}

// Update records a new fraction, clamped to [0, 1].
func (p *ProgressWithETA) Update(fraction float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.update(fraction, time.Now())
}

func (p *ProgressWithETA) update(fraction float64, now time.Time) {
	fraction = clamp(fraction)
	if dt := now.Sub(p.lastUpdate).Seconds(); dt > 0 && fraction > p.fraction {
		sample := (fraction - p.fraction) / dt
		if p.progressRate == 0 {
			p.progressRate = sample
		} else {
			p.progressRate = etaSmoothing*sample + (1-etaSmoothing)*p.progressRate
		}
	}
	p.fraction = fraction
	p.lastUpdate = now
}

// UpdateWithETA records fraction and returns it with the new estimate.
func (p *ProgressWithETA) UpdateWithETA(fraction float64) (float64, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.update(fraction, time.Now())
	return p.fraction, p.eta()
}

// Fraction returns the last recorded fraction.
func (p *ProgressWithETA) Fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fraction
}

// GetETA returns the current estimate, zero when unknown.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eta()
}

// Elapsed returns the time since construction.
func (p *ProgressWithETA) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

func (p *ProgressWithETA) eta() time.Duration {
	if p.progressRate <= 0 || p.fraction >= 1 {
		return 0
	}
	secs := (1 - p.fraction) / p.progressRate
	if secs >= maxETA.Seconds() {
		return maxETA
	}
	return time.Duration(secs * float64(time.Second))
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// FormatETA renders an estimate compactly: "45s", "2m30s", "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		if s := int(eta.Seconds()) % 60; s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(eta.Hours())
	if m := int(eta.Minutes()) % 60; m > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

// ProgressBar draws a bar of length runes.
func ProgressBar(progress float64, length int) string {
	count := int(clamp(progress) * float64(length))
	var b strings.Builder
	b.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			b.WriteRune('█')
		} else {
			b.WriteRune('░')
		}
	}
	return b.String()
}

// FormatProgressBarWithETA renders "[bar]  42.0% ETA: 1m3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), clamp(progress)*100, FormatETA(eta))
}

// FormatNumberString inserts thousands separators into a decimal string.
func FormatNumberString(s string) string {
	if s == "" {
		return s
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 1)
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
