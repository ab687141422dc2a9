package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/orchestration"
	"github.com/agbru/crtcalc/internal/server"
	"github.com/agbru/crtcalc/internal/sysmon"
	"github.com/agbru/crtcalc/internal/transport"
)

// dialRetryInterval is the pause between attempts to reach a coordinator
// that is not listening yet.
const dialRetryInterval = 250 * time.Millisecond

// dialWithRetry connects a worker, retrying network failures until the
// coordinator accepts or ctx ends, so workers may start first.
func dialWithRetry(ctx context.Context, addr string, rank int, logger zerolog.Logger) (*transport.RPCWorker, error) {
	ticker := time.NewTicker(dialRetryInterval)
	defer ticker.Stop()
	for attempt := 1; ; attempt++ {
		w, err := transport.DialWorker(ctx, addr, rank)
		if err == nil {
			logger.Info().Str("addr", addr).Int("rank", rank).Int("cluster_size", w.Size()).Msg("connected to coordinator")
			return w, nil
		}
		var opErr *net.OpError
		if !errors.As(err, &opErr) {
			return nil, err
		}
		logger.Debug().Err(err).Int("attempt", attempt).Msg("coordinator not reachable yet")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("coordinator at %s unreachable: %w (last attempt: %v)", addr, ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

// statusRecorder keeps the latest progress for the /status endpoint.
type statusRecorder struct {
	role string
	rank int

	mu     sync.Mutex
	last   hybrid.Progress
	system sysmon.Stats
	done   bool
}

func (s *statusRecorder) record(p hybrid.Progress) {
	s.mu.Lock()
	s.last = p
	s.mu.Unlock()
}

func (s *statusRecorder) sampled(st sysmon.Stats) {
	s.mu.Lock()
	s.system = st
	s.mu.Unlock()
}

func (s *statusRecorder) finish() {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
}

// Status implements server.StatusFunc.
func (s *statusRecorder) Status() server.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return server.Status{
		Role:     s.role,
		Rank:     s.rank,
		Received: s.last.Received,
		Total:    s.last.Total,
		Done:     s.done,

		CPUPercent: s.system.CPUPercent,
		MemPercent: s.system.MemPercent,
	}
}

// wrap records every update before handing it to inner.
func (s *statusRecorder) wrap(inner orchestration.ProgressReporter) orchestration.ProgressReporter {
	return orchestration.ProgressReporterFunc(func(wg *sync.WaitGroup, progressChan <-chan hybrid.Progress, out io.Writer) {
		defer wg.Done()
		relay := make(chan hybrid.Progress, orchestration.ProgressBufferSize)
		var innerWg sync.WaitGroup
		innerWg.Add(1)
		go inner.DisplayProgress(&innerWg, relay, out)
		for p := range progressChan {
			s.record(p)
			relay <- p
		}
		close(relay)
		innerWg.Wait()
	})
}
