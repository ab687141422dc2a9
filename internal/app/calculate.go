package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/crtcalc/internal/cli"
	"github.com/agbru/crtcalc/internal/config"
	"github.com/agbru/crtcalc/internal/crt"
	apperrors "github.com/agbru/crtcalc/internal/errors"
	"github.com/agbru/crtcalc/internal/format"
	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/memory"
	"github.com/agbru/crtcalc/internal/metrics"
	"github.com/agbru/crtcalc/internal/orchestration"
	"github.com/agbru/crtcalc/internal/server"
	"github.com/agbru/crtcalc/internal/sysmon"
	"github.com/agbru/crtcalc/internal/transport"
)

// systemSampleInterval is how often host usage is sampled while the metrics
// server runs.
const systemSampleInterval = 2 * time.Second

// runCalculate orchestrates one reconstruction for the configured role.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	cfg := a.Config

	p, err := orchestration.SelectProblem(cfg)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}
	kind, err := orchestration.ResolveKind(cfg.Kind, p)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}

	// Setup lifecycle (timeout + signals)
	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Timeout)
		defer cancelTimeout()
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	status := &statusRecorder{role: cfg.Role, rank: cfg.Rank}
	if cfg.MetricsAddr != "" {
		srv := server.New(cfg.MetricsAddr, a.metrics, a.Logger(), server.WithStatus(status.Status))
		if err := srv.Start(); err != nil {
			return apperrors.HandleError(apperrors.NewConfigError("%v", err), a.ErrWriter)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if !cfg.Quiet {
			fmt.Fprintf(out, "Metrics served on http://%s/metrics\n", srv.Addr())
		}

		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		go sysmon.Watch(watchCtx, systemSampleInterval, func(st sysmon.Stats) {
			a.metrics.SetSystemUsage(st.CPUPercent, st.MemPercent)
			status.sampled(st)
		})
	}

	comm, err := a.connect(ctx)
	if err != nil {
		return apperrors.HandleError(a.timeoutAware(err), a.ErrWriter)
	}
	if comm != nil {
		defer comm.Close()
	}

	if !cfg.Quiet {
		cli.PrintExecutionConfig(cfg, p, out)
	}

	// Choose progress reporter based on quiet mode
	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if cfg.Quiet {
		progressOut = io.Discard
		reporter = orchestration.NullProgressReporter{}
	}

	gc := memory.NewGCController(memory.GCMode(cfg.GCMode), p.Dimension(), crt.BoundBits(p.Bound()))
	gc.SetLogger(a.logger)
	mem := metrics.NewMemoryCollector()
	before := mem.Snapshot()
	cpuBefore := sysmon.ProcessCPU()

	gc.Begin()
	res := orchestration.Execute(ctx, p, orchestration.Options{
		Comm:         comm,
		Participants: cfg.Participants,
		Hybrid:       a.hybridConfig(),
		Kind:         kind,
	}, status.wrap(reporter), progressOut)
	gc.End()
	status.finish()

	if res.Err == nil && cfg.Verify && res.Values != nil {
		res.Err = orchestration.Verify(ctx, p, a.hybridConfig(), kind, res.Values)
		if res.Err == nil && !cfg.Quiet {
			fmt.Fprintln(out, "Verified against a sequential reconstruction.")
		}
	}
	res.Err = a.timeoutAware(res.Err)

	opts := orchestration.PresentationOptions{Verbose: cfg.Verbose, Quiet: cfg.Quiet}
	code := orchestration.AnalyzeResult(res, opts, cli.CLIResultPresenter{OutputFile: cfg.OutputFile}, out)

	if cfg.Verbose {
		a.printResourceStats(out, gc, metrics.PeakDelta(before, mem.Snapshot()), sysmon.ProcessCPU().Sub(cpuBefore))
	}
	return code
}

func (a *Application) hybridConfig() hybrid.Config {
	return hybrid.Config{
		PrimeBits: a.Config.PrimeBits,
		Threads:   a.Config.Threads,
		Logger:    a.Logger(),
		Metrics:   a.metrics,
	}
}

// connect opens the TCP endpoint for cluster roles. Local runs return nil
// and get an in-process cluster from orchestration.
func (a *Application) connect(ctx context.Context) (transport.Communicator, error) {
	switch a.Config.Role {
	case config.RoleCoordinator:
		c, err := transport.ListenCoordinator(a.Config.Addr, a.Config.Participants)
		if err != nil {
			return nil, err
		}
		a.logger.Info().Str("addr", c.Addr()).Int("participants", a.Config.Participants).Msg("coordinator listening")
		return c, nil
	case config.RoleWorker:
		w, err := dialWithRetry(ctx, a.Config.Addr, a.Config.Rank, a.logger)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return nil, nil
}

// timeoutAware replaces a deadline error with a TimeoutError naming the
// configured limit.
func (a *Application) timeoutAware(err error) error {
	if err != nil && a.Config.Timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		return apperrors.TimeoutError{Operation: "reconstruction", Limit: a.Config.Timeout}
	}
	return err
}

func (a *Application) printResourceStats(out io.Writer, gc *memory.GCController, peak uint64, cpu sysmon.CPUTime) {
	fmt.Fprintf(out, "Heap growth during run: %s\n", format.FormatBytes(peak))
	if cpu.Total() > 0 {
		fmt.Fprintf(out, "Process CPU time: %s user, %s system\n",
			format.FormatExecutionDuration(cpu.User), format.FormatExecutionDuration(cpu.System))
	}
	if !gc.Active() {
		return
	}
	st := gc.Stats()
	fmt.Fprintf(out, "GC paused: %d collections, %s allocated, %s in pauses\n",
		st.NumGC, format.FormatBytes(st.TotalAlloc), time.Duration(st.PauseTotalNs))
}
