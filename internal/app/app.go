// Package app ties configuration, problem selection, transport and
// presentation together into one crtcalc process.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/agbru/crtcalc/internal/cli"
	"github.com/agbru/crtcalc/internal/config"
	"github.com/agbru/crtcalc/internal/logging"
	"github.com/agbru/crtcalc/internal/metrics"
	"github.com/agbru/crtcalc/internal/ui"
)

// Application represents one crtcalc process: a local run, a coordinator
// or a worker.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithMetrics makes the application record into m instead of creating its
// own registry when --metrics-addr is set.
func WithMetrics(m *metrics.Metrics) AppOption {
	return func(a *Application) { a.metrics = m }
}

// New validates cfg and fills the adaptive thread count.
func New(cfg config.AppConfig, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &Application{
		Config:    config.ApplyAdaptiveThreads(cfg),
		ErrWriter: errWriter,
	}
	for _, opt := range opts {
		opt(app)
	}
	app.logger = newLogger(app.Config, errWriter)
	if app.metrics == nil && app.Config.MetricsAddr != "" {
		app.metrics = metrics.NewMetrics()
	}
	return app, nil
}

// newLogger builds the process logger. Validate has already checked the
// level name.
func newLogger(cfg config.AppConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    cfg.NoColor || !cli.IsTerminal(w),
		TimeFormat: "15:04:05",
	}
	return zerolog.New(cw).Level(level).With().Timestamp().Str("role", cfg.Role).Logger()
}

// Logger returns the application logger behind the logging interface.
func (a *Application) Logger() logging.Logger {
	return logging.NewZerologAdapter(a.logger)
}

// Run executes the configured role and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor || !cli.IsTerminal(out))
	return a.runCalculate(ctx, out)
}

// PrintVersion writes the build information.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "crtcalc %s (commit %s, built %s)\n", Version, Commit, BuildDate)
}
