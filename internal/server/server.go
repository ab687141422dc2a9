// Package server exposes a participant's Prometheus metrics, a health probe
// and a JSON progress snapshot over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/agbru/crtcalc/internal/logging"
	"github.com/agbru/crtcalc/internal/metrics"
)

// Status is the body of GET /status.
type Status struct {
	Role     string `json:"role"`
	Rank     int    `json:"rank"`
	Received int    `json:"received"`
	Total    int    `json:"total"`
	Done     bool   `json:"done"`

	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
}

// StatusFunc reports the current status. It must be safe for concurrent use.
type StatusFunc func() Status

// Server is the metrics HTTP server of one participant.
type Server struct {
	addr     string
	metrics  *metrics.Metrics
	logger   logging.Logger
	security SecurityConfig
	status   StatusFunc

	httpServer *http.Server
	listener   net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithStatus serves fn at /status.
func WithStatus(fn StatusFunc) Option { return func(s *Server) { s.status = fn } }

// WithSecurity replaces DefaultSecurityConfig.
func WithSecurity(cfg SecurityConfig) Option { return func(s *Server) { s.security = cfg } }

// New prepares a server on addr. Nothing listens until Start.
func New(addr string, m *metrics.Metrics, logger logging.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		addr:     addr,
		metrics:  m,
		logger:   logger,
		security: DefaultSecurityConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.wrap("/metrics", s.handleMetrics))
	mux.HandleFunc("/healthz", s.wrap("/healthz", s.handleHealth))
	mux.HandleFunc("/status", s.wrap("/status", s.handleStatus))
	return mux
}

func (s *Server) wrap(path string, h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.security, s.metricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.RequestServed(path)
		h(w, r)
	}))
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics server: listen %s: %w", s.addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", err, logging.String("addr", s.Addr()))
		}
	}()
	s.logger.Info("metrics server listening", logging.String("addr", s.Addr()))
	return nil
}

// Addr returns the listening address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// metricsMiddleware tracks in-flight requests.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		next(w, r)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.metrics == nil {
		http.Error(w, "metrics disabled", http.StatusServiceUnavailable)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.status == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status()); err != nil {
		s.logger.Error("encode status", err)
	}
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("method not allowed", logging.String("method", r.Method), logging.String("path", r.URL.Path))
	w.Header().Set("Allow", http.MethodGet)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
