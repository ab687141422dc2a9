// Package metrics exposes Prometheus instrumentation for reconstruction runs
// and runtime memory snapshots.
//
// All recording methods are safe on a nil *Metrics, so components can be
// built without instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crtcalc"

// Metrics holds the collectors for one process. Each instance owns its own
// registry so several clusters can run in one process without clashing.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	tasksAssigned    prometheus.Counter
	primesDrawn      *prometheus.CounterVec
	residuesReceived prometheus.Counter
	pending          prometheus.Gauge
	modulusBits      prometheus.Gauge
	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram

	systemCPU    prometheus.Gauge
	systemMemory prometheus.Gauge

	activeRequests prometheus.Gauge
	requestsTotal  *prometheus.CounterVec
}

// NewMetrics registers the crtcalc collectors plus the Go runtime and
// process collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		tasksAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_assigned_total",
			Help:      "Residue computations assigned to workers.",
		}),
		primesDrawn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "primes_drawn_total",
			Help:      "Primes drawn from participant supplies.",
		}, []string{"role"}),
		residuesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "residues_received_total",
			Help:      "Residue messages folded into the reconstruction.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_residues",
			Help:      "Residues the coordinator is still waiting for.",
		}),
		modulusBits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "modulus_bits",
			Help:      "Bit length of the accumulated modulus.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconstructions_total",
			Help:      "Completed reconstruction runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconstruction_duration_seconds",
			Help:      "Wall-clock duration of reconstruction runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		systemCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_cpu_percent",
			Help:      "Host CPU usage, sampled while the run is in progress.",
		}),
		systemMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_memory_percent",
			Help:      "Host memory usage, sampled while the run is in progress.",
		}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests served by path.",
		}, []string{"path"}),
	}
	reg.MustRegister(
		m.tasksAssigned, m.primesDrawn, m.residuesReceived, m.pending,
		m.modulusBits, m.runs, m.runDuration, m.systemCPU, m.systemMemory,
		m.activeRequests, m.requestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the exposition handler for m's registry.
func (m *Metrics) Handler() http.Handler { return m.handler }

// WritePrometheus serves the current metrics in text exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// AddTasks records n residue computations handed to workers.
func (m *Metrics) AddTasks(n int) {
	if m == nil {
		return
	}
	m.tasksAssigned.Add(float64(n))
}

// PrimeDrawn records one prime drawn by a participant of the given role.
func (m *Metrics) PrimeDrawn(role string) {
	if m == nil {
		return
	}
	m.primesDrawn.WithLabelValues(role).Inc()
}

// ResidueReceived records a folded residue and the new modulus size.
func (m *Metrics) ResidueReceived(modulusBits int) {
	if m == nil {
		return
	}
	m.residuesReceived.Inc()
	m.modulusBits.Set(float64(modulusBits))
}

// SetPending sets the number of outstanding residues.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(mode string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.runs.WithLabelValues(mode, outcome).Inc()
	m.runDuration.Observe(d.Seconds())
}

// SetSystemUsage records a host usage sample, both in percent.
func (m *Metrics) SetSystemUsage(cpuPercent, memPercent float64) {
	if m == nil {
		return
	}
	m.systemCPU.Set(cpuPercent)
	m.systemMemory.Set(memPercent)
}

// IncrementActiveRequests marks the start of an HTTP request.
func (m *Metrics) IncrementActiveRequests() {
	if m == nil {
		return
	}
	m.activeRequests.Inc()
}

// DecrementActiveRequests marks the end of an HTTP request.
func (m *Metrics) DecrementActiveRequests() {
	if m == nil {
		return
	}
	m.activeRequests.Dec()
}

// RequestServed counts one request for path.
func (m *Metrics) RequestServed(path string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path).Inc()
}
