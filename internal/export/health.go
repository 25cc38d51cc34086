package export

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "proftimer"

// HealthConfig configures the Prometheus health metrics server.
type HealthConfig struct {
	// Addr is the listen address for the health metrics server.
	// Defaults to ":9090".
	Addr string `yaml:"addr"`
}

// HealthMetrics exposes Prometheus metrics about the agent itself. Sinks
// may register additional collectors before Start.
type HealthMetrics struct {
	log      logrus.FieldLogger
	addr     string
	server   *http.Server
	listener net.Listener
	registry *prometheus.Registry

	// Reporting
	ReportsTotal   prometheus.Counter
	ReportErrors   prometheus.Counter
	ReportDuration prometheus.Histogram
	FlushedEntries prometheus.Histogram
	CurrentWindow  prometheus.Gauge

	// Probes
	ProbeRuns     *prometheus.CounterVec // probe
	ProbeFailures *prometheus.CounterVec // probe

	// Sinks
	SinkExportErrors   *prometheus.CounterVec   // sink
	SinkExportDuration *prometheus.HistogramVec // sink

	running atomic.Bool
}

// NewHealthMetrics creates a new health metrics server.
func NewHealthMetrics(
	log logrus.FieldLogger,
	cfg HealthConfig,
) *HealthMetrics {
	reg := prometheus.NewRegistry()

	h := &HealthMetrics{
		log:      log.WithField("component", "health"),
		addr:     cfg.Addr,
		registry: reg,

		ReportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Total timer table flushes.",
		}),
		ReportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_errors_total",
			Help:      "Total failures writing the text report.",
		}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time to flush, write and export one report.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}, // 100us-500ms
		}),
		FlushedEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flushed_entries",
			Help:      "Number of distinct names per flushed report.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
		CurrentWindow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_window",
			Help:      "Current report window number.",
		}),
		ProbeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probe_runs_total",
				Help:      "Total probe executions by probe.",
			},
			[]string{"probe"},
		),
		ProbeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probe_failures_total",
				Help:      "Total failed probe executions by probe.",
			},
			[]string{"probe"},
		),
		SinkExportErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_export_errors_total",
				Help:      "Total report export errors by sink.",
			},
			[]string{"sink"},
		),
		SinkExportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sink_export_duration_seconds",
				Help:      "Time to hand one report to a sink.",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1}, // 100us-1s
			},
			[]string{"sink"},
		),
	}

	reg.MustRegister(
		h.ReportsTotal,
		h.ReportErrors,
		h.ReportDuration,
		h.FlushedEntries,
		h.CurrentWindow,
		h.ProbeRuns,
		h.ProbeFailures,
		h.SinkExportErrors,
		h.SinkExportDuration,
	)

	return h
}

// Register adds collectors to the health registry.
func (h *HealthMetrics) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := h.registry.Register(c); err != nil {
			return fmt.Errorf("registering collector: %w", err)
		}
	}

	return nil
}

// Gatherer exposes the underlying registry for tests and embedding.
func (h *HealthMetrics) Gatherer() prometheus.Gatherer {
	return h.registry
}

// Start begins serving the /metrics endpoint.
func (h *HealthMetrics) Start(_ context.Context) error {
	if h.addr == "" {
		h.addr = ":9090"
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		h.registry,
		promhttp.HandlerOpts{},
	))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.addr, err)
	}

	h.listener = ln

	h.server = &http.Server{
		Handler: mux,
	}

	h.running.Store(true)

	go func() {
		h.log.WithField("addr", ln.Addr().String()).
			Info("Health metrics server started")

		if err := h.server.Serve(ln); err != nil &&
			err != http.ErrServerClosed {
			h.log.WithError(err).
				Error("Health metrics server error")
		}

		h.running.Store(false)
	}()

	return nil
}

// Addr returns the actual listener address once started.
func (h *HealthMetrics) Addr() string {
	if h.listener != nil {
		return h.listener.Addr().String()
	}

	return h.addr
}

// Stop shuts down the health metrics server.
func (h *HealthMetrics) Stop() error {
	if h.server == nil {
		return nil
	}

	return h.server.Close()
}
