package sink

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/proftimer/internal/export"
)

// MetricsConfig configures the Prometheus sink.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsSink turns flushed per-name deltas into monotonic Prometheus
// counters, so totals survive the table reset.
type MetricsSink struct {
	log         logrus.FieldLogger
	health      *export.HealthMetrics
	invocations *prometheus.CounterVec
	seconds     *prometheus.CounterVec
}

var _ Sink = (*MetricsSink)(nil)

// NewMetricsSink creates a sink that registers its counters on health.
func NewMetricsSink(log logrus.FieldLogger, health *export.HealthMetrics) *MetricsSink {
	return &MetricsSink{
		log:    log.WithField("sink", "metrics"),
		health: health,
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "proftimer",
				Name:      "operation_invocations_total",
				Help:      "Total completed timed operations by name.",
			},
			[]string{"name"},
		),
		seconds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "proftimer",
				Name:      "operation_seconds_total",
				Help:      "Total elapsed seconds of timed operations by name.",
			},
			[]string{"name"},
		),
	}
}

func (s *MetricsSink) Name() string { return "metrics" }

func (s *MetricsSink) Start(_ context.Context) error {
	if err := s.health.Register(s.invocations, s.seconds); err != nil {
		return fmt.Errorf("registering operation metrics: %w", err)
	}

	return nil
}

func (s *MetricsSink) Stop() error { return nil }

func (s *MetricsSink) Export(_ context.Context, report Report) error {
	for _, e := range report.Entries {
		s.invocations.WithLabelValues(e.Name).Add(float64(e.Count))
		s.seconds.WithLabelValues(e.Name).Add(e.Total.Seconds())
	}

	return nil
}
