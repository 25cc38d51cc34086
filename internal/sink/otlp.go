package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ethpandaops/proftimer/internal/export"
)

const (
	otlpMeterName    = "github.com/ethpandaops/proftimer"
	otlpStopTimeout  = 10 * time.Second
	otlpNameAttrKey  = "name"
	otlpInvocations  = "proftimer.operation.invocations"
	otlpSecondsTotal = "proftimer.operation.duration"
)

// OTLPSink pushes flushed per-name deltas as OpenTelemetry counters.
type OTLPSink struct {
	log      logrus.FieldLogger
	exporter *export.OTLPExporter
	client   attribute.KeyValue

	invocations metric.Int64Counter
	seconds     metric.Float64Counter
}

var _ Sink = (*OTLPSink)(nil)

// NewOTLPSink creates the OTLP sink. Nothing is dialed until Start.
func NewOTLPSink(log logrus.FieldLogger, cfg export.OTLPConfig, clientName string) *OTLPSink {
	return &OTLPSink{
		log:      log.WithField("sink", "otlp"),
		exporter: export.NewOTLPExporter(log, cfg),
		client:   attribute.String("client", clientName),
	}
}

func (s *OTLPSink) Name() string { return "otlp" }

func (s *OTLPSink) Start(ctx context.Context) error {
	if err := s.exporter.Start(ctx); err != nil {
		return err
	}

	return s.bind(s.exporter.MeterProvider().Meter(otlpMeterName))
}

// bind creates the instruments on meter.
func (s *OTLPSink) bind(meter metric.Meter) error {
	invocations, err := meter.Int64Counter(
		otlpInvocations,
		metric.WithDescription("Completed timed operations by name."),
	)
	if err != nil {
		return fmt.Errorf("creating counter %s: %w", otlpInvocations, err)
	}

	seconds, err := meter.Float64Counter(
		otlpSecondsTotal,
		metric.WithDescription("Elapsed time of timed operations by name."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating counter %s: %w", otlpSecondsTotal, err)
	}

	s.invocations = invocations
	s.seconds = seconds

	return nil
}

func (s *OTLPSink) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), otlpStopTimeout)
	defer cancel()

	return s.exporter.Stop(ctx)
}

func (s *OTLPSink) Export(ctx context.Context, report Report) error {
	if s.invocations == nil {
		return fmt.Errorf("otlp sink not started")
	}

	for _, e := range report.Entries {
		attrs := metric.WithAttributes(
			attribute.String(otlpNameAttrKey, e.Name),
			s.client,
		)

		s.invocations.Add(ctx, e.Count, attrs)
		s.seconds.Add(ctx, e.Total.Seconds(), attrs)
	}

	return nil
}
