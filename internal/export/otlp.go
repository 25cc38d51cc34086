package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/ethpandaops/proftimer/internal/version"
)

// OTLPConfig configures the OTLP metric exporter.
type OTLPConfig struct {
	Enabled bool `yaml:"enabled"`

	// Endpoint is the gRPC OTLP endpoint (e.g. "otel-collector:4317").
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the gRPC connection.
	Insecure bool `yaml:"insecure"`

	// Interval is how often collected metrics are pushed. Defaults to 10s.
	Interval time.Duration `yaml:"interval"`
}

// ApplyDefaults fills unset fields.
func (c *OTLPConfig) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 10 * time.Second
	}
}

// Validate checks the config when the exporter is enabled.
func (c *OTLPConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Endpoint == "" {
		return errors.New("otlp: endpoint is required")
	}

	if c.Interval < 0 {
		return errors.New("otlp: interval must not be negative")
	}

	return nil
}

// OTLPExporter manages the OTLP metric export pipeline.
type OTLPExporter struct {
	log      logrus.FieldLogger
	cfg      OTLPConfig
	provider *metric.MeterProvider
}

// NewOTLPExporter creates a new OTLP metric exporter.
func NewOTLPExporter(
	log logrus.FieldLogger,
	cfg OTLPConfig,
) *OTLPExporter {
	cfg.ApplyDefaults()

	return &OTLPExporter{
		log: log.WithField("component", "otlp"),
		cfg: cfg,
	}
}

// Start dials the collector and builds the meter provider.
func (e *OTLPExporter) Start(ctx context.Context) error {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(e.cfg.Endpoint),
	}

	if e.cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", "proftimer"),
			attribute.String("service.version", version.Release),
		),
	)
	if err != nil {
		return fmt.Errorf("creating OTLP resource: %w", err)
	}

	e.provider = metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(
			exporter,
			metric.WithInterval(e.cfg.Interval),
		)),
	)

	e.log.WithField("endpoint", e.cfg.Endpoint).
		Info("OTLP exporter started")

	return nil
}

// MeterProvider returns the provider built by Start, or nil before it.
func (e *OTLPExporter) MeterProvider() *metric.MeterProvider {
	return e.provider
}

// Stop pushes pending metrics and shuts the pipeline down. The provider
// owns the exporter and shuts it down too.
func (e *OTLPExporter) Stop(ctx context.Context) error {
	if e.provider == nil {
		return nil
	}

	if err := e.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down OTLP provider: %w", err)
	}

	return nil
}
