package sink

import (
	"context"
	"time"

	"github.com/ethpandaops/proftimer/internal/export"
	httpexport "github.com/ethpandaops/proftimer/internal/export/http"
	"github.com/ethpandaops/proftimer/timer"
)

// Config holds configuration for all sinks.
type Config struct {
	// ClientName identifies this process in exported rows.
	ClientName string `yaml:"client_name"`

	Metrics    MetricsConfig           `yaml:"metrics"`
	HTTP       httpexport.Config       `yaml:"http"`
	ClickHouse export.ClickHouseConfig `yaml:"clickhouse"`
	OTLP       export.OTLPConfig       `yaml:"otlp"`
}

// ApplyDefaults fills unset fields of every sink section.
func (c *Config) ApplyDefaults() {
	c.HTTP.ApplyDefaults()
	c.ClickHouse.ApplyDefaults()
	c.OTLP.ApplyDefaults()
}

// Validate checks every enabled sink.
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}

	if err := c.ClickHouse.Validate(); err != nil {
		return err
	}

	return c.OTLP.Validate()
}

// Report is one flushed timer table, tagged with its window.
type Report struct {
	Window      uint64
	WindowStart time.Time
	Interval    time.Duration
	Entries     []timer.Entry
}

// Sink receives every flushed report.
type Sink interface {
	// Name returns the sink's name for logging.
	Name() string
	// Start initializes the sink.
	Start(ctx context.Context) error
	// Stop shuts down the sink, flushing anything queued.
	Stop() error
	// Export hands a report to the sink. It must not block on I/O.
	Export(ctx context.Context, report Report) error
}
