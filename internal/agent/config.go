package agent

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/proftimer/internal/export"
	"github.com/ethpandaops/proftimer/internal/probe"
	"github.com/ethpandaops/proftimer/internal/sink"
)

// Output names accepted by ReportConfig.Output besides a file path.
const (
	OutputStderr  = "stderr"
	OutputStdout  = "stdout"
	OutputDiscard = "discard"
)

// ReportConfig controls the periodic flush of the timer table.
type ReportConfig struct {
	// Interval is the report window size. Windows are aligned to
	// multiples of Interval since the Unix epoch. Defaults to 10s.
	Interval time.Duration `yaml:"interval"`

	// Output is stderr, stdout, discard or a file path to append to.
	// Defaults to stderr.
	Output string `yaml:"output"`

	// ConserveMemory selects the compact timer table. Fixed at startup.
	ConserveMemory bool `yaml:"conserve_memory"`
}

// Config is the top-level configuration for the proftimer agent.
type Config struct {
	// LogLevel sets the logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Report configures flushing and the text report.
	Report ReportConfig `yaml:"report"`

	// Probes are the workloads timed by the agent.
	Probes []probe.Config `yaml:"probes"`

	// Sinks configures where flushed reports are exported.
	Sinks sink.Config `yaml:"sinks"`

	// Health configures the Prometheus health metrics server.
	Health export.HealthConfig `yaml:"health"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Report: ReportConfig{
			Interval: 10 * time.Second,
			Output:   OutputStderr,
		},
		Health: export.HealthConfig{
			Addr: ":9090",
		},
	}
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills unset fields of the probe and sink sections.
func (c *Config) ApplyDefaults() {
	for i := range c.Probes {
		c.Probes[i].ApplyDefaults()
	}

	c.Sinks.ApplyDefaults()
}

// Validate checks the configuration for required fields and consistency.
func (c *Config) Validate() error {
	if c.Report.Interval <= 0 {
		return fmt.Errorf("report.interval must be positive")
	}

	if c.Report.Output == "" {
		return fmt.Errorf("report.output is required")
	}

	seen := make(map[string]struct{}, len(c.Probes))

	for i := range c.Probes {
		if err := c.Probes[i].Validate(); err != nil {
			return fmt.Errorf("probes[%d]: %w", i, err)
		}

		if _, dup := seen[c.Probes[i].Name]; dup {
			return fmt.Errorf("probes[%d]: duplicate name %q", i, c.Probes[i].Name)
		}

		seen[c.Probes[i].Name] = struct{}{}
	}

	if err := c.Sinks.Validate(); err != nil {
		return fmt.Errorf("sinks: %w", err)
	}

	return nil
}
