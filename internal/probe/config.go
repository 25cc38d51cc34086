package probe

import (
	"errors"
	"fmt"
	"time"
)

// Type selects what a probe executes.
type Type string

const (
	// TypeSleep sleeps for Duration. Useful for exercising the pipeline.
	TypeSleep Type = "sleep"
	// TypeHTTP issues a GET against Target and expects a 2xx response.
	TypeHTTP Type = "http"
	// TypeCommand runs Command and expects a zero exit status.
	TypeCommand Type = "command"
)

// Config describes one timed workload.
type Config struct {
	// Name is the timer name every run is recorded under.
	Name string `yaml:"name"`

	// Type is one of sleep, http, command.
	Type Type `yaml:"type"`

	// Target is the URL for http probes.
	Target string `yaml:"target"`

	// Command is the argv for command probes.
	Command []string `yaml:"command"`

	// Duration is how long sleep probes sleep.
	Duration time.Duration `yaml:"duration"`

	// Timeout bounds a single run. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout"`

	// Interval is the pause between runs of one worker. Defaults to 1s.
	Interval time.Duration `yaml:"interval"`

	// Concurrency is the number of workers running the probe.
	// Defaults to 1.
	Concurrency int `yaml:"concurrency"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}

	if c.Interval <= 0 {
		c.Interval = time.Second
	}

	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
}

// Validate checks the probe definition.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("probe name is required")
	}

	switch c.Type {
	case TypeSleep:
		if c.Duration <= 0 {
			return fmt.Errorf("probe %s: duration must be positive", c.Name)
		}
	case TypeHTTP:
		if c.Target == "" {
			return fmt.Errorf("probe %s: target is required", c.Name)
		}
	case TypeCommand:
		if len(c.Command) == 0 {
			return fmt.Errorf("probe %s: command is required", c.Name)
		}
	default:
		return fmt.Errorf("probe %s: unknown type %q", c.Name, c.Type)
	}

	return nil
}
