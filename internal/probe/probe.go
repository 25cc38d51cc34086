package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/proftimer/internal/version"
)

// Probe is a single unit of timed work.
type Probe interface {
	// Name returns the timer name runs are recorded under.
	Name() string
	// Run executes the workload once.
	Run(ctx context.Context) error
}

// New builds the probe described by cfg.
func New(log logrus.FieldLogger, cfg Config) (Probe, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log = log.WithFields(logrus.Fields{
		"probe": cfg.Name,
		"type":  cfg.Type,
	})

	switch cfg.Type {
	case TypeSleep:
		return &sleepProbe{name: cfg.Name, d: cfg.Duration}, nil
	case TypeHTTP:
		return &httpProbe{
			log:    log,
			name:   cfg.Name,
			target: cfg.Target,
			http:   &http.Client{Timeout: cfg.Timeout},
		}, nil
	case TypeCommand:
		return &commandProbe{log: log, name: cfg.Name, argv: cfg.Command}, nil
	}

	return nil, fmt.Errorf("probe %s: unknown type %q", cfg.Name, cfg.Type)
}

type sleepProbe struct {
	name string
	d    time.Duration
}

func (p *sleepProbe) Name() string { return p.name }

func (p *sleepProbe) Run(ctx context.Context) error {
	t := time.NewTimer(p.d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type httpProbe struct {
	log    logrus.FieldLogger
	name   string
	target string
	http   *http.Client
}

func (p *httpProbe) Name() string { return p.name }

func (p *httpProbe) Run(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", p.target, err)
	}
	defer resp.Body.Close()

	n, _ := io.Copy(io.Discard, resp.Body)

	p.log.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"bytes":  n,
	}).Trace("Probe response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, p.target)
	}

	return nil
}

type commandProbe struct {
	log  logrus.FieldLogger
	name string
	argv []string
}

func (p *commandProbe) Name() string { return p.name }

func (p *commandProbe) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		p.log.WithError(err).
			WithField("output", truncate(string(out), 256)).
			Debug("Probe command failed")

		return fmt.Errorf("running %s: %w", p.argv[0], err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
