package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/proftimer/internal/clock"
	"github.com/ethpandaops/proftimer/internal/export"
	"github.com/ethpandaops/proftimer/internal/probe"
	"github.com/ethpandaops/proftimer/internal/sink"
	"github.com/ethpandaops/proftimer/timer"
)

// Agent runs probes against a timer registry and reports it on aligned
// windows.
type Agent interface {
	// Start initializes all components and begins probing.
	Start(ctx context.Context) error
	// Stop shuts down all components and performs a final report.
	Stop() error
}

type agent struct {
	log    logrus.FieldLogger
	cfg    *Config
	health *export.HealthMetrics
	reg    *timer.Registry
	out    io.WriteCloser
	runner *probe.Runner
	clock  clock.Ticker
	sinks  []sink.Sink

	reportMu sync.Mutex
	cancel   context.CancelFunc
	ctx      context.Context
}

// New creates a new Agent.
func New(log logrus.FieldLogger, cfg *Config) (Agent, error) {
	health := export.NewHealthMetrics(log, cfg.Health)

	out, err := openOutput(cfg.Report.Output)
	if err != nil {
		return nil, err
	}

	reg := timer.New(
		timer.WithOutput(out),
		timer.WithConserveMemory(cfg.Report.ConserveMemory),
		timer.WithLogger(log),
	)

	runner, err := probe.NewRunner(log, reg, cfg.Probes, health)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("creating probe runner: %w", err),
			closeOutput(out),
		)
	}

	a := &agent{
		log:    log.WithField("component", "agent"),
		cfg:    cfg,
		health: health,
		reg:    reg,
		out:    out,
		runner: runner,
		sinks:  make([]sink.Sink, 0, 4),
	}

	if err := a.buildSinks(log); err != nil {
		return nil, errors.Join(err, closeOutput(out))
	}

	return a, nil
}

func (a *agent) buildSinks(log logrus.FieldLogger) error {
	cfg := a.cfg.Sinks

	if cfg.Metrics.Enabled {
		a.sinks = append(a.sinks, sink.NewMetricsSink(log, a.health))
	}

	if cfg.HTTP.Enabled {
		s, err := sink.NewHTTPSink(log, cfg.HTTP, cfg.ClientName)
		if err != nil {
			return fmt.Errorf("creating http sink: %w", err)
		}

		a.sinks = append(a.sinks, s)
	}

	if cfg.ClickHouse.Enabled {
		s, err := sink.NewClickHouseSink(log, cfg.ClickHouse, cfg.ClientName)
		if err != nil {
			return fmt.Errorf("creating clickhouse sink: %w", err)
		}

		a.sinks = append(a.sinks, s)
	}

	if cfg.OTLP.Enabled {
		a.sinks = append(a.sinks, sink.NewOTLPSink(log, cfg.OTLP, cfg.ClientName))
	}

	return nil
}

func (a *agent) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	// 1. Start health metrics server.
	if err := a.health.Start(a.ctx); err != nil {
		return fmt.Errorf("starting health metrics: %w", err)
	}

	// 2. Start sinks before anything can be reported.
	for _, s := range a.sinks {
		if err := s.Start(a.ctx); err != nil {
			return fmt.Errorf("starting sink %s: %w", s.Name(), err)
		}

		a.log.WithField("sink", s.Name()).Info("Sink started")
	}

	// 3. Report on every window boundary.
	tk, err := clock.New(a.log, time.Unix(0, 0), a.cfg.Report.Interval)
	if err != nil {
		return fmt.Errorf("creating clock: %w", err)
	}

	a.clock = tk

	a.clock.OnTick(func(window uint64) {
		a.health.CurrentWindow.Set(float64(window))

		if window > 0 {
			a.report(window - 1)
		}
	})

	if err := a.clock.Start(a.ctx); err != nil {
		return fmt.Errorf("starting clock: %w", err)
	}

	// 4. Start probing.
	a.runner.Start(a.ctx)

	a.log.WithFields(logrus.Fields{
		"probes":          len(a.cfg.Probes),
		"sinks":           len(a.sinks),
		"interval":        a.cfg.Report.Interval,
		"conserve_memory": a.reg.ConserveMemory(),
	}).Info("Agent started")

	return nil
}

func (a *agent) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}

	a.runner.Stop()

	var window uint64

	if a.clock != nil {
		if err := a.clock.Stop(); err != nil {
			a.log.WithError(err).Warn("Error stopping clock")
		}

		window = a.clock.CurrentWindow()
	}

	// Final report for the partial window.
	a.report(window)

	for _, s := range a.sinks {
		if err := s.Stop(); err != nil {
			a.log.WithError(err).
				WithField("sink", s.Name()).
				Error("Error stopping sink")
		}
	}

	if err := a.health.Stop(); err != nil {
		a.log.WithError(err).Warn("Error stopping health server")
	}

	return closeOutput(a.out)
}

// report flushes the timer table, writes the text report and hands the
// entries to every sink.
func (a *agent) report(window uint64) {
	a.reportMu.Lock()
	defer a.reportMu.Unlock()

	start := time.Now()

	entries := a.reg.Flush()

	a.health.ReportsTotal.Inc()
	a.health.FlushedEntries.Observe(float64(len(entries)))

	if err := a.reg.Write(entries); err != nil {
		a.health.ReportErrors.Inc()
		a.log.WithError(err).Error("Writing report failed")
	}

	rep := sink.Report{
		Window:   window,
		Interval: a.cfg.Report.Interval,
		Entries:  entries,
	}

	if a.clock != nil {
		rep.WindowStart = a.clock.WindowStartTime(window)
	}

	ctx := a.ctx
	if ctx == nil || ctx.Err() != nil {
		ctx = context.Background()
	}

	for _, s := range a.sinks {
		sinkStart := time.Now()

		if err := s.Export(ctx, rep); err != nil {
			a.health.SinkExportErrors.WithLabelValues(s.Name()).Inc()
			a.log.WithError(err).
				WithField("sink", s.Name()).
				Warn("Exporting report failed")
		}

		a.health.SinkExportDuration.WithLabelValues(s.Name()).
			Observe(time.Since(sinkStart).Seconds())
	}

	for name, outcomes := range a.runner.Snapshot() {
		fields := logrus.Fields{"probe": name}
		for o, n := range outcomes {
			fields[o.String()] = n
		}

		a.log.WithFields(fields).Debug("Probe outcomes")
	}

	a.health.ReportDuration.Observe(time.Since(start).Seconds())

	a.log.WithFields(logrus.Fields{
		"window":  window,
		"entries": len(entries),
	}).Debug("Report flushed")
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func closeOutput(out io.Closer) error {
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing report output: %w", err)
	}

	return nil
}

// openOutput resolves the report output name.
func openOutput(name string) (io.WriteCloser, error) {
	switch name {
	case OutputStderr, "":
		return nopCloser{os.Stderr}, nil
	case OutputStdout:
		return nopCloser{os.Stdout}, nil
	case OutputDiscard:
		return nopCloser{io.Discard}, nil
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening report output %s: %w", name, err)
	}

	return f, nil
}
