package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/proftimer/internal/export"
	"github.com/ethpandaops/proftimer/timer"
)

type scheduled struct {
	probe       Probe
	stats       *Stats
	timeout     time.Duration
	interval    time.Duration
	concurrency int
}

// Runner executes probes on worker goroutines and records every run in a
// timer registry.
type Runner struct {
	log    logrus.FieldLogger
	reg    *timer.Registry
	health *export.HealthMetrics
	probes []scheduled

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner builds probes from cfgs. health may be nil.
func NewRunner(
	log logrus.FieldLogger,
	reg *timer.Registry,
	cfgs []Config,
	health *export.HealthMetrics,
) (*Runner, error) {
	r := &Runner{
		log:    log.WithField("component", "probe_runner"),
		reg:    reg,
		health: health,
		probes: make([]scheduled, 0, len(cfgs)),
	}

	for _, cfg := range cfgs {
		cfg.ApplyDefaults()

		p, err := New(log, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating probe: %w", err)
		}

		r.probes = append(r.probes, scheduled{
			probe:       p,
			stats:       &Stats{},
			timeout:     cfg.Timeout,
			interval:    cfg.Interval,
			concurrency: cfg.Concurrency,
		})
	}

	return r, nil
}

// Start launches the workers.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	for i := range r.probes {
		s := &r.probes[i]

		for range s.concurrency {
			r.wg.Add(1)

			go r.work(ctx, s)
		}

		r.log.WithFields(logrus.Fields{
			"probe":       s.probe.Name(),
			"concurrency": s.concurrency,
			"interval":    s.interval,
		}).Info("Probe started")
	}
}

// Stop cancels the workers and waits for them to exit. Runs interrupted
// by Stop are not recorded.
func (r *Runner) Stop() {
	if r.cancel == nil {
		return
	}

	r.cancel()
	r.wg.Wait()
}

// Snapshot reads and resets the outcome counters of every probe.
func (r *Runner) Snapshot() map[string]map[Outcome]uint64 {
	out := make(map[string]map[Outcome]uint64, len(r.probes))

	for i := range r.probes {
		if snap := r.probes[i].stats.Snapshot(); len(snap) > 0 {
			out[r.probes[i].probe.Name()] = snap
		}
	}

	return out
}

func (r *Runner) work(ctx context.Context, s *scheduled) {
	defer r.wg.Done()

	name := s.probe.Name()

	for {
		if err := r.runOnce(ctx, s); err != nil {
			r.log.WithError(err).WithField("probe", name).Debug("Probe run failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, s *scheduled) error {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	h, err := r.reg.Start(s.probe.Name())
	if err != nil {
		return err
	}

	runErr := s.probe.Run(runCtx)

	// Shutting down: drop the handle unrecorded.
	if ctx.Err() != nil {
		return nil
	}

	if err := h.Done(); err != nil {
		return err
	}

	outcome := OutcomeOK

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.DeadlineExceeded):
		outcome = OutcomeTimeout
	default:
		outcome = OutcomeFailed
	}

	s.stats.Record(outcome)

	if r.health != nil {
		r.health.ProbeRuns.WithLabelValues(s.probe.Name()).Inc()

		if outcome != OutcomeOK {
			r.health.ProbeFailures.WithLabelValues(s.probe.Name()).Inc()
		}
	}

	return runErr
}
