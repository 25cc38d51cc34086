// Package timer accumulates per-name invocation counts and elapsed time
// from concurrent callers, and prints a sorted report that resets the
// accumulated statistics.
package timer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Registry is a concurrency-safe table of per-name timing statistics.
type Registry struct {
	log      logrus.FieldLogger
	reporter Reporter
	now      func() time.Time
	conserve bool

	mu    sync.Mutex
	table table

	outMu sync.Mutex
	out   io.Writer
}

// Option configures a Registry.
type Option func(r *Registry)

// WithOutput sets where Report writes. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(r *Registry) {
		r.out = w
	}
}

// WithReporter replaces the line format and ordering.
func WithReporter(rep Reporter) Option {
	return func(r *Registry) {
		r.reporter = rep
	}
}

// WithConserveMemory selects the compact name-ordered table instead of a
// hash map. The choice is fixed for the lifetime of the registry.
func WithConserveMemory(conserve bool) Option {
	return func(r *Registry) {
		r.conserve = conserve
	}
}

// WithClock overrides the time source. It must be monotonic for elapsed
// times to be meaningful; time.Now is.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// New creates a Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		reporter: DefaultReporter{},
		now:      time.Now,
		out:      os.Stderr,
	}

	for _, o := range opts {
		o(r)
	}

	if r.log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		r.log = log
	}

	if r.reporter == nil {
		r.reporter = DefaultReporter{}
	}

	if r.now == nil {
		r.now = time.Now
	}

	if r.out == nil {
		r.out = io.Discard
	}

	r.log = r.log.WithField("component", "timer")
	r.table = newTable(r.conserve)

	return r
}

// ConserveMemory reports which table backing the registry was built with.
func (r *Registry) ConserveMemory() bool {
	return r.conserve
}

// Start begins timing the named operation. It touches no shared state.
func (r *Registry) Start(name string) (*Handle, error) {
	if name == "" {
		return nil, fmt.Errorf("starting timer: empty name: %w", ErrInvalidArgument)
	}

	return &Handle{reg: r, name: name, start: r.now()}, nil
}

// MustStart is like Start but panics on an empty name.
func (r *Registry) MustStart(name string) *Handle {
	h, err := r.Start(name)
	if err != nil {
		panic(err)
	}

	return h
}

// Record adds the handle's elapsed time to its name's statistics.
func (r *Registry) Record(h *Handle) error {
	if h == nil {
		return fmt.Errorf("recording timer: nil handle: %w", ErrInvalidArgument)
	}

	if h.name == "" {
		return fmt.Errorf("recording timer: handle not started: %w", ErrInvalidArgument)
	}

	elapsed := r.now().Sub(h.start)

	if !h.recorded.CompareAndSwap(false, true) {
		r.log.WithField("name", h.name).Debug("Handle recorded twice")

		return fmt.Errorf("recording timer %q: %w", h.name, ErrAlreadyRecorded)
	}

	r.mu.Lock()
	r.table.add(h.name, elapsed)
	r.mu.Unlock()

	return nil
}

// Track starts a timer and returns a function that records it, for use
// as `defer r.Track("name")()`.
func (r *Registry) Track(name string) func() {
	h := r.MustStart(name)

	return func() {
		_ = r.Record(h)
	}
}

// Time runs fn and records its duration under name, including when fn
// returns an error or panics.
func (r *Registry) Time(name string, fn func() error) error {
	h, err := r.Start(name)
	if err != nil {
		return err
	}

	defer func() {
		_ = r.Record(h)
	}()

	return fn()
}

// Len returns the number of names with recorded statistics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.table.len()
}

// Flush removes every entry from the table and returns them in report
// order. Recording never interleaves between the read and the clear.
func (r *Registry) Flush() []Entry {
	r.mu.Lock()
	entries := r.table.drain()
	r.mu.Unlock()

	slices.SortStableFunc(entries, r.reporter.Compare)

	r.log.WithField("entries", len(entries)).Debug("Flushed timer table")

	return entries
}

// Write renders entries to the output: a blank line, then one line per
// entry in the given order.
func (r *Registry) Write(entries []Entry) error {
	r.outMu.Lock()
	defer r.outMu.Unlock()

	w := bufio.NewWriter(r.out)

	if _, err := w.WriteString("\n"); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	for _, e := range entries {
		if _, err := fmt.Fprintln(w, r.reporter.Format(e.Name, e.Count, e.Total)); err != nil {
			return fmt.Errorf("writing report line %q: %w", e.Name, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

// Report flushes the table and writes it to the output.
func (r *Registry) Report() error {
	return r.Write(r.Flush())
}

// SetOutput replaces the report output.
func (r *Registry) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}

	r.outMu.Lock()
	r.out = w
	r.outMu.Unlock()
}
