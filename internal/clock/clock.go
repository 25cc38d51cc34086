package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethpandaops/ethwallclock"
	"github.com/sirupsen/logrus"
)

// windowsPerEpoch is required by ethwallclock but has no meaning for
// report windows.
const windowsPerEpoch = 1

// TickFunc is called when the wall clock enters a new report window.
type TickFunc func(window uint64)

// Ticker divides wall-clock time into fixed-size report windows counted
// from an origin, so every process reporting at the same interval flushes
// on the same boundaries.
type Ticker interface {
	// Start begins delivering window changes to registered callbacks.
	Start(ctx context.Context) error
	// Stop terminates the ticker.
	Stop() error
	// CurrentWindow returns the number of the window containing now.
	CurrentWindow() uint64
	// WindowStartTime returns the wall-clock start of the given window.
	WindowStartTime(window uint64) time.Time
	// Interval returns the window size.
	Interval() time.Duration
	// OnTick registers a callback for window transitions.
	OnTick(fn TickFunc)
}

type ticker struct {
	log       logrus.FieldLogger
	origin    time.Time
	interval  time.Duration
	wallclock *ethwallclock.EthereumBeaconChain

	mu        sync.RWMutex
	callbacks []TickFunc
}

// New creates a Ticker with windows of the given interval starting at
// origin. Passing the Unix epoch aligns windows to interval multiples.
func New(
	log logrus.FieldLogger,
	origin time.Time,
	interval time.Duration,
) (Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0")
	}

	if origin.After(time.Now()) {
		return nil, fmt.Errorf("origin %s is in the future", origin)
	}

	return &ticker{
		log:       log.WithField("component", "clock"),
		origin:    origin,
		interval:  interval,
		wallclock: ethwallclock.NewEthereumBeaconChain(origin, interval, windowsPerEpoch),
		callbacks: make([]TickFunc, 0, 2),
	}, nil
}

func (t *ticker) Start(_ context.Context) error {
	// ethwallclock calls this in a new goroutine on each slot change.
	t.wallclock.OnSlotChanged(func(slot ethwallclock.Slot) {
		window := slot.Number()

		t.log.WithField("window", window).Debug("Report window changed")

		t.mu.RLock()
		callbacks := t.callbacks
		t.mu.RUnlock()

		for _, fn := range callbacks {
			fn(window)
		}
	})

	t.log.WithFields(logrus.Fields{
		"origin":   t.origin,
		"interval": t.interval,
	}).Info("Report clock started")

	return nil
}

func (t *ticker) Stop() error {
	if t.wallclock != nil {
		t.wallclock.Stop()
	}

	return nil
}

func (t *ticker) CurrentWindow() uint64 {
	window := t.wallclock.Slots().Current()

	return window.Number()
}

func (t *ticker) WindowStartTime(window uint64) time.Time {
	return t.origin.Add(time.Duration(window) * t.interval)
}

func (t *ticker) Interval() time.Duration {
	return t.interval
}

func (t *ticker) OnTick(fn TickFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.callbacks = append(t.callbacks, fn)
}
