package timer

import (
	"sync/atomic"
	"time"
)

// Handle is one in-flight timed operation. It is completed exactly once
// with Done or Registry.Record; abandoning it records nothing.
type Handle struct {
	reg      *Registry
	name     string
	start    time.Time
	recorded atomic.Bool
}

// Name returns the operation name the handle was started with.
func (h *Handle) Name() string {
	return h.name
}

// Elapsed returns the time since the handle was started.
func (h *Handle) Elapsed() time.Duration {
	return h.reg.now().Sub(h.start)
}

// Recorded reports whether the handle has been completed.
func (h *Handle) Recorded() bool {
	return h.recorded.Load()
}

// Done records the elapsed time into the registry that started the handle.
// A handle not obtained from Start is rejected with ErrInvalidArgument.
func (h *Handle) Done() error {
	if h == nil || h.reg == nil {
		return ErrInvalidArgument
	}

	return h.reg.Record(h)
}
