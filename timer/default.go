package timer

import (
	"io"
	"sync"
)

var (
	defaultMu   sync.Mutex
	defaultOpts []Option
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, building it on first use
// from the options passed to Configure.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		defer defaultMu.Unlock()

		defaultReg = New(defaultOpts...)
	})

	return defaultReg
}

// Configure appends options for the process-wide registry. It fails with
// ErrAlreadyInitialized once Default has been called.
func Configure(opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultReg != nil {
		return ErrAlreadyInitialized
	}

	defaultOpts = append(defaultOpts, opts...)

	return nil
}

// SetConserveMemory selects the compact table for the process-wide
// registry. It must be called before first use.
func SetConserveMemory(conserve bool) error {
	return Configure(WithConserveMemory(conserve))
}

// SetOutput replaces the process-wide registry's report output.
func SetOutput(w io.Writer) {
	Default().SetOutput(w)
}

// Start begins timing name on the process-wide registry.
func Start(name string) (*Handle, error) {
	return Default().Start(name)
}

// MustStart begins timing name on the process-wide registry and panics on
// an empty name.
func MustStart(name string) *Handle {
	return Default().MustStart(name)
}

// Track is Registry.Track on the process-wide registry.
func Track(name string) func() {
	return Default().Track(name)
}

// Time is Registry.Time on the process-wide registry.
func Time(name string, fn func() error) error {
	return Default().Time(name, fn)
}

// Flush drains the process-wide registry.
func Flush() []Entry {
	return Default().Flush()
}

// Report drains the process-wide registry and writes it to its output.
func Report() error {
	return Default().Report()
}
