package timer

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// Reporter controls how flushed entries are ordered and rendered.
type Reporter interface {
	// Format renders a single report line, without a trailing newline.
	Format(name string, count int64, total time.Duration) string
	// Compare orders entries: negative when a is reported before b.
	Compare(a, b Entry) int
}

// DefaultReporter renders seconds and orders by descending total time,
// breaking ties by ascending name.
type DefaultReporter struct{}

var _ Reporter = DefaultReporter{}

func (DefaultReporter) Format(name string, count int64, total time.Duration) string {
	tt := total.Seconds()
	mt := 0.0

	if count > 0 {
		mt = tt / float64(count)
	}

	return fmt.Sprintf("%s -- n: %d; avg: %.4f sec; total: %.2f sec", name, count, mt, tt)
}

func (DefaultReporter) Compare(a, b Entry) int {
	if c := cmp.Compare(b.Total, a.Total); c != 0 {
		return c
	}

	return strings.Compare(a.Name, b.Name)
}

// ReporterFuncs adapts plain functions to a Reporter. A nil field falls
// back to DefaultReporter.
type ReporterFuncs struct {
	FormatFunc  func(name string, count int64, total time.Duration) string
	CompareFunc func(a, b Entry) int
}

var _ Reporter = ReporterFuncs{}

func (r ReporterFuncs) Format(name string, count int64, total time.Duration) string {
	if r.FormatFunc == nil {
		return DefaultReporter{}.Format(name, count, total)
	}

	return r.FormatFunc(name, count, total)
}

func (r ReporterFuncs) Compare(a, b Entry) int {
	if r.CompareFunc == nil {
		return DefaultReporter{}.Compare(a, b)
	}

	return r.CompareFunc(a, b)
}
