package timer

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultReporter_Format(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		total time.Duration
		want  string
	}{
		{
			name:  "X",
			count: 4,
			total: 2000 * time.Millisecond,
			want:  "X -- n: 4; avg: 0.5000 sec; total: 2.00 sec",
		},
		{
			name:  "fast",
			count: 3,
			total: 10 * time.Millisecond,
			want:  "fast -- n: 3; avg: 0.0033 sec; total: 0.01 sec",
		},
		{
			name:  "zero",
			count: 0,
			total: 0,
			want:  "zero -- n: 0; avg: 0.0000 sec; total: 0.00 sec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultReporter{}.Format(tt.name, tt.count, tt.total))
		})
	}
}

func TestDefaultReporter_Compare(t *testing.T) {
	entries := []Entry{
		{Name: "C", Stats: Stats{Count: 1, Total: 3 * time.Second}},
		{Name: "B", Stats: Stats{Count: 1, Total: 5 * time.Second}},
		{Name: "A", Stats: Stats{Count: 7, Total: 5 * time.Second}},
		{Name: "D", Stats: Stats{Count: 1, Total: 9 * time.Second}},
	}

	slices.SortStableFunc(entries, DefaultReporter{}.Compare)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}

	assert.Equal(t, []string{"D", "A", "B", "C"}, names)
}

func TestReporterFuncs_FallsBackToDefault(t *testing.T) {
	r := ReporterFuncs{}

	assert.Equal(t,
		DefaultReporter{}.Format("op", 2, time.Second),
		r.Format("op", 2, time.Second),
	)

	a := Entry{Name: "a", Stats: Stats{Total: time.Second}}
	b := Entry{Name: "b", Stats: Stats{Total: 2 * time.Second}}
	assert.Positive(t, r.Compare(a, b))
}

func TestStats_Avg(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, Stats{Count: 4, Total: 2 * time.Second}.Avg())
	assert.Equal(t, time.Duration(0), Stats{}.Avg())
}
