package probe

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/proftimer/timer"
)

func TestRunner_RecordsRuns(t *testing.T) {
	reg := timer.New(timer.WithOutput(&bytes.Buffer{}))

	r, err := NewRunner(testLog(), reg, []Config{
		{Name: "fast", Type: TypeSleep, Duration: time.Millisecond, Interval: time.Millisecond, Concurrency: 4},
		{Name: "slow", Type: TypeSleep, Duration: 5 * time.Millisecond, Interval: time.Millisecond},
	}, nil)
	require.NoError(t, err)

	r.Start(context.Background())

	require.Eventually(t, func() bool {
		return reg.Len() == 2
	}, 2*time.Second, 5*time.Millisecond)

	r.Stop()

	entries := reg.Flush()
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.Positive(t, e.Count, e.Name)
		assert.Positive(t, e.Total, e.Name)
	}

	snap := r.Snapshot()
	assert.Positive(t, snap["fast"][OutcomeOK])
	assert.Positive(t, snap["slow"][OutcomeOK])
	assert.Empty(t, r.Snapshot())
}

func TestRunner_ClassifiesTimeouts(t *testing.T) {
	reg := timer.New(timer.WithOutput(&bytes.Buffer{}))

	r, err := NewRunner(testLog(), reg, []Config{
		{
			Name:     "stuck",
			Type:     TypeSleep,
			Duration: time.Second,
			Timeout:  time.Millisecond,
			Interval: time.Millisecond,
		},
	}, nil)
	require.NoError(t, err)

	r.Start(context.Background())

	require.Eventually(t, func() bool {
		return reg.Len() == 1
	}, 2*time.Second, 5*time.Millisecond)

	r.Stop()

	snap := r.Snapshot()
	assert.Positive(t, snap["stuck"][OutcomeTimeout])
	assert.Zero(t, snap["stuck"][OutcomeOK])
}

func TestRunner_InvalidProbe(t *testing.T) {
	_, err := NewRunner(testLog(), timer.New(), []Config{{Name: "x", Type: "bogus"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating probe")
}

func TestRunner_StopWithoutStart(t *testing.T) {
	r, err := NewRunner(testLog(), timer.New(), nil, nil)
	require.NoError(t, err)

	r.Stop()
}
