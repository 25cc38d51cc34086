package probe

import "sync/atomic"

// Outcome classifies a finished probe run.
type Outcome uint8

const (
	OutcomeOK Outcome = iota
	OutcomeFailed
	OutcomeTimeout

	maxOutcome = OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Stats provides lock-free per-Outcome counters for one probe.
// Snapshot reads and resets them, matching the timer table's flush.
type Stats struct {
	counts [maxOutcome + 1]atomic.Uint64
}

// Record increments the counter for outcome o.
func (s *Stats) Record(o Outcome) {
	if o > maxOutcome {
		return
	}

	s.counts[o].Add(1)
}

// Snapshot reads and resets all counters, returning only non-zero entries.
func (s *Stats) Snapshot() map[Outcome]uint64 {
	result := make(map[Outcome]uint64, maxOutcome+1)

	for i := range s.counts {
		if v := s.counts[i].Swap(0); v > 0 {
			result[Outcome(i)] = v
		}
	}

	return result
}
