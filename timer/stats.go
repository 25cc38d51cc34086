package timer

import "time"

// Stats is the accumulated invocation count and elapsed time for one name.
type Stats struct {
	Count int64
	Total time.Duration
}

// Avg returns the mean elapsed time per invocation.
func (s Stats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}

	return s.Total / time.Duration(s.Count)
}

func (s *Stats) add(d time.Duration) {
	s.Count++
	s.Total += d
}

// Entry pairs a name with its Stats. Flush returns entries in report order.
type Entry struct {
	Name string
	Stats
}
