package timer

import (
	"slices"
	"strings"
	"time"
)

// table is the name -> Stats store behind a Registry. Implementations are
// not safe for concurrent use; the registry lock guards every call.
type table interface {
	add(name string, d time.Duration)
	drain() []Entry
	len() int
}

func newTable(conserveMemory bool) table {
	if conserveMemory {
		return &sortedTable{}
	}

	return newMapTable()
}

type mapTable struct {
	m map[string]*Stats
}

func newMapTable() *mapTable {
	return &mapTable{m: make(map[string]*Stats, 16)}
}

func (t *mapTable) add(name string, d time.Duration) {
	s, ok := t.m[name]
	if !ok {
		s = &Stats{}
		t.m[name] = s
	}

	s.add(d)
}

func (t *mapTable) drain() []Entry {
	out := make([]Entry, 0, len(t.m))
	for name, s := range t.m {
		out = append(out, Entry{Name: name, Stats: *s})
	}

	clear(t.m)

	return out
}

func (t *mapTable) len() int {
	return len(t.m)
}

// sortedTable keeps entries inline in a name-ordered slice. It trades
// O(n) inserts of new names for no per-entry allocations, and drops its
// backing array on drain.
type sortedTable struct {
	entries []Entry
}

func (t *sortedTable) add(name string, d time.Duration) {
	i, found := slices.BinarySearchFunc(t.entries, name, func(e Entry, n string) int {
		return strings.Compare(e.Name, n)
	})

	if !found {
		t.entries = slices.Insert(t.entries, i, Entry{Name: name})
	}

	t.entries[i].add(d)
}

func (t *sortedTable) drain() []Entry {
	out := t.entries
	t.entries = nil

	return out
}

func (t *sortedTable) len() int {
	return len(t.entries)
}
