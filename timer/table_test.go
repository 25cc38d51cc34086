package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedTable_KeepsNameOrder(t *testing.T) {
	tbl := &sortedTable{}

	tbl.add("m", time.Second)
	tbl.add("a", time.Second)
	tbl.add("z", time.Second)
	tbl.add("a", 2*time.Second)

	require.Equal(t, 3, tbl.len())

	entries := tbl.drain()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, Stats{Count: 2, Total: 3 * time.Second}, entries[0].Stats)
	assert.Equal(t, "m", entries[1].Name)
	assert.Equal(t, "z", entries[2].Name)

	assert.Equal(t, 0, tbl.len())
	assert.Nil(t, tbl.entries)
}

func TestMapTable_DrainClears(t *testing.T) {
	tbl := newMapTable()

	tbl.add("x", time.Second)
	tbl.add("x", time.Second)
	tbl.add("y", time.Millisecond)

	entries := tbl.drain()
	assert.Len(t, entries, 2)
	assert.Equal(t, 0, tbl.len())

	tbl.add("x", time.Second)
	assert.Equal(t, []Entry{{Name: "x", Stats: Stats{Count: 1, Total: time.Second}}}, tbl.drain())
}

func TestNewTable_Backing(t *testing.T) {
	assert.IsType(t, &mapTable{}, newTable(false))
	assert.IsType(t, &sortedTable{}, newTable(true))
}
