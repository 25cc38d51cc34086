package migrate

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "sql/*.sql")
	require.NoError(t, err)

	assert.Contains(t, files, "sql/000001_timer_reports.up.sql")
	assert.Contains(t, files, "sql/000001_timer_reports.down.sql")

	up, err := fs.ReadFile(migrations, "sql/000001_timer_reports.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS timer_reports")
}

func TestWithMultiStatement(t *testing.T) {
	assert.Equal(t,
		"clickhouse://localhost:9000/timers?x-multi-statement=true",
		withMultiStatement("clickhouse://localhost:9000/timers"),
	)
	assert.Equal(t,
		"clickhouse://localhost:9000/timers?username=a&x-multi-statement=true",
		withMultiStatement("clickhouse://localhost:9000/timers?username=a"),
	)
}
