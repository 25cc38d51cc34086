package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := rootCmd()

	names := make([]string, 0, 3)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Contains(t, names, "run")
	assert.Contains(t, names, "version")
	assert.Contains(t, names, "migrate")
}

func TestRootCmd_RequiresConfig(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"run"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "config" not set`)
}

func TestMigrateCmd_RequiresDSN(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"migrate", "status"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "dsn" not set`)
}
