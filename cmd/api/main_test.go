package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "migrate", "refresh"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
	require.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRootCommand_BadConfigFails(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"migrate", "--config", t.TempDir() + "/missing.yaml"})
	require.Error(t, root.Execute())
}
