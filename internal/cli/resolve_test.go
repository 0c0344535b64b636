package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"resolve", testNote)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestResolveInvalidInputFailsBeforeNetwork(t *testing.T) {
	// No groups configured and a garbage identifier: the error must come
	// from input interpretation, not a connection attempt.
	out, err := execute(t, "resolve", "note1qqqq")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "INVALID_INPUT")
}

func TestResolveNoGroupsIsNotFound(t *testing.T) {
	out, err := execute(t, "resolve", testNote)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "NOT_FOUND")
}

func TestResolveFlags(t *testing.T) {
	cmd := NewRootCommand()
	resolveCmd, _, err := cmd.Find([]string{"resolve"})
	require.NoError(t, err)

	timeoutFlag := resolveCmd.Flags().Lookup("timeout")
	require.NotNil(t, timeoutFlag)
	assert.Equal(t, "30s", timeoutFlag.DefValue)

	require.NotNil(t, resolveCmd.Flags().Lookup("endpoint-timeout"))
}
