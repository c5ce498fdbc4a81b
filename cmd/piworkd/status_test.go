package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/warren-vm/pkg/history"
)

func TestRunStatusHistoryListsRecordedSessions(t *testing.T) {
	appDataDir := t.TempDir()
	cmd := newTestCmd(t, appDataDir, "")
	cmd.Flags().Int("limit", 20, "")

	env, err := newCliEnv(cmd)
	require.NoError(t, err)

	sessionHistory, err := env.openHistory()
	require.NoError(t, err)
	require.NoError(t, sessionHistory.Append(history.Entry{SessionID: "s1", StartedAt: "2026-01-01T00:00:00Z"}))
	require.NoError(t, sessionHistory.Close())

	require.NoError(t, runStatusHistory(cmd, env))
}
