package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("PIWORK_RUNTIME_DIR", "")
	t.Setenv("PIWORK_WORKSPACE_ROOT", "")
	t.Setenv("PIWORK_READY_TIMEOUT_SECS", "")
	t.Setenv("PIWORK_RPC_CONNECT_TIMEOUT_SECS", "")

	cfg := NewConfigFromEnv("/default/runtime", "/tasks", "/auth")
	require.Equal(t, "/default/runtime", cfg.RuntimeDir)
	require.Equal(t, "", cfg.WorkspaceRoot)
	require.Equal(t, defaultReadyTimeout, cfg.ReadyTimeout)
	require.Equal(t, defaultConnectTimeout, cfg.ConnectTimeout)
}

func TestNewConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("PIWORK_RUNTIME_DIR", "/override/runtime")
	t.Setenv("PIWORK_WORKSPACE_ROOT", "/pinned/workspace")
	t.Setenv("PIWORK_READY_TIMEOUT_SECS", "10")
	t.Setenv("PIWORK_RPC_CONNECT_TIMEOUT_SECS", "20")

	cfg := NewConfigFromEnv("/default/runtime", "/tasks", "/auth")
	require.Equal(t, "/override/runtime", cfg.RuntimeDir)
	require.Equal(t, "/pinned/workspace", cfg.WorkspaceRoot)
	require.Equal(t, 10*time.Second, cfg.ReadyTimeout)
	require.Equal(t, 20*time.Second, cfg.ConnectTimeout)
}

func TestNewConfigFromEnvIgnoresInvalidTimeout(t *testing.T) {
	t.Setenv("PIWORK_READY_TIMEOUT_SECS", "not-a-number")
	cfg := NewConfigFromEnv("/rt", "/tasks", "/auth")
	require.Equal(t, defaultReadyTimeout, cfg.ReadyTimeout)
}
