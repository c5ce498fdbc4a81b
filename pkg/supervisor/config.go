package supervisor

import (
	"os"
	"strconv"
	"time"
)

// RpcPort is the fixed host/guest port used for the line-oriented RPC
// transport, forwarded by the hypervisor's virtio-net device.
const RpcPort = 19384

const (
	defaultReadyTimeout   = 45 * time.Second
	defaultConnectTimeout = 45 * time.Second
)

// Config parametrizes a Supervisor. RuntimeDir, TasksRoot, and AuthRoot
// are plain path fields set up once via a constructor, the timeout fields
// are read from environment overrides at NewConfigFromEnv time and not
// re-read per session.
type Config struct {
	RuntimeDir     string
	TasksRoot      string
	AuthRoot       string
	WorkspaceRoot  string
	ReadyTimeout   time.Duration
	ConnectTimeout time.Duration
}

// NewConfigFromEnv builds a Config from PIWORK_* environment variables,
// falling back to the given defaults for paths that have no override.
func NewConfigFromEnv(runtimeDir, tasksRoot, authRoot string) Config {
	cfg := Config{
		RuntimeDir:     envOr("PIWORK_RUNTIME_DIR", runtimeDir),
		TasksRoot:      tasksRoot,
		AuthRoot:       authRoot,
		WorkspaceRoot:  os.Getenv("PIWORK_WORKSPACE_ROOT"),
		ReadyTimeout:   envSecondsOr("PIWORK_READY_TIMEOUT_SECS", defaultReadyTimeout),
		ConnectTimeout: envSecondsOr("PIWORK_RPC_CONNECT_TIMEOUT_SECS", defaultConnectTimeout),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envSecondsOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
