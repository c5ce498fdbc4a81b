package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cuemby/warren-vm/pkg/authstore"
	"github.com/cuemby/warren-vm/pkg/history"
	"github.com/cuemby/warren-vm/pkg/preview"
	"github.com/cuemby/warren-vm/pkg/supervisor"
	"github.com/cuemby/warren-vm/pkg/taskstore"
)

// cliEnv bundles the stores every subcommand needs, rooted at a single
// app-data directory resolved from flags, environment, or the default.
type cliEnv struct {
	appDataDir string
	runtimeDir string
	tasksRoot  string
	authRoot   string

	tasks *taskstore.Store
}

func newCliEnv(cmd *cobra.Command) (*cliEnv, error) {
	appDataDir, _ := cmd.Flags().GetString("app-data-dir")
	if appDataDir == "" {
		appDataDir = os.Getenv("PIWORK_APP_DATA_DIR")
	}
	if appDataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		appDataDir = filepath.Join(home, ".local", "share", "piwork")
	}

	runtimeDir, _ := cmd.Flags().GetString("runtime-dir")
	if runtimeDir == "" {
		runtimeDir = os.Getenv("PIWORK_RUNTIME_DIR")
	}
	if runtimeDir == "" {
		runtimeDir = filepath.Join(appDataDir, "runtime")
	}

	tasksRoot := filepath.Join(appDataDir, "tasks")
	authRoot := filepath.Join(appDataDir, "auth")

	return &cliEnv{
		appDataDir: appDataDir,
		runtimeDir: runtimeDir,
		tasksRoot:  tasksRoot,
		authRoot:   authRoot,
		tasks:      taskstore.New(tasksRoot),
	}, nil
}

func (e *cliEnv) previewFacade() *preview.Facade {
	return preview.New(e.tasks)
}

func (e *cliEnv) authPath(profile string) (string, error) {
	return authstore.ProfilePath(e.authRoot, profile)
}

func (e *cliEnv) openHistory() (*history.Log, error) {
	return history.Open(e.appDataDir)
}

func (e *cliEnv) newSupervisor(sink supervisor.EventSink, sessionHistory *history.Log) *supervisor.Supervisor {
	cfg := supervisor.NewConfigFromEnv(e.runtimeDir, e.tasksRoot, e.authRoot)
	// e.runtimeDir already applied PIWORK_RUNTIME_DIR below the --runtime-dir flag.
	cfg.RuntimeDir = e.runtimeDir
	return supervisor.New(cfg, e.tasks, sink, supervisor.NewOSFilesystemView(e.appDataDir), sessionHistory)
}

func homeDir() (string, error) {
	return os.UserHomeDir()
}
