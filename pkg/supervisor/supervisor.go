// Package supervisor is the VM supervisor: hypervisor process lifecycle,
// readiness handshake, RPC transport, and the concurrent session-status
// machine. It composes the manifest loader, task store, and credential
// store to parametrize each launch.
package supervisor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/warren-vm/pkg/apperr"
	"github.com/cuemby/warren-vm/pkg/authstore"
	"github.com/cuemby/warren-vm/pkg/history"
	"github.com/cuemby/warren-vm/pkg/log"
	"github.com/cuemby/warren-vm/pkg/manifest"
	"github.com/cuemby/warren-vm/pkg/metrics"
	"github.com/cuemby/warren-vm/pkg/taskstore"
	"github.com/cuemby/warren-vm/pkg/types"
)

// Supervisor holds the at-most-one VM instance slot and its status tag,
// each guarded by its own lock, plus the injected event sink and
// filesystem view. startMu serializes concurrent Start calls so the
// check-then-spawn sequence cannot race into two hypervisor children; it
// is held for the whole of Start, spawn included, and no other operation
// takes it. slotMu is never held across the actual spawn or any blocking
// I/O, to avoid deadlocking a concurrent call that only needs to read
// status.
type Supervisor struct {
	cfg     Config
	tasks   *taskstore.Store
	sink    EventSink
	fsview  FilesystemView
	history *history.Log

	startMu sync.Mutex

	slotMu   sync.Mutex
	instance *instance

	statusMu sync.Mutex
	status   types.Status
}

// New returns a Supervisor in the Stopped state. history may be nil; when
// absent, session transitions are simply not recorded.
func New(cfg Config, tasks *taskstore.Store, sink EventSink, fsview FilesystemView, sessionHistory *history.Log) *Supervisor {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Supervisor{
		cfg:     cfg,
		tasks:   tasks,
		sink:    sink,
		fsview:  fsview,
		history: sessionHistory,
		status:  types.StatusStopped,
	}
}

// Status returns the current status tag plus the instance's RPC address
// and log path, if a session exists. Built inline while holding the slot
// lock, per the design note that nested status calls must never block on
// a second acquisition of a lock already held by the caller.
func (s *Supervisor) Status() types.StatusResponse {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()

	s.statusMu.Lock()
	status := s.status
	s.statusMu.Unlock()

	resp := types.StatusResponse{Status: status}
	if s.instance != nil {
		resp.LogPath = s.instance.logPath
		resp.RpcAddr = rpcAddr()
	}
	return resp
}

// Start launches a hypervisor child for the given working folder, task,
// and credential profile (all optional) and returns immediately once the
// watcher goroutine has been handed off. If a session is already live,
// Start is a no-op that returns the current status instead of launching a
// second hypervisor.
func (s *Supervisor) Start(workingFolder, taskID, authProfile string) (types.StatusResponse, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.slotMu.Lock()
	existing := s.instance
	s.slotMu.Unlock()
	if existing != nil {
		return s.Status(), nil
	}

	m, err := manifest.Load(s.cfg.RuntimeDir)
	if err != nil {
		return types.StatusResponse{}, err
	}
	hypervisorPath, err := manifest.ResolveHypervisor(m, s.cfg.RuntimeDir)
	if err != nil {
		return types.StatusResponse{}, err
	}

	folder, err := s.resolveWorkingFolder(workingFolder, taskID)
	if err != nil {
		return types.StatusResponse{}, err
	}
	if folder != "" {
		info, statErr := os.Stat(folder)
		if statErr != nil || !info.IsDir() {
			return types.StatusResponse{}, apperr.New(apperr.NotFound, "working folder %s is not a directory", folder)
		}
	}

	kernelPath := filepath.Join(s.cfg.RuntimeDir, m.Kernel)
	initrdPath := filepath.Join(s.cfg.RuntimeDir, m.Initrd)
	if _, err := os.Stat(kernelPath); err != nil {
		return types.StatusResponse{}, apperr.New(apperr.NotFound, "kernel image %s not found", kernelPath)
	}
	if _, err := os.Stat(initrdPath); err != nil {
		return types.StatusResponse{}, apperr.New(apperr.NotFound, "initrd image %s not found", initrdPath)
	}

	if authProfile != "" {
		if err := authstore.ValidateProfile(authProfile); err != nil {
			return types.StatusResponse{}, err
		}
		if err := os.MkdirAll(filepath.Join(s.cfg.AuthRoot, authProfile), 0o700); err != nil {
			return types.StatusResponse{}, apperr.Wrap(apperr.IO, err, "create auth profile dir %s", authProfile)
		}
	}

	sessionID := uuid.New().String()
	vmDir := filepath.Join(s.fsview.AppDataDir(), "vms", sessionID)
	if err := os.MkdirAll(vmDir, 0o755); err != nil {
		return types.StatusResponse{}, apperr.Wrap(apperr.IO, err, "create vm dir %s", vmDir)
	}
	logPath := filepath.Join(vmDir, "console.log")

	cmdline := appendCmdlineTokens(manifest.Cmdline(m), taskID, authProfile)

	var mounts []mountSpec
	if folder != "" {
		mounts = append(mounts, newMountSpec("workdir", folder))
	}
	mounts = append(mounts, newMountSpec("taskstate", s.cfg.TasksRoot))
	if authProfile != "" {
		mounts = append(mounts, newMountSpec("authstate", filepath.Join(s.cfg.AuthRoot, authProfile)))
	}

	args := buildArgs(kernelPath, initrdPath, cmdline, logPath, mounts)

	logFile, err := os.Create(logPath)
	if err != nil {
		return types.StatusResponse{}, apperr.Wrap(apperr.IO, err, "create log file %s", logPath)
	}
	defer logFile.Close()

	cmd := exec.Command(hypervisorPath, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		return types.StatusResponse{}, apperr.Wrap(apperr.IO, err, "spawn hypervisor %s", hypervisorPath)
	}

	startedAtMono := time.Now()
	startedAt := startedAtMono.UTC().Format("2006-01-02T15:04:05Z")
	inst := &instance{
		id:            sessionID,
		cmd:           cmd,
		logPath:       logPath,
		taskID:        taskID,
		authProfile:   authProfile,
		startedAt:     startedAt,
		startedAtMono: startedAtMono,
	}

	s.slotMu.Lock()
	s.instance = inst
	s.slotMu.Unlock()
	s.setStatus(types.StatusStarting)
	metrics.RecordStart()

	log.WithComponent("supervisor").Info().Str("session_id", sessionID).Msg("hypervisor spawned")
	s.recordHistory(history.Entry{
		SessionID:   sessionID,
		TaskID:      taskID,
		AuthProfile: authProfile,
		StartedAt:   startedAt,
	})

	go s.watch(inst)

	return types.StatusResponse{Status: types.StatusStarting, LogPath: logPath}, nil
}

// Stop kills the live instance if any, reaps it, and marks the session
// Stopped. Safe to call when already stopped.
func (s *Supervisor) Stop() error {
	s.slotMu.Lock()
	inst := s.instance
	s.instance = nil
	s.slotMu.Unlock()

	if inst == nil {
		return nil
	}

	killAndReap(inst)
	s.setStatus(types.StatusStopped)
	metrics.RecordStop(time.Since(inst.startedAtMono).Seconds(), false)
	s.recordHistory(history.Entry{
		SessionID:   inst.id,
		TaskID:      inst.taskID,
		AuthProfile: inst.authProfile,
		StartedAt:   inst.startedAt,
		StoppedAt:   nowISO8601(),
	})
	return nil
}

// Send writes line, newline-terminated, to the guest RPC endpoint. Fails
// fast (never blocks waiting for a writer to appear) when no session is
// live or the watcher has not connected yet.
func (s *Supervisor) Send(line string) error {
	s.slotMu.Lock()
	inst := s.instance
	s.slotMu.Unlock()

	if inst == nil {
		return apperr.New(apperr.VmNotRunning, "no vm session is running")
	}

	conn := inst.writer()
	if conn == nil {
		return apperr.New(apperr.RpcNotConnected, "rpc transport is not connected yet")
	}

	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return apperr.Wrap(apperr.RpcNotConnected, err, "write to rpc transport")
	}
	return nil
}

// markStopped is the watcher's terminal path: pull the instance out of
// the slot, reap the child, and set Stopped. If the instance is no longer
// the current one, a Stop already tore it down, so markStopped only closes
// its socket and leaves status, metrics, and history alone; a Stop racing
// ahead of us, or a session started after it, is not undone.
// errMsg is recorded in the session history when the teardown followed a
// failure rather than a clean EOF.
func (s *Supervisor) markStopped(inst *instance, errMsg string) {
	s.slotMu.Lock()
	if s.instance != inst {
		s.slotMu.Unlock()
		inst.closeWriter()
		return
	}
	s.instance = nil
	s.slotMu.Unlock()

	killAndReap(inst)
	s.setStatus(types.StatusStopped)
	metrics.RecordStop(time.Since(inst.startedAtMono).Seconds(), errMsg != "")
	s.recordHistory(history.Entry{
		SessionID:   inst.id,
		TaskID:      inst.taskID,
		AuthProfile: inst.authProfile,
		StartedAt:   inst.startedAt,
		StoppedAt:   nowISO8601(),
		Error:       errMsg,
	})
}

// recordHistory is a no-op when no history log was configured.
func (s *Supervisor) recordHistory(entry history.Entry) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(entry); err != nil {
		log.WithComponent("supervisor").Warn().Err(err).Msg("failed to record session history")
	}
}

func nowISO8601() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// killAndReap best-effort kills the child if still alive and always waits
// on it afterward to avoid leaving a zombie, regardless of whether the
// kill itself succeeded.
func killAndReap(inst *instance) {
	inst.closeWriter()
	if inst.cmd.Process != nil {
		_ = inst.cmd.Process.Kill()
	}
	_ = inst.cmd.Wait()
}

func (s *Supervisor) setStatus(status types.Status) {
	s.statusMu.Lock()
	s.status = status
	s.statusMu.Unlock()
}

// resolveWorkingFolder applies the sticky workspace-root override, then
// the task-id lookup, then the caller-supplied folder, in that order.
func (s *Supervisor) resolveWorkingFolder(workingFolder, taskID string) (string, error) {
	if s.cfg.WorkspaceRoot != "" {
		return s.cfg.WorkspaceRoot, nil
	}

	if taskID != "" {
		if s.tasks == nil {
			return "", apperr.New(apperr.NotFound, "no task store configured")
		}
		task, err := s.tasks.Load(taskID)
		if err != nil {
			return "", err
		}
		if task == nil || task.WorkingFolder == "" {
			return "", apperr.New(apperr.NotFound, "task %s has no configured working folder", taskID)
		}
		return task.WorkingFolder, nil
	}

	return workingFolder, nil
}

func rpcAddr() string {
	return "127.0.0.1:" + strconv.Itoa(RpcPort)
}
