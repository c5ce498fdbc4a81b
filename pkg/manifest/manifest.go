// Package manifest loads the read-only runtime manifest that describes a
// guest image's kernel, initrd, command line, and hypervisor binary.
package manifest

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cuemby/warren-vm/pkg/apperr"
	"github.com/cuemby/warren-vm/pkg/types"
)

// FileName is the manifest file read from a runtime directory.
const FileName = "manifest.json"

// DefaultHypervisorName is searched on PATH when the manifest omits qemu.
const DefaultHypervisorName = "qemu-system-aarch64"

// Load reads and parses <runtimeDir>/manifest.json.
func Load(runtimeDir string) (*types.Manifest, error) {
	path := filepath.Join(runtimeDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.New(apperr.NotFound, "manifest missing at %s", path)
		}
		return nil, apperr.Wrap(apperr.IO, err, "read manifest %s", path)
	}

	var m types.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperr.Wrap(apperr.Parse, err, "parse manifest %s", path)
	}
	if m.Kernel == "" || m.Initrd == "" {
		return nil, apperr.New(apperr.Parse, "manifest %s missing kernel or initrd", path)
	}
	if filepath.IsAbs(m.Kernel) || filepath.IsAbs(m.Initrd) {
		return nil, apperr.New(apperr.Parse, "manifest %s: kernel and initrd must be relative paths", path)
	}
	return &m, nil
}

// Cmdline returns the manifest's command line, or DefaultCmdline if unset.
func Cmdline(m *types.Manifest) string {
	if m.Cmdline == "" {
		return types.DefaultCmdline
	}
	return m.Cmdline
}

// ResolveHypervisor returns the absolute path to the hypervisor binary: the
// manifest's qemu path (resolved against runtimeDir) if present and
// executable, otherwise the default binary name found on PATH.
func ResolveHypervisor(m *types.Manifest, runtimeDir string) (string, error) {
	if m.Qemu != "" {
		if filepath.IsAbs(m.Qemu) {
			return "", apperr.New(apperr.Parse, "manifest qemu path must be relative, got %s", m.Qemu)
		}
		candidate := filepath.Join(runtimeDir, m.Qemu)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}

	found, err := exec.LookPath(DefaultHypervisorName)
	if err != nil {
		return "", apperr.New(apperr.NotFound, "hypervisor binary not found: no manifest qemu path and %s not on PATH", DefaultHypervisorName)
	}
	return found, nil
}

// RuntimeState reports whether a runtime directory currently has a usable
// manifest. It is a read-only diagnostic — it never gates Start.
type RuntimeState string

const (
	RuntimeReady   RuntimeState = "ready"
	RuntimeMissing RuntimeState = "missing"
)

// RuntimeStatus is the result of a diagnostic probe of a runtime directory,
// reporting manifest presence and hypervisor resolvability without
// attempting to spawn anything.
type RuntimeStatus struct {
	Status         RuntimeState `json:"status"`
	RuntimeDir     string       `json:"runtime_dir"`
	ManifestPath   string       `json:"manifest_path"`
	QemuAvailable  bool         `json:"qemu_available"`
	QemuPath       string       `json:"qemu_path,omitempty"`
	AccelAvailable *bool        `json:"accel_available,omitempty"`
}

// Status probes runtimeDir for a usable manifest and hypervisor, mirroring
// the shell's "is the runtime ready" diagnostic. It never returns an error
// for a merely-missing manifest; that is reported via Status/ManifestPath.
func Status(runtimeDir string) (RuntimeStatus, error) {
	if err := os.MkdirAll(runtimeDir, 0o755); err != nil {
		return RuntimeStatus{}, apperr.Wrap(apperr.IO, err, "create runtime dir %s", runtimeDir)
	}

	manifestPath := filepath.Join(runtimeDir, FileName)
	result := RuntimeStatus{
		Status:       RuntimeMissing,
		RuntimeDir:   runtimeDir,
		ManifestPath: manifestPath,
	}

	m, err := Load(runtimeDir)
	if err != nil {
		return result, nil
	}
	result.Status = RuntimeReady

	if qemuPath, err := ResolveHypervisor(m, runtimeDir); err == nil {
		result.QemuAvailable = true
		result.QemuPath = qemuPath
	}

	result.AccelAvailable = checkAccelAvailable()

	return result, nil
}

// checkAccelAvailable best-effort probes for hardware virtualization
// acceleration (/dev/kvm on Linux). Returns nil when the probe is
// inconclusive rather than guessing.
func checkAccelAvailable() *bool {
	info, err := os.Stat("/dev/kvm")
	if err != nil {
		if os.IsNotExist(err) {
			no := false
			return &no
		}
		return nil
	}
	yes := !info.IsDir()
	return &yes
}
