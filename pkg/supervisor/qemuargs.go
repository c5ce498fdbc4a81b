package supervisor

import (
	"fmt"

	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Device driver strings, named the way github.com/intel/govmm/qemu names
// its DeviceDriver constants. Only the handful this controller actually
// drives are reproduced here; there is no govmm import — the rest of its
// device catalogue (vhost-user, vfio, PCIe bridges) has no role in a
// single-guest launcher, so it is not worth vendoring.
const (
	driverVirtioNet = "virtio-net-pci"
	driverVirtio9P  = "virtio-9p-pci"
)

const guestMAC = "52:54:00:12:34:56"

// mountSpec is one virtio-9p share the guest will mount by tag, expressed
// as an OCI specs.Mount the way an OCI bind-mount table is built: Source
// is the host path, Destination carries the virtio-9p mount tag (there is
// no guest-side path to bind to, only a tag), Type records the virtio
// transport instead of "bind", and Options is unused but kept for shape
// parity with a conventional mount table.
type mountSpec = specs.Mount

const mountTypeVirtio9P = "virtio-9p"

func newMountSpec(tag, path string) mountSpec {
	return specs.Mount{
		Source:      path,
		Destination: tag,
		Type:        mountTypeVirtio9P,
	}
}

// buildArgs assembles the qemu-system argv for one session: kernel,
// initrd, cmdline, fixed CPU/memory/framebuffer posture, virtio-net with a
// host port-forward onto RpcPort, up to three virtio-9p mounts, and a
// serial console redirected to logPath.
func buildArgs(kernel, initrd, cmdline, logPath string, mounts []mountSpec) []string {
	args := []string{
		"-kernel", kernel,
		"-initrd", initrd,
		"-append", cmdline,
		"-smp", "2",
		"-m", "2048",
		"-nographic",
		"-vga", "none",
		"-serial", fmt.Sprintf("file:%s", logPath),
		"-netdev", fmt.Sprintf("user,id=net0,hostfwd=tcp:127.0.0.1:%d-:%d", RpcPort, RpcPort),
		"-device", fmt.Sprintf("%s,netdev=net0,mac=%s", driverVirtioNet, guestMAC),
	}

	for i, m := range mounts {
		fsID := fmt.Sprintf("fs%d", i)
		args = append(args,
			"-fsdev", fmt.Sprintf("local,id=%s,path=%s,security_model=mapped-xattr", fsID, m.Source),
			"-device", fmt.Sprintf("%s,fsdev=%s,mount_tag=%s", driverVirtio9P, fsID, m.Destination),
		)
	}

	return args
}

// appendCmdlineTokens appends piwork.task_id and piwork.auth_profile
// tokens to the base command line when their values are non-empty, each
// separated from the base and from each other by a single space.
func appendCmdlineTokens(base, taskID, authProfile string) string {
	cmdline := base
	if taskID != "" {
		cmdline += " piwork.task_id=" + taskID
	}
	if authProfile != "" {
		cmdline += " piwork.auth_profile=" + authProfile
	}
	return cmdline
}
