package supervisor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildArgsIncludesMountsAndCoreDevices(t *testing.T) {
	args := buildArgs("/rt/kernel", "/rt/initrd", "quiet console=ttyAMA0", "/vm/console.log", []mountSpec{
		newMountSpec("workdir", "/work"),
		newMountSpec("taskstate", "/tasks"),
	})

	joined := strings.Join(args, " ")
	require.Contains(t, joined, "-kernel /rt/kernel")
	require.Contains(t, joined, "-initrd /rt/initrd")
	require.Contains(t, joined, "-smp 2")
	require.Contains(t, joined, "mount_tag=workdir")
	require.Contains(t, joined, "mount_tag=taskstate")
	require.Contains(t, joined, "hostfwd=tcp:127.0.0.1:19384-:19384")
	require.Contains(t, joined, "mac=52:54:00:12:34:56")
	require.NotContains(t, joined, "-vnc")
}

func TestBuildArgsOmitsMountsWhenNone(t *testing.T) {
	args := buildArgs("/k", "/i", "quiet", "/log", nil)
	joined := strings.Join(args, " ")
	require.NotContains(t, joined, "mount_tag")
}

func TestAppendCmdlineTokensAddsBothWhenSet(t *testing.T) {
	out := appendCmdlineTokens("quiet console=ttyAMA0", "task-1", "default")
	require.Equal(t, "quiet console=ttyAMA0 piwork.task_id=task-1 piwork.auth_profile=default", out)
}

func TestAppendCmdlineTokensOmitsUnsetFields(t *testing.T) {
	out := appendCmdlineTokens("quiet console=ttyAMA0", "", "")
	require.Equal(t, "quiet console=ttyAMA0", out)
}
