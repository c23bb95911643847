//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts cmd in its own process group and makes
// cancellation kill the whole group, so `sh -c` grandchildren die with it.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
