//go:build unix

package infer

import (
	"os/exec"
	"syscall"
)

// setProcessGroup runs the sampler as the leader of its own process group
// and replaces the default context kill with a group-wide SIGKILL, so
// children the sampler spawned die with it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
