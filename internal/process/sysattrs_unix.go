//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr places the shell in its own process group so that
// launched applications do not receive signals aimed at the service.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
