//go:build windows

package process

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// getShellCommand returns a shell command for Windows systems
func getShellCommand(ctx context.Context, script string) *exec.Cmd {
	// #nosec G204
	return exec.CommandContext(ctx, "cmd", "/c", script)
}

// terminateCommand force-kills every process with the image name.
func terminateCommand(p Spec) string {
	name := p.ExecutableName()
	if !strings.EqualFold(filepath.Ext(name), ".exe") {
		name += ".exe"
	}
	return fmt.Sprintf(`taskkill /IM "%s" /F`, name)
}

func stopProcesses(ctx context.Context, p Spec) CommandResult {
	return Run(ctx, terminateCommand(p))
}

// launchCommand opens the launch path through the shell so ClickOnce
// .appref-ms shortcuts resolve; the first quoted argument is the window title.
func launchCommand(p Spec) string {
	return fmt.Sprintf(`start "%s" "%s"`, filepath.Base(p.LaunchPath), p.LaunchPath)
}
