//go:build !windows

package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/loykin/hourgate/internal/detector"
)

// getShellCommand returns a shell command for Unix systems
func getShellCommand(ctx context.Context, script string) *exec.Cmd {
	// #nosec G204
	return exec.CommandContext(ctx, "/bin/sh", "-c", script)
}

// terminateCommand describes the kill issued by stopProcesses.
func terminateCommand(p Spec) string {
	return fmt.Sprintf("kill -KILL %s", shellQuote(p.ExecutableName()))
}

// stopProcesses sends SIGKILL to every process whose image matches the
// executable name. The kernel process name is cut to 15 bytes, so matching
// goes through detector.FindByName rather than pkill -x.
// Finding nothing to kill is reported on Stderr, not as an error.
func stopProcesses(ctx context.Context, p Spec) CommandResult {
	res := CommandResult{Command: terminateCommand(p)}
	procs, err := detector.FindByName(ctx, p.ExecutableName())
	if err != nil {
		res.Err = err
		return res
	}
	self := int32(os.Getpid())
	var killed []string
	var errs []error
	for _, proc := range procs {
		if proc.Pid == self {
			continue
		}
		if err := proc.KillWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("pid %d: %w", proc.Pid, err))
			continue
		}
		killed = append(killed, strconv.Itoa(int(proc.Pid)))
	}
	if len(killed) > 0 {
		res.Stdout = "killed pid " + strings.Join(killed, " ") + "\n"
	} else if len(errs) == 0 {
		res.Stderr = "no process found\n"
	}
	res.Err = errors.Join(errs...)
	return res
}

// launchCommand starts the application detached from the shell so the
// command returns immediately.
func launchCommand(p Spec) string {
	return fmt.Sprintf("nohup %s >/dev/null 2>&1 &", shellQuote(p.LaunchPath))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
