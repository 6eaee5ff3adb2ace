package process

import (
	"bytes"
	"context"
)

// CommandResult is the captured outcome of one OS command.
// Err is set when the shell could not be spawned or the command exited non-zero.
type CommandResult struct {
	Command string
	Stdout  string
	Stderr  string
	Err     error
}

// Controller is the OS capability used by the reconciler.
type Controller interface {
	// Start launches the application at p.LaunchPath.
	Start(ctx context.Context, p Spec) CommandResult
	// Stop forcefully terminates every process named p.ExecutableName().
	Stop(ctx context.Context, p Spec) CommandResult
	// IsRunning reports whether an instance of p is alive.
	IsRunning(ctx context.Context, p Spec) (bool, error)
}

// ShellController issues commands through the OS command interpreter
// (cmd /c on Windows, /bin/sh -c elsewhere) and waits for them to exit.
// Outside Windows, Stop signals matching processes directly.
type ShellController struct{}

func NewShellController() *ShellController { return &ShellController{} }

func (c *ShellController) Start(ctx context.Context, p Spec) CommandResult {
	return Run(ctx, launchCommand(p))
}

func (c *ShellController) Stop(ctx context.Context, p Spec) CommandResult {
	return stopProcesses(ctx, p)
}

func (c *ShellController) IsRunning(ctx context.Context, p Spec) (bool, error) {
	return p.Detector().Alive(ctx)
}

// Run executes script through the OS shell synchronously, capturing stdout and stderr.
func Run(ctx context.Context, script string) CommandResult {
	cmd := getShellCommand(ctx, script)
	configureSysProcAttr(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return CommandResult{
		Command: script,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Err:     err,
	}
}

var _ Controller = (*ShellController)(nil)
