//go:build windows

package process

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellCommandsWindows(t *testing.T) {
	p := Spec{Name: "BaselinekrSync", LaunchPath: `C:\Start Menu\BaselinekrSync\BaselinekrSync.appref-ms`}
	assert.Equal(t, `taskkill /IM "BaselinekrSync.exe" /F`, terminateCommand(p))
	assert.Equal(t, `start "BaselinekrSync.appref-ms" "C:\Start Menu\BaselinekrSync\BaselinekrSync.appref-ms"`, launchCommand(p))

	p.Executable = "sync.EXE"
	assert.Equal(t, `taskkill /IM "sync.EXE" /F`, terminateCommand(p))
}

func TestRunCapturesOutputWindows(t *testing.T) {
	res := Run(context.Background(), "echo out")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "out")
}
