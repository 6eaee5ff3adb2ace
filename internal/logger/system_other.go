//go:build !windows

package logger

import (
	"io"
	"os"
)

// openSystemSink returns stderr; there is no event log outside Windows.
func openSystemSink(string) (io.WriteCloser, error) {
	return nopCloser{os.Stderr}, nil
}

// mirrorToSystem is off: stderr would repeat the console output.
var mirrorToSystem = false
