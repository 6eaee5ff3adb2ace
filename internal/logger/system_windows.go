//go:build windows

package logger

import (
	"bytes"
	"io"

	"golang.org/x/sys/windows/svc/eventlog"
)

const eventID = 1

// openSystemSink opens the Windows event log under source. Records that
// carry level=ERROR are written as error entries, everything else as info.
func openSystemSink(source string) (io.WriteCloser, error) {
	l, err := eventlog.Open(source)
	if err != nil {
		return nil, err
	}
	return &eventLogWriter{log: l}, nil
}

type eventLogWriter struct {
	log *eventlog.Log
}

func (w *eventLogWriter) Write(p []byte) (int, error) {
	msg := string(bytes.TrimRight(p, "\r\n"))
	var err error
	if bytes.Contains(p, []byte("level=ERROR")) {
		err = w.log.Error(eventID, msg)
	} else {
		err = w.log.Info(eventID, msg)
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *eventLogWriter) Close() error { return w.log.Close() }

// mirrorToSystem writes every record to the event log as well as the file.
var mirrorToSystem = true
