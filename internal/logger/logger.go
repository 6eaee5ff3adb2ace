package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default logging configuration constants
const (
	DefaultMaxSizeMB   = 10 // MB
	DefaultMaxBackups  = 3  // number of backup files
	DefaultMaxAgeDays  = 7  // days
	DefaultEventSource = "hourgate"
)

// Config describes where service log records go.
// File is the primary sink; a relative path is resolved against the
// directory of the running executable. The system sink (event log on
// Windows, stderr elsewhere) receives records when File is empty and
// failure reports when writing the file fails. On Windows every record is
// also written to the event log next to the file.
// Rotation parameters follow lumberjack semantics.
type Config struct {
	File        string
	Level       string // debug, info, warn, error (default info)
	Console     bool   // also write coloured records to stderr
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Compress    bool
	EventSource string // event log source name (Windows)
}

// ParseLevel maps a level name onto slog levels. Unknown names yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the service logger. The returned closer releases the file and
// system sinks and must be called on shutdown.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	sys, err := systemSink(valOrStr(cfg.EventSource, DefaultEventSource))
	if err != nil {
		// no event log available; keep going with stderr
		sys = nopCloser{os.Stderr}
	}
	closers := multiCloser{sys}

	var out io.Writer = sys
	var mirror slog.Handler
	if cfg.File != "" {
		file := &lj.Logger{
			Filename:   ResolvePath(cfg.File),
			MaxSize:    valOr(cfg.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(cfg.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(cfg.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   cfg.Compress,
		}
		closers = append(closers, file)
		out = &FallbackWriter{Primary: file, Secondary: sys, NoForward: mirrorToSystem}
		if mirrorToSystem {
			mirror = slog.NewTextHandler(sys, opts)
		}
	}

	handlers := []slog.Handler{slog.NewTextHandler(out, opts)}
	if mirror != nil {
		handlers = append(handlers, mirror)
	}
	if cfg.Console {
		handlers = append(handlers, NewColorTextHandler(os.Stderr, opts, true))
	}
	return slog.New(Tee(handlers...)), closers, nil
}

// ResolvePath anchors a relative log path at the executable's directory,
// which is where a service host expects to find it.
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return p
	}
	return filepath.Join(filepath.Dir(exe), p)
}

// systemSink opens the secondary sink; replaced in tests.
var systemSink = openSystemSink

// FallbackWriter writes to Primary and, when that fails, reports the failure
// and the original record to Secondary. Write never returns an error so a
// broken log file cannot interrupt the caller.
type FallbackWriter struct {
	Primary   io.Writer
	Secondary io.Writer
	// NoForward reports the failure only, for when Secondary already
	// receives every record.
	NoForward bool

	mu sync.Mutex
}

func (w *FallbackWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.Primary.Write(p); err != nil {
		if w.Secondary != nil {
			_, _ = fmt.Fprintf(w.Secondary, "%s level=ERROR msg=\"failed to write to log file\" err=%q\n",
				time.Now().Format(time.RFC3339), err.Error())
			if !w.NoForward {
				_, _ = w.Secondary.Write(p)
			}
		}
	}
	return len(p), nil
}

// Tee fans a record out to every handler that accepts its level.
func Tee(hs ...slog.Handler) slog.Handler {
	if len(hs) == 1 {
		return hs[0]
	}
	return teeHandler(hs)
}

type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for i := len(m) - 1; i >= 0; i-- {
		if err := m[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func valOrStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
