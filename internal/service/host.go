package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/hourgate/internal/config"
	"github.com/loykin/hourgate/internal/history"
	"github.com/loykin/hourgate/internal/history/factory"
	"github.com/loykin/hourgate/internal/metrics"
	"github.com/loykin/hourgate/internal/process"
	"github.com/loykin/hourgate/internal/scheduler"
	"github.com/loykin/hourgate/internal/server"
)

const shutdownTimeout = 5 * time.Second

// Host ties the scheduler to the service lifecycle. OnStart and OnStop are
// expected to be called serially by the hosting environment.
type Host struct {
	cfg  *config.Config
	log  *slog.Logger
	ctrl process.Controller
	now  func() time.Time
	reg  prometheus.Registerer

	mu    sync.Mutex
	sched *scheduler.Scheduler
	cur   atomic.Pointer[scheduler.Scheduler] // read by Status without mu
	sink  history.Sink
	srv   *server.Server
}

// Option customises a Host.
type Option func(*Host)

// WithController replaces the OS shell controller.
func WithController(c process.Controller) Option {
	return func(h *Host) { h.ctrl = c }
}

// WithClock overrides the scheduler clock.
func WithClock(now func() time.Time) Option {
	return func(h *Host) { h.now = now }
}

// WithRegisterer sets where metrics are registered (default registry otherwise).
func WithRegisterer(r prometheus.Registerer) Option {
	return func(h *Host) { h.reg = r }
}

func New(cfg *config.Config, log *slog.Logger, opts ...Option) *Host {
	if log == nil {
		log = slog.Default()
	}
	h := &Host{
		cfg:  cfg,
		log:  log,
		ctrl: process.NewShellController(),
		now:  time.Now,
		reg:  prometheus.DefaultRegisterer,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// OnStart arms the scheduler. History and status server failures are logged
// and do not prevent scheduling; a schedule configuration error is returned
// with the scheduler left unarmed.
func (h *Host) OnStart(args []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log.Info("service is starting", "args", args, "base_dir", h.cfg.BaseDir)

	if err := metrics.Register(h.reg); err != nil {
		h.log.Warn("metrics registration failed", "err", err)
	}

	var recOpts []process.ReconcilerOption
	if h.cfg.HistoryDSN != "" && h.sink == nil {
		sink, err := factory.NewSinkFromDSN(h.cfg.HistoryDSN)
		if err != nil {
			h.log.Error("history sink unavailable", "err", err)
		} else {
			h.sink = sink
		}
	}
	if h.sink != nil {
		recOpts = append(recOpts, process.WithHistory(h.sink))
	}
	rec := process.NewReconciler(h.ctrl, h.log, append(recOpts, process.WithNow(h.now))...)

	if h.sched != nil {
		h.sched.Stop()
	}
	h.sched = scheduler.New(h.cfg.Scheduler, rec, h.log, scheduler.WithClock(h.now))
	h.cur.Store(h.sched)

	if h.cfg.ServerListen != "" && h.srv == nil {
		srv, err := server.Listen(h.cfg.ServerListen, h)
		if err != nil {
			h.log.Error("status server failed to listen", "addr", h.cfg.ServerListen, "err", err)
		} else {
			h.srv = srv
			h.log.Info("status server listening", "addr", srv.Addr())
		}
	}
	return h.sched.Start()
}

// OnStop disarms the scheduler and releases the server and history sink.
// It is safe to call more than once.
func (h *Host) OnStop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log.Info("service is stopping")
	if h.sched != nil {
		h.sched.Stop()
	}
	if h.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := h.srv.Shutdown(ctx); err != nil {
			h.log.Warn("status server shutdown", "err", err)
		}
		cancel()
		h.srv = nil
	}
	if h.sink != nil {
		if err := h.sink.Close(); err != nil {
			h.log.Warn("history sink close", "err", err)
		}
		h.sink = nil
	}
}

// Status returns the scheduler snapshot, or a stopped status before OnStart.
func (h *Host) Status() scheduler.Status {
	s := h.cur.Load()
	if s == nil {
		return scheduler.Status{State: scheduler.StateStopped.String()}
	}
	return s.Status()
}

// StatusAddr returns the bound status server address, if any.
func (h *Host) StatusAddr() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.srv == nil {
		return "", fmt.Errorf("status server not running")
	}
	return h.srv.Addr(), nil
}
