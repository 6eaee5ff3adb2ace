package hourgate

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/loykin/hourgate/internal/config"
	"github.com/loykin/hourgate/internal/history"
	"github.com/loykin/hourgate/internal/history/factory"
	"github.com/loykin/hourgate/internal/metrics"
	"github.com/loykin/hourgate/internal/process"
	"github.com/loykin/hourgate/internal/scheduler"
	iapi "github.com/loykin/hourgate/internal/server"
	"github.com/loykin/hourgate/internal/service"
	"github.com/loykin/hourgate/internal/window"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Window = window.Window

type Verdict = window.Verdict

const (
	VerdictNone = window.VerdictNone
	VerdictStop = window.VerdictStop
	VerdictRun  = window.VerdictRun
)

type Spec = process.Spec

type Config = cfg.Config

type Status = scheduler.Status

type HistorySink = history.Sink

type HistoryEvent = history.Event

// ParseWindow builds a window from two "HH:mm" strings.
func ParseWindow(closeAt, openAt string) (Window, error) { return window.Parse(closeAt, openAt) }

// LoadConfig reads a TOML configuration. A malformed close or open time is
// returned together with the otherwise complete Config.
func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

func NewHistorySink(dsn string) (HistorySink, error) { return factory.NewSinkFromDSN(dsn) }

// Host is a thin facade over internal/service.Host.
type Host struct{ inner *service.Host }

// NewHost builds a host that issues real OS commands for the processes in c.
func NewHost(c *Config, log *slog.Logger) *Host { return &Host{inner: service.New(c, log)} }

func (h *Host) Start(args []string) error { return h.inner.OnStart(args) }
func (h *Host) Stop()                     { h.inner.OnStop() }
func (h *Host) Status() Status            { return h.inner.Status() }

// StatusHandler exposes /healthz, /status and /metrics for h under basePath.
func StatusHandler(h *Host, basePath string) http.Handler {
	return iapi.NewRouter(h.inner, basePath).Handler()
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }
