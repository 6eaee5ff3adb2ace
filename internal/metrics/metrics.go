package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK    atomic.Bool
	gatherer atomic.Pointer[prometheus.Gatherer]

	ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hourgate",
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Number of reconciliation ticks executed.",
		},
	)
	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hourgate",
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent reconciling all processes in one tick.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	armed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hourgate",
			Subsystem: "scheduler",
			Name:      "armed",
			Help:      "1 while the scheduler timer is armed, 0 when stopped.",
		},
	)
	configErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hourgate",
			Subsystem: "scheduler",
			Name:      "config_errors_total",
			Help:      "Schedule setups aborted by a configuration error.",
		},
	)
	actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hourgate",
			Subsystem: "process",
			Name:      "actions_total",
			Help:      "Commands issued per process and action (close or launch).",
		}, []string{"name", "action"},
	)
	commandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hourgate",
			Subsystem: "process",
			Name:      "command_errors_total",
			Help:      "Commands that failed to spawn or exited non-zero.",
		}, []string{"name", "action"},
	)
	verdicts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hourgate",
			Subsystem: "process",
			Name:      "verdict",
			Help:      "Last window verdict per process (1 = active verdict, 0 = inactive).",
		}, []string{"name", "verdict"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{ticks, tickDuration, armed, configErrors, actions, commandErrors, verdicts}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	if g, ok := r.(prometheus.Gatherer); ok {
		gatherer.Store(&g)
	}
	regOK.Store(true)
	return nil
}

// Handler serves the registry passed to Register when it can be gathered,
// and the DefaultGatherer otherwise.
func Handler() http.Handler {
	if g := gatherer.Load(); g != nil {
		return promhttp.HandlerFor(*g, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func ObserveTick(seconds float64) {
	if regOK.Load() {
		ticks.Inc()
		tickDuration.Observe(seconds)
	}
}

func SetArmed(on bool) {
	if regOK.Load() {
		armed.Set(boolValue(on))
	}
}

func IncConfigError() {
	if regOK.Load() {
		configErrors.Inc()
	}
}

func IncAction(name, action string) {
	if regOK.Load() {
		actions.WithLabelValues(name, action).Inc()
	}
}

func IncCommandError(name, action string) {
	if regOK.Load() {
		commandErrors.WithLabelValues(name, action).Inc()
	}
}

// SetVerdict marks verdict as the active one for name and clears the others.
func SetVerdict(name, verdict string, all []string) {
	if !regOK.Load() {
		return
	}
	for _, v := range all {
		verdicts.WithLabelValues(name, v).Set(boolValue(v == verdict))
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
