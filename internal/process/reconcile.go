package process

import (
	"context"
	"log/slog"
	"time"

	"github.com/loykin/hourgate/internal/history"
	"github.com/loykin/hourgate/internal/metrics"
	"github.com/loykin/hourgate/internal/window"
)

// Action is what the reconciler did for one process in one tick.
type Action string

const (
	ActionNone    Action = "none"    // verdict required nothing
	ActionClose   Action = "close"   // terminate command issued
	ActionLaunch  Action = "launch"  // launch command issued
	ActionRunning Action = "running" // already running, nothing issued
	ActionError   Action = "error"   // running state could not be determined
)

// Reconciler drives a Controller from window verdicts.
type Reconciler struct {
	ctrl Controller
	log  *slog.Logger
	sink history.Sink
	now  func() time.Time
}

// ReconcilerOption customises a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithHistory sends every issued command to sink.
func WithHistory(sink history.Sink) ReconcilerOption {
	return func(r *Reconciler) { r.sink = sink }
}

// WithNow overrides the clock used for history timestamps.
func WithNow(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) { r.now = now }
}

func NewReconciler(ctrl Controller, log *slog.Logger, opts ...ReconcilerOption) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	r := &Reconciler{ctrl: ctrl, log: log, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Reconcile applies verdict v to p. A stop verdict always issues the
// terminate command; a run verdict launches only when no instance is found.
// Command failures are logged and never retried here.
func (r *Reconciler) Reconcile(ctx context.Context, p Spec, v window.Verdict) Action {
	switch v {
	case window.VerdictStop:
		res := r.ctrl.Stop(ctx, p)
		r.report(ctx, p, history.EventClose, res)
		r.log.Info("closed process", "name", p.Name, "at", r.now().Format(time.DateTime))
		return ActionClose
	case window.VerdictRun:
		running, err := r.ctrl.IsRunning(ctx, p)
		if err != nil {
			r.log.Error("failed to query process state", "name", p.Name, "err", err)
			return ActionError
		}
		if running {
			r.log.Debug("process already running", "name", p.Name)
			return ActionRunning
		}
		res := r.ctrl.Start(ctx, p)
		r.report(ctx, p, history.EventLaunch, res)
		r.log.Info("started process", "name", p.Name, "at", r.now().Format(time.DateTime))
		return ActionLaunch
	default:
		return ActionNone
	}
}

func (r *Reconciler) report(ctx context.Context, p Spec, typ history.EventType, res CommandResult) {
	metrics.IncAction(p.Name, string(typ))
	attrs := []any{"name", p.Name, "command", res.Command, "output", res.Stdout, "errors", res.Stderr}
	if res.Err != nil {
		metrics.IncCommandError(p.Name, string(typ))
		r.log.Error("command failed", append(attrs, "err", res.Err)...)
	} else {
		r.log.Info("command executed", attrs...)
	}
	if r.sink == nil {
		return
	}
	e := history.Event{
		Type:       typ,
		OccurredAt: r.now(),
		Name:       p.Name,
		Command:    res.Command,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	if err := r.sink.Send(ctx, e); err != nil {
		r.log.Warn("failed to record history", "name", p.Name, "err", err)
	}
}
