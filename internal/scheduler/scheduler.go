package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loykin/hourgate/internal/metrics"
	"github.com/loykin/hourgate/internal/process"
	"github.com/loykin/hourgate/internal/window"
)

// DefaultPeriod is the interval between reconciliation ticks.
const DefaultPeriod = time.Minute

// State of the scheduler timer.
type State int

const (
	StateStopped State = iota
	StateArmed
)

func (s State) String() string {
	if s == StateArmed {
		return "armed"
	}
	return "stopped"
}

// Config is the static schedule. Close and Open are "HH:mm" strings parsed
// on Start so a malformed value keeps the scheduler stopped.
type Config struct {
	Close          string
	Open           string
	Period         time.Duration
	CommandTimeout time.Duration // per process and tick; zero means none
	Processes      []process.Spec
}

// Reconciler applies a verdict to one process.
type Reconciler interface {
	Reconcile(ctx context.Context, p process.Spec, v window.Verdict) process.Action
}

// Result is the outcome for one process in one tick.
type Result struct {
	Name    string         `json:"name"`
	Verdict string         `json:"verdict"`
	Action  process.Action `json:"action"`
}

// TickReport summarises the most recent tick.
type TickReport struct {
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration"`
	Results  []Result      `json:"results"`
}

// Status is a read-only snapshot for status endpoints.
type Status struct {
	State    string      `json:"state"`
	Window   string      `json:"window"`
	Period   string      `json:"period"`
	NextFire *time.Time  `json:"next_fire,omitempty"`
	LastTick *TickReport `json:"last_tick,omitempty"`
}

// Scheduler owns the single repeating timer. Start arms it, Stop disarms it.
// All reconciliation runs on one goroutine and ticks never overlap.
type Scheduler struct {
	cfg Config
	rec Reconciler
	log *slog.Logger
	now func() time.Time

	mu    sync.Mutex // serialises Start/Stop
	state State
	win   window.Window
	quit  chan struct{}
	done  chan struct{}

	statusMu sync.Mutex
	nextFire time.Time
	last     *TickReport
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the wall clock used for delays and verdicts.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(cfg Config, rec Reconciler, log *slog.Logger, opts ...Option) *Scheduler {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{cfg: cfg, rec: rec, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start parses the window, computes the delay to today's close boundary and
// arms the timer. If already armed the previous timer is replaced.
// A configuration error is logged once and leaves the scheduler stopped.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, err := window.Parse(s.cfg.Close, s.cfg.Open)
	if err != nil {
		metrics.IncConfigError()
		s.log.Error("time format error", "err", err)
		return fmt.Errorf("schedule setup: %w", err)
	}

	now := s.now()
	delay := win.FirstDelay(now)
	closeAt, openAt := win.Bounds(now)
	s.log.Info("timer setup",
		"close_time", closeAt.Format(time.DateTime),
		"open_time", openAt.Format(time.DateTime),
		"start_delay", delay.String(),
		"period", s.cfg.Period.String(),
		"processes", len(s.cfg.Processes))

	s.stopLocked()
	s.win = win
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	s.setNextFire(now.Add(delay))
	s.state = StateArmed
	metrics.SetArmed(true)
	go s.loop(delay, s.quit, s.done)
	return nil
}

// Stop disarms the timer and waits for an in-flight tick to finish.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	s.stopLocked()
	s.log.Info("timer stopped")
}

func (s *Scheduler) stopLocked() {
	if s.quit == nil {
		return
	}
	close(s.quit)
	<-s.done
	s.quit, s.done = nil, nil
	s.state = StateStopped
	s.setNextFire(time.Time{})
	metrics.SetArmed(false)
}

// State returns the current timer state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a snapshot of state, next fire time and the last tick.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := Status{State: s.state.String(), Period: s.cfg.Period.String()}
	if s.state == StateArmed {
		st.Window = s.win.String()
	}
	s.mu.Unlock()

	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	if !s.nextFire.IsZero() {
		nf := s.nextFire
		st.NextFire = &nf
	}
	if s.last != nil {
		cp := *s.last
		cp.Results = append([]Result(nil), s.last.Results...)
		st.LastTick = &cp
	}
	return st
}

func (s *Scheduler) loop(delay time.Duration, quit, done chan struct{}) {
	defer close(done)

	first := time.NewTimer(delay)
	defer first.Stop()
	select {
	case <-quit:
		return
	case <-first.C:
	}
	s.tick()

	// time.Ticker drops ticks while a slow tick runs, so ticks never queue up.
	t := time.NewTicker(s.cfg.Period)
	defer t.Stop()
	for {
		select {
		case <-quit:
			return
		case <-t.C:
			s.tick()
		}
	}
}

// tick evaluates the window and reconciles every process in order.
// Commands are not cancelled by Stop; only CommandTimeout bounds them.
func (s *Scheduler) tick() TickReport {
	start := s.now()
	report := TickReport{At: start, Results: make([]Result, 0, len(s.cfg.Processes))}
	for _, p := range s.cfg.Processes {
		v := s.win.Evaluate(s.now())
		metrics.SetVerdict(p.Name, v.String(), verdictNames)
		action := s.reconcile(p, v)
		report.Results = append(report.Results, Result{Name: p.Name, Verdict: v.String(), Action: action})
	}
	report.Duration = s.now().Sub(start)
	metrics.ObserveTick(report.Duration.Seconds())

	s.statusMu.Lock()
	s.last = &report
	s.nextFire = start.Add(s.cfg.Period)
	s.statusMu.Unlock()
	return report
}

func (s *Scheduler) reconcile(p process.Spec, v window.Verdict) process.Action {
	ctx := context.Background()
	if s.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CommandTimeout)
		defer cancel()
	}
	return s.rec.Reconcile(ctx, p, v)
}

func (s *Scheduler) setNextFire(t time.Time) {
	s.statusMu.Lock()
	s.nextFire = t
	s.statusMu.Unlock()
}

var verdictNames = []string{
	window.VerdictNone.String(),
	window.VerdictStop.String(),
	window.VerdictRun.String(),
}
