package window

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeOfDay is returned when a time of day is not in strict HH:mm form.
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses strict "HH:mm" (two digit hour 00-23, two digit minute 00-59).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("%w: %q (want HH:mm)", ErrInvalidTimeOfDay, s)
	}
	h, err := parseTwoDigits(s[:2])
	if err != nil || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %q has bad hour", ErrInvalidTimeOfDay, s)
	}
	m, err := parseTwoDigits(s[3:])
	if err != nil || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q has bad minute", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func parseTwoDigits(s string) (int, error) {
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errors.New("not a digit")
		}
	}
	return strconv.Atoi(s)
}

// Of returns the time of day of t, truncated to the minute.
func Of(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (d TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute) }

// Before reports whether d is earlier in the day than o.
func (d TimeOfDay) Before(o TimeOfDay) bool { return d.offset() < o.offset() }

func (d TimeOfDay) offset() time.Duration {
	return time.Duration(d.Hour)*time.Hour + time.Duration(d.Minute)*time.Minute
}

// On combines the calendar date of t with d, in t's location.
func (d TimeOfDay) On(t time.Time) time.Time {
	y, mo, day := t.Date()
	return time.Date(y, mo, day, d.Hour, d.Minute, 0, 0, t.Location())
}

// sinceMidnight returns the clock offset of t including seconds, so that
// 19:05:30 sorts after a 19:05 boundary the same way the wall clock does.
func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// Verdict is the desired process state for a moment in time.
type Verdict int

const (
	// VerdictNone means no action this tick.
	VerdictNone Verdict = iota
	// VerdictStop means managed processes must be stopped.
	VerdictStop
	// VerdictRun means managed processes must be running.
	VerdictRun
)

func (v Verdict) String() string {
	switch v {
	case VerdictStop:
		return "stop"
	case VerdictRun:
		return "run"
	default:
		return "none"
	}
}

// Window is a recurring daily closed interval. When Open is earlier in the
// day than Close the closed interval spans midnight.
type Window struct {
	Close TimeOfDay
	Open  TimeOfDay
}

// Parse builds a Window from two "HH:mm" strings.
func Parse(closeAt, openAt string) (Window, error) {
	c, err := ParseTimeOfDay(closeAt)
	if err != nil {
		return Window{}, fmt.Errorf("close time: %w", err)
	}
	o, err := ParseTimeOfDay(openAt)
	if err != nil {
		return Window{}, fmt.Errorf("open time: %w", err)
	}
	return Window{Close: c, Open: o}, nil
}

// Wraps reports whether the closed interval crosses midnight.
// Equal close and open times never wrap.
func (w Window) Wraps() bool { return w.Open.Before(w.Close) }

func (w Window) String() string { return w.Close.String() + "-" + w.Open.String() }

// Bounds returns the close and open boundaries of the cycle that now belongs to.
// Both are anchored on now's date; for a wrapping window the open boundary
// moves to the following day. If now is still before the close time of a
// wrapping window, the cycle started yesterday and both boundaries move one
// day back.
func (w Window) Bounds(now time.Time) (closeAt, openAt time.Time) {
	closeAt = w.Close.On(now)
	openAt = w.Open.On(now)
	if w.Wraps() {
		openAt = openAt.AddDate(0, 0, 1)
		if sinceMidnight(now) < w.Close.offset() {
			closeAt = closeAt.AddDate(0, 0, -1)
			openAt = openAt.AddDate(0, 0, -1)
		}
	}
	return closeAt, openAt
}

// Closed reports whether now falls inside the closed interval, comparing the
// time of day only.
func (w Window) Closed(now time.Time) bool {
	t := sinceMidnight(now)
	c, o := w.Close.offset(), w.Open.offset()
	if w.Wraps() {
		return t >= c || t < o
	}
	return t >= c && t < o
}

// Evaluate classifies now. The closed test uses the time of day only while
// the open test compares full timestamps against the cycle's open boundary.
func (w Window) Evaluate(now time.Time) Verdict {
	if w.Closed(now) {
		return VerdictStop
	}
	if _, openAt := w.Bounds(now); !now.Before(openAt) {
		return VerdictRun
	}
	return VerdictNone
}

// FirstDelay is the wait before the first tick: the distance to today's close
// boundary, clamped at zero. It does not apply the midnight wrap.
func (w Window) FirstDelay(now time.Time) time.Duration {
	d := w.Close.On(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
