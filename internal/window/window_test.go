package window

import (
	"errors"
	"testing"
	"time"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

func mustParse(t *testing.T, c, o string) Window {
	t.Helper()
	w, err := Parse(c, o)
	if err != nil {
		t.Fatalf("parse %s-%s: %v", c, o, err)
	}
	return w
}

func TestParseTimeOfDay(t *testing.T) {
	good := map[string]TimeOfDay{
		"00:00": {0, 0},
		"09:05": {9, 5},
		"23:59": {23, 59},
		" 19:10 ": {19, 10},
	}
	for in, want := range good {
		got, err := ParseTimeOfDay(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
	for _, in := range []string{"", "9:05", "24:00", "12:60", "12-00", "ab:cd", "12:0", "+1:00", "12:00:00"} {
		if _, err := ParseTimeOfDay(in); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Fatalf("%q: expected ErrInvalidTimeOfDay, got %v", in, err)
		}
	}
}

func TestParseWrapsFieldName(t *testing.T) {
	_, err := Parse("7pm", "19:10")
	if err == nil || !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Fatalf("expected invalid close error, got %v", err)
	}
	if got := err.Error(); got[:10] != "close time" {
		t.Fatalf("error should name the field: %s", got)
	}
	if _, err := Parse("19:05", "x"); err == nil {
		t.Fatalf("expected invalid open error")
	}
}

func TestEvaluateSameDayWindow(t *testing.T) {
	w := mustParse(t, "09:00", "17:00")
	cases := []struct {
		now  time.Time
		want Verdict
	}{
		{at(10, 8, 0), VerdictNone},
		{at(10, 8, 59), VerdictNone},
		{at(10, 9, 0), VerdictStop},
		{at(10, 10, 0), VerdictStop},
		{at(10, 16, 59), VerdictStop},
		{at(10, 17, 0), VerdictRun},
		{at(10, 18, 0), VerdictRun},
		{at(10, 23, 59), VerdictRun},
		{at(11, 0, 0), VerdictNone},
	}
	for _, c := range cases {
		if got := w.Evaluate(c.now); got != c.want {
			t.Errorf("%s: got %s want %s", c.now.Format("15:04"), got, c.want)
		}
	}
}

func TestEvaluateWrappingWindow(t *testing.T) {
	w := mustParse(t, "22:00", "06:00")
	if !w.Wraps() {
		t.Fatalf("expected wrapping window")
	}
	cases := []struct {
		now  time.Time
		want Verdict
	}{
		{at(10, 23, 0), VerdictStop},
		{at(10, 22, 0), VerdictStop},
		{at(11, 0, 0), VerdictStop},
		{at(11, 5, 0), VerdictStop},
		{at(11, 5, 59), VerdictStop},
		{at(11, 6, 0), VerdictRun},
		{at(11, 7, 0), VerdictRun},
		{at(11, 21, 59), VerdictRun},
	}
	for _, c := range cases {
		if got := w.Evaluate(c.now); got != c.want {
			t.Errorf("%s: got %s want %s", c.now.Format("01-02 15:04"), got, c.want)
		}
	}
}

func TestEvaluateEqualTimesIsEmptyClosedWindow(t *testing.T) {
	w := mustParse(t, "12:00", "12:00")
	if w.Wraps() {
		t.Fatalf("equal times must not wrap")
	}
	if got := w.Evaluate(at(10, 11, 59)); got != VerdictNone {
		t.Fatalf("before: got %s", got)
	}
	if got := w.Evaluate(at(10, 12, 0)); got != VerdictRun {
		t.Fatalf("at boundary: got %s", got)
	}
	if got := w.Evaluate(at(10, 13, 0)); got != VerdictRun {
		t.Fatalf("after: got %s", got)
	}
}

func TestEvaluateSecondsInsideBoundaryMinute(t *testing.T) {
	w := mustParse(t, "19:05", "19:10")
	now := time.Date(2024, 3, 10, 19, 9, 59, 0, time.UTC)
	if got := w.Evaluate(now); got != VerdictStop {
		t.Fatalf("19:09:59 should be closed, got %s", got)
	}
	now = time.Date(2024, 3, 10, 19, 10, 0, 1, time.UTC)
	if got := w.Evaluate(now); got != VerdictRun {
		t.Fatalf("19:10:00.000000001 should be open, got %s", got)
	}
}

// Exactly one verdict is produced for every minute of a day across a range of windows.
func TestEvaluateIsTotalAndConsistent(t *testing.T) {
	windows := []Window{
		mustParse(t, "09:00", "17:00"),
		mustParse(t, "22:00", "06:00"),
		mustParse(t, "00:00", "23:59"),
		mustParse(t, "23:59", "00:00"),
		mustParse(t, "05:30", "05:30"),
	}
	for _, w := range windows {
		for m := 0; m < 24*60; m++ {
			now := at(10, 0, 0).Add(time.Duration(m) * time.Minute)
			v := w.Evaluate(now)
			if v != VerdictNone && v != VerdictStop && v != VerdictRun {
				t.Fatalf("%s at %s: unknown verdict %d", w, now.Format("15:04"), v)
			}
			if (v == VerdictStop) != w.Closed(now) {
				t.Fatalf("%s at %s: stop verdict disagrees with Closed", w, now.Format("15:04"))
			}
		}
	}
}

func TestBounds(t *testing.T) {
	w := mustParse(t, "22:00", "06:00")
	c, o := w.Bounds(at(10, 23, 0))
	if !c.Equal(at(10, 22, 0)) || !o.Equal(at(11, 6, 0)) {
		t.Fatalf("late evening bounds: %s %s", c, o)
	}
	c, o = w.Bounds(at(11, 5, 0))
	if !c.Equal(at(10, 22, 0)) || !o.Equal(at(11, 6, 0)) {
		t.Fatalf("early morning bounds: %s %s", c, o)
	}

	w = mustParse(t, "09:00", "17:00")
	c, o = w.Bounds(at(10, 8, 0))
	if !c.Equal(at(10, 9, 0)) || !o.Equal(at(10, 17, 0)) {
		t.Fatalf("same day bounds: %s %s", c, o)
	}
}

func TestFirstDelay(t *testing.T) {
	w := mustParse(t, "19:05", "19:10")
	if d := w.FirstDelay(at(10, 19, 0)); d != 5*time.Minute {
		t.Fatalf("expected 5m, got %s", d)
	}
	if d := w.FirstDelay(at(10, 19, 5)); d != 0 {
		t.Fatalf("expected 0 at boundary, got %s", d)
	}
	if d := w.FirstDelay(at(10, 20, 0)); d != 0 {
		t.Fatalf("expected clamp to 0, got %s", d)
	}
}

// The first delay targets today's close even for a wrapping window: shortly
// after midnight it waits for this evening's close although the window is
// already closed. Steady-state ticks still see the closed verdict.
func TestFirstDelayIgnoresWrap(t *testing.T) {
	w := mustParse(t, "22:00", "06:00")
	now := at(11, 1, 0)
	if d := w.FirstDelay(now); d != 21*time.Hour {
		t.Fatalf("expected 21h, got %s", d)
	}
	if got := w.Evaluate(now); got != VerdictStop {
		t.Fatalf("expected stop verdict at 01:00, got %s", got)
	}
}

func TestVerdictString(t *testing.T) {
	if VerdictNone.String() != "none" || VerdictStop.String() != "stop" || VerdictRun.String() != "run" {
		t.Fatalf("unexpected verdict strings")
	}
	if (TimeOfDay{Hour: 7, Minute: 3}).String() != "07:03" {
		t.Fatalf("unexpected time string")
	}
}
