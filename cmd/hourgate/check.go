package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/loykin/hourgate/internal/config"
	"github.com/loykin/hourgate/internal/window"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

func runCheck(w io.Writer, configPath, at string, now time.Time) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if at != "" {
		tod, err := window.ParseTimeOfDay(at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		now = tod.On(now)
	}

	v := cfg.Window.Evaluate(now)
	closeAt, openAt := cfg.Window.Bounds(now)
	_, _ = fmt.Fprintf(w, "window %s at %s (close %s, open %s)\n",
		cfg.Window, now.Format(time.DateTime), closeAt.Format(time.DateTime), openAt.Format(time.DateTime))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tEXECUTABLE\tVERDICT\tPATH")
	for _, p := range cfg.Scheduler.Processes {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.ExecutableName(), v, p.LaunchPath)
	}
	return tw.Flush()
}
