//go:build windows

package detector

import (
	"context"
	"strings"
	"testing"
)

func TestBuildShellAwareCommand_Windows(t *testing.T) {
	ctx := context.Background()
	c := buildShellAwareCommand(ctx, "")
	if !strings.Contains(c.String(), "cmd") {
		t.Fatalf("expected cmd, got %q", c.String())
	}
	c = buildShellAwareCommand(ctx, "tasklist | findstr hi")
	if len(c.Args) < 2 || c.Args[0] != "cmd" || c.Args[1] != "/c" {
		t.Fatalf("expected cmd /c, got %#v", c.Args)
	}
}

func TestCommandDetectorAlive_Windows(t *testing.T) {
	d := CommandDetector{Command: "cmd /c rem"}
	alive, err := d.Alive(context.Background())
	if err != nil || !alive {
		t.Fatalf("rem should be alive, got %v %v", alive, err)
	}
}
