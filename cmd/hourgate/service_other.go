//go:build !windows

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/hourgate/internal/service"
)

func isInteractive() bool { return true }

// serve runs the host until SIGINT or SIGTERM.
func serve(h *service.Host, log *slog.Logger, _ bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runUntil(ctx, h, log, os.Args[1:])
	return nil
}
