package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/loykin/hourgate/internal/config"
	"github.com/loykin/hourgate/internal/logger"
	"github.com/loykin/hourgate/internal/service"
	"github.com/loykin/hourgate/internal/window"
)

func runService(configPath string) error {
	interactive := isInteractive()
	h, log, closer, err := newHost(configPath, interactive)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	return serve(h, log, interactive)
}

// newHost loads the configuration and builds the logger and host. A malformed
// close or open time is not fatal: the host still starts, Scheduler.Start
// logs the error once and the schedule stays disarmed.
func newHost(configPath string, interactive bool) (*service.Host, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil && (cfg == nil || !errors.Is(err, window.ErrInvalidTimeOfDay)) {
		// report through the system sink so a service start failure is visible
		if log, closer, lerr := logger.New(logger.Config{}); lerr == nil {
			log.Error("configuration error", "config", configPath, "err", err)
			_ = closer.Close()
		}
		return nil, nil, nil, fmt.Errorf("error loading config: %w", err)
	}

	if interactive {
		cfg.Log.Console = true
	}
	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}
	slog.SetDefault(log)
	return service.New(cfg, log), log, closer, nil
}

// runUntil starts h and keeps it running until ctx is done. A schedule
// error leaves the host up with the scheduler disarmed.
func runUntil(ctx context.Context, h *service.Host, log *slog.Logger, args []string) {
	if err := h.OnStart(args); err != nil {
		log.Warn("service running with the schedule disarmed")
	}
	<-ctx.Done()
	h.OnStop()
}
