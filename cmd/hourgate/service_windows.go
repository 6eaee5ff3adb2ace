//go:build windows

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sys/windows/svc"

	"github.com/loykin/hourgate/internal/service"
)

// serviceName is the name registered with the service control manager.
const serviceName = "hourgate"

func isInteractive() bool {
	inService, err := svc.IsWindowsService()
	if err != nil {
		return true
	}
	return !inService
}

// serve hands the host to the service control manager when started as a
// service and otherwise runs it until Ctrl+C.
func serve(h *service.Host, log *slog.Logger, interactive bool) error {
	if !interactive {
		return svc.Run(serviceName, &winService{host: h, log: log})
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runUntil(ctx, h, log, os.Args[1:])
	return nil
}

// winService adapts Host to the service control manager.
type winService struct {
	host *service.Host
	log  *slog.Logger
}

// Execute implements svc.Handler. A schedule error leaves the service running
// with the timer disarmed, so the failure is visible in the log rather than
// as a crashed service.
func (s *winService) Execute(args []string, r <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown

	status <- svc.Status{State: svc.StartPending}
	if err := s.host.OnStart(args); err != nil {
		s.log.Warn("service running with the schedule disarmed")
	}
	status <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}

loop:
	for c := range r {
		switch c.Cmd {
		case svc.Interrogate:
			status <- c.CurrentStatus
		case svc.Stop, svc.Shutdown:
			status <- svc.Status{State: svc.StopPending}
			s.host.OnStop()
			break loop
		default:
			s.log.Warn("unexpected service control request", "cmd", c.Cmd)
		}
	}
	status <- svc.Status{State: svc.Stopped}
	return false, 0
}
