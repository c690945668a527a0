//go:build windows

package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/svc"
)

// stopTimeout bounds how long the SCM waits for the agent loop after a stop request.
const stopTimeout = 5 * time.Second

// agentService implements the Windows service interface (svc.Handler).
type agentService struct {
	logger *zap.Logger
	fn     RunFunc
	err    error
}

// IsWindowsService checks if the process is running as a Windows service.
func IsWindowsService() bool {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return isService
}

func runService(name string, logger *zap.Logger, fn RunFunc) error {
	s := &agentService{logger: logger, fn: fn}
	if err := svc.Run(name, s); err != nil {
		return err
	}
	return s.err
}

// Execute implements the svc.Handler interface for Windows SCM integration.
// It manages the service lifecycle: start, running, stop/shutdown.
func (s *agentService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (ssec bool, errno uint32) {
	changes <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.fn(ctx) }()

	changes <- svc.Status{
		State:   svc.Running,
		Accepts: svc.AcceptStop | svc.AcceptShutdown,
	}
	s.logger.Info("Windows service started")

	for {
		select {
		case err := <-done:
			// The loop ended on its own.
			s.err = err
			changes <- svc.Status{State: svc.StopPending}
			return false, 0
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				s.logger.Info("Windows service stopping")
				changes <- svc.Status{State: svc.StopPending}
				cancel()
				select {
				case err := <-done:
					if !errors.Is(err, context.Canceled) {
						s.err = err
					}
				case <-time.After(stopTimeout):
					s.logger.Warn("Agent loop did not stop in time")
				}
				return false, 0
			default:
				s.logger.Warn("Unexpected service control request",
					zap.Uint32("cmd", uint32(c.Cmd)))
			}
		}
	}
}
