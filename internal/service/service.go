// Package service runs an agent either in the foreground or, on Windows,
// under the Service Control Manager.
package service

import (
	"context"

	"go.uber.org/zap"
)

// RunFunc is the agent loop. It must return once ctx is cancelled.
type RunFunc func(ctx context.Context) error

// Run executes fn as the Windows service name when the process was started
// by the SCM, and directly with ctx otherwise.
func Run(ctx context.Context, name string, logger *zap.Logger, fn RunFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if IsWindowsService() {
		return runService(name, logger, fn)
	}
	return fn(ctx)
}
