//go:build !windows

package service

import (
	"context"

	"go.uber.org/zap"
)

// IsWindowsService always returns false on non-Windows platforms.
func IsWindowsService() bool {
	return false
}

// runService is never reached on non-Windows platforms; the agent runs in the
// foreground under systemd, launchd or a terminal.
func runService(_ string, _ *zap.Logger, fn RunFunc) error {
	return fn(context.Background())
}
