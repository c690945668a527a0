//go:build !linux && !windows

package service

// Install is not supported on this platform.
func Install(InstallConfig) error { return ErrUnsupported }

// Uninstall is not supported on this platform.
func Uninstall(string) error { return ErrUnsupported }
