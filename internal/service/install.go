package service

import "errors"

// ErrUnsupported is returned by Install and Uninstall on platforms without a
// supported service manager.
var ErrUnsupported = errors.New("service installation is not supported on this platform")

// InstallConfig describes the service registered for one agent binary.
type InstallConfig struct {
	Name        string
	DisplayName string
	Description string
	// ExecPath is the absolute path of the agent binary.
	ExecPath string
	// Args are passed to the binary on start, typically the configuration path.
	Args []string
}
