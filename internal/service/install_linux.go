//go:build linux

package service

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// unitDir is where systemd unit files are written.
var unitDir = "/etc/systemd/system"

// systemctl runs one systemctl command.
var systemctl = func(args ...string) error {
	return exec.Command("systemctl", args...).Run()
}

const unitTemplate = `[Unit]
Description={description}
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart={exec}
Restart=always
RestartSec=10
StandardOutput=journal
StandardError=journal
SyslogIdentifier={name}
NoNewPrivileges=true
PrivateTmp=true

[Install]
WantedBy=multi-user.target
`

func unitName(name string) string {
	return strings.ToLower(name) + ".service"
}

// renderUnit builds the systemd unit for cfg.
func renderUnit(cfg InstallConfig) string {
	words := make([]string, 0, len(cfg.Args)+1)
	for _, w := range append([]string{cfg.ExecPath}, cfg.Args...) {
		if strings.ContainsAny(w, " \t\"'\\") {
			w = strconv.Quote(w)
		}
		words = append(words, w)
	}
	desc := cfg.Description
	if desc == "" {
		desc = cfg.DisplayName
	}
	return strings.NewReplacer(
		"{description}", desc,
		"{exec}", strings.Join(words, " "),
		"{name}", strings.ToLower(cfg.Name),
	).Replace(unitTemplate)
}

// Install writes the systemd unit, reloads the daemon, enables and starts the service.
func Install(cfg InstallConfig) error {
	path := filepath.Join(unitDir, unitName(cfg.Name))
	if err := os.WriteFile(path, []byte(renderUnit(cfg)), 0o644); err != nil {
		return fmt.Errorf("writing unit file: %w", err)
	}
	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", unitName(cfg.Name)},
		{"start", unitName(cfg.Name)},
	} {
		if err := systemctl(args...); err != nil {
			return fmt.Errorf("running systemctl %s: %w", strings.Join(args, " "), err)
		}
	}
	return nil
}

// Uninstall stops, disables and removes the systemd service.
func Uninstall(name string) error {
	// The service may already be inactive.
	_ = systemctl("stop", unitName(name))
	_ = systemctl("disable", unitName(name))

	path := filepath.Join(unitDir, unitName(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing unit file: %w", err)
	}
	_ = systemctl("daemon-reload")
	return nil
}
