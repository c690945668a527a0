//go:build linux

package service

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func stubSystemctl(t *testing.T, fail string) *[][]string {
	t.Helper()
	var calls [][]string
	origDir, origCtl := unitDir, systemctl
	unitDir = t.TempDir()
	systemctl = func(args ...string) error {
		calls = append(calls, args)
		if len(args) > 0 && args[0] == fail {
			return errors.New("exit status 1")
		}
		return nil
	}
	t.Cleanup(func() { unitDir, systemctl = origDir, origCtl })
	return &calls
}

func TestRenderUnit(t *testing.T) {
	unit := renderUnit(InstallConfig{
		Name:        "OverwatchSystemAgent",
		DisplayName: "Overwatch System Agent",
		ExecPath:    "/usr/local/bin/overwatch-system-agent",
		Args:        []string{"/etc/overwatch/my agent.yaml"},
	})
	for _, want := range []string{
		"Description=Overwatch System Agent\n",
		`ExecStart=/usr/local/bin/overwatch-system-agent "/etc/overwatch/my agent.yaml"` + "\n",
		"SyslogIdentifier=overwatchsystemagent\n",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit missing %q:\n%s", want, unit)
		}
	}
}

func TestInstallUninstall(t *testing.T) {
	calls := stubSystemctl(t, "")
	cfg := InstallConfig{Name: "OverwatchTest", ExecPath: "/bin/agent", Args: []string{"/etc/agent.yaml"}}

	if err := Install(cfg); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	path := filepath.Join(unitDir, "overwatchtest.service")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("unit file not written: %v", err)
	}
	want := [][]string{{"daemon-reload"}, {"enable", "overwatchtest.service"}, {"start", "overwatchtest.service"}}
	if !reflect.DeepEqual(*calls, want) {
		t.Errorf("systemctl calls = %v, want %v", *calls, want)
	}

	if err := Uninstall("OverwatchTest"); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("unit file should be removed, stat err = %v", err)
	}
}

func TestInstall_SystemctlFailure(t *testing.T) {
	stubSystemctl(t, "enable")
	err := Install(InstallConfig{Name: "OverwatchTest", ExecPath: "/bin/agent"})
	if err == nil || !strings.Contains(err.Error(), "systemctl enable") {
		t.Errorf("Install() error = %v, want systemctl enable failure", err)
	}
}
