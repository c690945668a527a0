package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overwatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSystem_Defaults(t *testing.T) {
	path := writeConfig(t, `
overwatch_system_agent:
  report_url: "https://hub.example.com/report"
  report_token: "secret_token"
`)
	cfg, err := LoadSystem(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.SleepInterval.Duration != 15*time.Second {
		t.Errorf("SleepInterval = %v, want 15s default", cfg.SleepInterval.Duration)
	}
	if cfg.ReportTimeout.Duration != 10*time.Second {
		t.Errorf("ReportTimeout = %v, want 10s default", cfg.ReportTimeout.Duration)
	}
	if got := cfg.Watchdog(); got != 45*time.Second {
		t.Errorf("Watchdog = %v, want sleep+30s", got)
	}
	if cfg.OutwardIP.IPv4URL != DefaultIPv4URL || cfg.OutwardIP.IPv6URL != DefaultIPv6URL {
		t.Errorf("OutwardIP = %+v, want defaults", cfg.OutwardIP)
	}
	if !filepath.IsAbs(cfg.FilePath) {
		t.Errorf("FilePath = %q, want absolute", cfg.FilePath)
	}
}

func TestLoadSystem_Intervals(t *testing.T) {
	path := writeConfig(t, `
overwatch_system_agent:
  report_url: "https://hub.example.com/report"
  report_token: "secret_token"
  sleep_interval: 2.5
  watchdog_interval: "2m"
  report_timeout: 3
`)
	cfg, err := LoadSystem(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SleepInterval.Duration != 2500*time.Millisecond {
		t.Errorf("SleepInterval = %v, want 2.5s", cfg.SleepInterval.Duration)
	}
	if cfg.Watchdog() != 2*time.Minute {
		t.Errorf("Watchdog = %v, want 2m", cfg.Watchdog())
	}
	if cfg.ReportTimeout.Duration != 3*time.Second {
		t.Errorf("ReportTimeout = %v, want 3s", cfg.ReportTimeout.Duration)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
overwatch_web_agent:
  report_url: "https://file.example.com/report"
  report_token: "file_token"
  watch: []
`)
	t.Setenv("OVERWATCH_REPORT_URL", "https://env.example.com/report")

	cfg, err := LoadWebAgent(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReportURL != "https://env.example.com/report" {
		t.Errorf("ReportURL = %q, want env override", cfg.ReportURL)
	}
	if cfg.ReportToken != "file_token" {
		t.Errorf("ReportToken = %q, want file value", cfg.ReportToken)
	}
}

func TestLoad_MissingTopLevelKey(t *testing.T) {
	path := writeConfig(t, `
overwatch_web_agent:
  report_url: "https://hub.example.com/report"
`)
	_, err := LoadSystem(path)
	if err == nil || !strings.Contains(err.Error(), SystemAgentKey) {
		t.Fatalf("err = %v, want missing %s", err, SystemAgentKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := LoadSystem(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no url", "overwatch_system_agent:\n  report_token: t\n", "report_url"},
		{"no token", "overwatch_system_agent:\n  report_url: https://h/r\n", "report_token"},
		{"bad scheme", "overwatch_system_agent:\n  report_url: ftp://h/r\n  report_token: t\n", "http(s)"},
		{"bad exporter", "overwatch_system_agent:\n  report_url: https://h/r\n  report_token: t\n  telemetry:\n    exporter: kafka\n", "telemetry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadSystem(writeConfig(t, tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestLoadLogAgent_ResolvesPathsAndPatterns(t *testing.T) {
	path := writeConfig(t, `
overwatch_log_agent:
  report_url: "https://hub.example.com/report"
  report_token: "secret_token"
  log:
    file: agent.log
  log_files:
    - path: logs/app.log
      name: app
      error_patterns:
        - regex: 'ERROR'
        - regex: 'panic:'
`)
	cfg, err := LoadLogAgent(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	dir := filepath.Dir(cfg.FilePath)
	if cfg.Log.File != filepath.Join(dir, "agent.log") {
		t.Errorf("Log.File = %q, want resolved next to config", cfg.Log.File)
	}
	if len(cfg.LogFiles) != 1 {
		t.Fatalf("LogFiles = %d, want 1", len(cfg.LogFiles))
	}
	lf := cfg.LogFiles[0]
	if lf.Path != filepath.Join(dir, "logs", "app.log") {
		t.Errorf("Path = %q", lf.Path)
	}
	if cfg.SleepInterval.Duration != 10*time.Second {
		t.Errorf("SleepInterval = %v, want 10s default", cfg.SleepInterval.Duration)
	}
	if !lf.Matches("2024 ERROR boom") || !lf.Matches("panic: nil map") {
		t.Error("expected pattern match")
	}
	if lf.Matches("all good") {
		t.Error("unexpected pattern match")
	}
}

func TestLoadLogAgent_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not a list", "overwatch_log_agent:\n  report_url: https://h/r\n  report_token: t\n  log_files:\n    path: x\n"},
		{"bad regex", "overwatch_log_agent:\n  report_url: https://h/r\n  report_token: t\n  log_files:\n    - path: x\n      error_patterns:\n        - regex: '('\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadLogAgent(writeConfig(t, tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLogAgentValidate_MissingList(t *testing.T) {
	cfg, err := LoadLogAgent(writeConfig(t, "overwatch_log_agent:\n  report_url: https://h/r\n  report_token: t\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "log_files") {
		t.Errorf("Validate() = %v, want log_files error", err)
	}
}

func TestLoadWebAgent(t *testing.T) {
	path := writeConfig(t, `
overwatch_web_agent:
  report_url: "https://hub.example.com/report"
  report_token: "secret_token"
  timeout: 5
  watch:
    - name: home
      url: https://example.com/
      response_contains: Example
    - url: http://example.org/health
`)
	cfg, err := LoadWebAgent(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.SleepInterval.Duration != 30*time.Second {
		t.Errorf("SleepInterval = %v, want 30s default", cfg.SleepInterval.Duration)
	}
	if cfg.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout.Duration)
	}
	if got := cfg.Watch[0].Label(); got != "home" {
		t.Errorf("Label = %q, want home", got)
	}
	if got := cfg.Watch[1].Label(); got != "http://example.org/health" {
		t.Errorf("Label = %q, want URL", got)
	}
}

func TestWebAgentValidate_BadURL(t *testing.T) {
	cfg, err := LoadWebAgent(writeConfig(t, "overwatch_web_agent:\n  report_url: https://h/r\n  report_token: t\n  watch:\n    - url: example.com\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for relative target URL")
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	_, err := LoadSystem(writeConfig(t, "overwatch_system_agent:\n  sleep_interval: soon\n"))
	if err == nil {
		t.Error("expected error for invalid duration")
	}
}
