// Package config handles agent configuration loading from YAML files and environment variables.
// Each agent reads its own top-level key from a shared file format; the common
// settings live in Common, embedded in every agent-specific configuration.
// Configuration precedence: environment variables > config file > defaults.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultReportTimeout bounds a single report POST.
	DefaultReportTimeout = 10 * time.Second

	// WatchdogMargin is added to the sleep interval when no watchdog interval is configured.
	WatchdogMargin = 30 * time.Second
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from plain numbers of seconds (15, 2.5) and from strings like "15s" or "1m".
type Duration struct {
	time.Duration
}

// Seconds returns a Duration of n seconds.
func Seconds(n float64) Duration {
	return Duration{time.Duration(n * float64(time.Second))}
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: unsupported duration format", value.Line)
	}
	if value.Tag == "!!null" {
		d.Duration = 0
		return nil
	}
	if secs, err := strconv.ParseFloat(value.Value, 64); err == nil {
		if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return fmt.Errorf("line %d: invalid duration %q", value.Line, value.Value)
		}
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, value.Value, err)
	}
	if parsed < 0 {
		return fmt.Errorf("line %d: negative duration %q", value.Line, value.Value)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Common holds the settings shared by every agent.
type Common struct {
	ReportURL        string          `yaml:"report_url"`
	ReportToken      string          `yaml:"report_token"`
	ReportTimeout    Duration        `yaml:"report_timeout"`
	SleepInterval    Duration        `yaml:"sleep_interval"`
	WatchdogInterval Duration        `yaml:"watchdog_interval"`
	Log              LogConfig       `yaml:"log"`
	Telemetry        TelemetryConfig `yaml:"telemetry"`

	// FilePath is the absolute path of the loaded configuration file.
	FilePath string `yaml:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	File string `yaml:"file"`
}

// TelemetryConfig selects the OpenTelemetry exporter for the agent's own metrics.
type TelemetryConfig struct {
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Watchdog returns the configured watchdog interval, or the sleep interval
// plus WatchdogMargin when unset.
func (c *Common) Watchdog() time.Duration {
	if c.WatchdogInterval.Duration > 0 {
		return c.WatchdogInterval.Duration
	}
	return c.SleepInterval.Duration + WatchdogMargin
}

// BaseDir returns the directory relative paths in the configuration are resolved against.
func (c *Common) BaseDir() string {
	if c.FilePath == "" {
		return "."
	}
	return filepath.Dir(c.FilePath)
}

// ResolvePath makes p absolute relative to the configuration directory.
func (c *Common) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	joined := filepath.Join(c.BaseDir(), p)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}

// CommonConfig returns the shared settings of any agent configuration.
func (c *Common) CommonConfig() *Common { return c }

func defaultCommon(sleep time.Duration) Common {
	return Common{
		ReportTimeout: Duration{DefaultReportTimeout},
		SleepInterval: Duration{sleep},
	}
}

// validate checks the shared settings.
func (c *Common) validate() error {
	if c.ReportURL == "" {
		return fmt.Errorf("report_url is required")
	}
	if !strings.HasPrefix(c.ReportURL, "http://") && !strings.HasPrefix(c.ReportURL, "https://") {
		return fmt.Errorf("report_url must be an http(s) URL (got: %s)", c.ReportURL)
	}
	if c.ReportToken == "" {
		return fmt.Errorf("report_token is required")
	}
	if c.SleepInterval.Duration <= 0 {
		return fmt.Errorf("sleep_interval must be positive")
	}
	switch c.Telemetry.Exporter {
	case "", "none", "stdout", "otlp_http", "otlp_grpc":
	default:
		return fmt.Errorf("telemetry.exporter %q is not supported", c.Telemetry.Exporter)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have the highest precedence.
func (c *Common) applyEnvOverrides() {
	if url := os.Getenv("OVERWATCH_REPORT_URL"); url != "" {
		c.ReportURL = url
	}
	if token := os.Getenv("OVERWATCH_REPORT_TOKEN"); token != "" {
		c.ReportToken = token
	}
}

// load reads the file at path and decodes the section under topLevelKey into dst.
// dst must already hold the agent defaults.
func load(path, topLevelKey string, dst interface{}, common *Common) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	return loadBytes(data, path, topLevelKey, dst, common)
}

func loadBytes(data []byte, path, topLevelKey string, dst interface{}, common *Common) error {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	section, ok := doc[topLevelKey]
	if !ok {
		return fmt.Errorf("config file %s: missing top-level key %s", path, topLevelKey)
	}
	if err := section.Decode(dst); err != nil {
		return fmt.Errorf("config file %s: %s: %w", path, topLevelKey, err)
	}

	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		common.FilePath = abs
	}
	common.Log.File = common.ResolvePath(common.Log.File)
	common.applyEnvOverrides()
	return nil
}
