package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"time"
)

// Top-level keys of the three agents in a configuration file.
const (
	SystemAgentKey = "overwatch_system_agent"
	LogAgentKey    = "overwatch_log_agent"
	WebAgentKey    = "overwatch_web_agent"
)

// Default sleep intervals per agent.
const (
	DefaultSystemSleep = 15 * time.Second
	DefaultLogSleep    = 10 * time.Second
	DefaultWebSleep    = 30 * time.Second

	// DefaultWebTimeout bounds the HTTP stage of a web target check.
	DefaultWebTimeout = 10 * time.Second
)

// Default outward IP echo endpoints.
const (
	DefaultIPv4URL = "https://ip4.messa.cz/"
	DefaultIPv6URL = "https://ip6.messa.cz/"
)

// SystemConfig configures the system agent.
type SystemConfig struct {
	Common    `yaml:",inline"`
	OutwardIP OutwardIPConfig `yaml:"outward_ip"`
}

// OutwardIPConfig holds the echo endpoints used to discover the public addresses.
// An empty URL disables that lookup.
type OutwardIPConfig struct {
	IPv4URL string `yaml:"ipv4_url"`
	IPv6URL string `yaml:"ipv6_url"`
}

// DefaultSystemConfig returns the default system agent configuration.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		Common: defaultCommon(DefaultSystemSleep),
		OutwardIP: OutwardIPConfig{
			IPv4URL: DefaultIPv4URL,
			IPv6URL: DefaultIPv6URL,
		},
	}
}

// LoadSystem reads the system agent configuration from path.
func LoadSystem(path string) (*SystemConfig, error) {
	cfg := DefaultSystemConfig()
	if err := load(path, SystemAgentKey, cfg, &cfg.Common); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *SystemConfig) Validate() error {
	return c.Common.validate()
}

// LogAgentConfig configures the log agent.
type LogAgentConfig struct {
	Common   `yaml:",inline"`
	LogFiles []LogFile `yaml:"log_files"`
}

// LogFile is one watched log file.
type LogFile struct {
	Path          string         `yaml:"path"`
	Name          string         `yaml:"name"`
	ErrorPatterns []ErrorPattern `yaml:"error_patterns"`
}

// ErrorPattern is a regular expression marking a log line as an error.
type ErrorPattern struct {
	Regex string `yaml:"regex"`

	compiled *regexp.Regexp
}

// NewErrorPattern compiles regex into a pattern.
func NewErrorPattern(regex string) (ErrorPattern, error) {
	p := ErrorPattern{Regex: regex}
	if regex == "" {
		return p, nil
	}
	re, err := regexp.Compile(regex)
	if err != nil {
		return p, err
	}
	p.compiled = re
	return p, nil
}

// Compiled returns the compiled expression, or nil when Regex is empty.
func (p ErrorPattern) Compiled() *regexp.Regexp {
	return p.compiled
}

// Matches reports whether line matches any of the patterns.
func (f LogFile) Matches(line string) bool {
	for _, p := range f.ErrorPatterns {
		if p.compiled != nil && p.compiled.MatchString(line) {
			return true
		}
	}
	return false
}

// DefaultLogAgentConfig returns the default log agent configuration.
func DefaultLogAgentConfig() *LogAgentConfig {
	return &LogAgentConfig{
		Common: defaultCommon(DefaultLogSleep),
	}
}

// LoadLogAgent reads the log agent configuration from path.
// Log file paths are resolved relative to the configuration directory and
// error patterns are compiled.
func LoadLogAgent(path string) (*LogAgentConfig, error) {
	cfg := DefaultLogAgentConfig()
	if err := load(path, LogAgentKey, cfg, &cfg.Common); err != nil {
		return nil, err
	}
	if err := cfg.prepare(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *LogAgentConfig) prepare() error {
	for i := range c.LogFiles {
		lf := &c.LogFiles[i]
		lf.Path = c.ResolvePath(lf.Path)
		for j := range lf.ErrorPatterns {
			ep, err := NewErrorPattern(lf.ErrorPatterns[j].Regex)
			if err != nil {
				return fmt.Errorf("log_files[%d].error_patterns[%d]: %w", i, j, err)
			}
			lf.ErrorPatterns[j] = ep
		}
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *LogAgentConfig) Validate() error {
	if err := c.Common.validate(); err != nil {
		return err
	}
	if c.LogFiles == nil {
		return fmt.Errorf("log_files is required and must be a list")
	}
	for i, lf := range c.LogFiles {
		if lf.Path == "" {
			return fmt.Errorf("log_files[%d].path is required", i)
		}
		if !filepath.IsAbs(lf.Path) {
			return fmt.Errorf("log_files[%d].path %q is not resolved", i, lf.Path)
		}
		for j, ep := range lf.ErrorPatterns {
			if ep.Regex != "" && ep.compiled == nil {
				return fmt.Errorf("log_files[%d].error_patterns[%d] is not compiled", i, j)
			}
		}
	}
	return nil
}

// WebAgentConfig configures the web agent.
type WebAgentConfig struct {
	Common    `yaml:",inline"`
	Watch     []Target `yaml:"watch"`
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
}

// Target is one watched URL.
type Target struct {
	Name             string `yaml:"name"`
	URL              string `yaml:"url"`
	ResponseContains string `yaml:"response_contains"`
}

// Label returns the target name, or its URL when unnamed.
func (t Target) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.URL
}

// DefaultWebAgentConfig returns the default web agent configuration.
func DefaultWebAgentConfig() *WebAgentConfig {
	return &WebAgentConfig{
		Common:  defaultCommon(DefaultWebSleep),
		Timeout: Duration{DefaultWebTimeout},
	}
}

// LoadWebAgent reads the web agent configuration from path.
func LoadWebAgent(path string) (*WebAgentConfig, error) {
	cfg := DefaultWebAgentConfig()
	if err := load(path, WebAgentKey, cfg, &cfg.Common); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *WebAgentConfig) Validate() error {
	if err := c.Common.validate(); err != nil {
		return err
	}
	if c.Watch == nil {
		return fmt.Errorf("watch is required and must be a list")
	}
	for i, t := range c.Watch {
		if t.URL == "" {
			return fmt.Errorf("watch[%d].url is required", i)
		}
		u, err := url.Parse(t.URL)
		if err != nil {
			return fmt.Errorf("watch[%d].url: %w", i, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("watch[%d].url must be an absolute http(s) URL (got: %s)", i, t.URL)
		}
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
