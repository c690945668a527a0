// Package app is the entry point shared by the agent binaries. It parses the
// command line, loads configuration, sets up logging and telemetry, and runs
// the agent in the foreground or as a Windows service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/agent"
	"github.com/Guliveer/overwatch-agents/internal/cli"
	"github.com/Guliveer/overwatch-agents/internal/config"
	"github.com/Guliveer/overwatch-agents/internal/logging"
	"github.com/Guliveer/overwatch-agents/internal/service"
	"github.com/Guliveer/overwatch-agents/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// Config is implemented by every agent configuration.
type Config interface {
	CommonConfig() *config.Common
	Validate() error
}

// Runner is an agent loop.
type Runner interface {
	Run(ctx context.Context) error
}

// Program describes one agent binary.
type Program struct {
	Name        string
	ServiceName string
	Version     string

	// Load reads the configuration file.
	Load func(path string) (Config, error)
	// New creates the agent for a validated configuration.
	New func(cfg Config, opts agent.Options) Runner

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// Install and Uninstall default to the service package.
	Install   func(service.InstallConfig) error
	Uninstall func(name string) error
}

func (p Program) uninstall(name string) error {
	if p.Uninstall != nil {
		return p.Uninstall(name)
	}
	return service.Uninstall(name)
}

// installService registers the running binary with configPath as its only argument.
func (p Program) installService(configPath string) int {
	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(p.Stderr, "Failed to resolve executable: %v\n", err)
		return 1
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		fmt.Fprintf(p.Stderr, "Failed to resolve config path: %v\n", err)
		return 1
	}
	install := p.Install
	if install == nil {
		install = service.Install
	}
	err = install(service.InstallConfig{
		Name:        p.ServiceName,
		DisplayName: p.ServiceName,
		Description: p.Name + " reports to the Overwatch hub",
		ExecPath:    exe,
		Args:        []string{abs},
	})
	if err != nil {
		fmt.Fprintf(p.Stderr, "Failed to install service: %v\n", err)
		return 1
	}
	fmt.Fprintf(p.Stdout, "Service %s installed\n", p.ServiceName)
	return 0
}

// Main runs p with args (without the program name) and returns the exit code.
func Main(p Program, args []string) int {
	if p.Stdout == nil {
		p.Stdout = os.Stdout
	}
	if p.Stderr == nil {
		p.Stderr = os.Stderr
	}

	opts, err := cli.Parse(p.Name, args, p.Stderr)
	if errors.Is(err, cli.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(p.Stderr, "%s: %v\n", p.Name, err)
		return 2
	}
	if opts.ShowVersion {
		fmt.Fprintf(p.Stdout, "%s %s\n", p.Name, p.Version)
		return 0
	}
	if opts.UninstallService {
		if err := p.uninstall(p.ServiceName); err != nil {
			fmt.Fprintf(p.Stderr, "Failed to uninstall service: %v\n", err)
			return 1
		}
		fmt.Fprintf(p.Stdout, "Service %s removed\n", p.ServiceName)
		return 0
	}

	cfg, err := p.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(p.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(p.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	common := cfg.CommonConfig()

	if opts.InstallService {
		return p.installService(common.FilePath)
	}

	logger, err := logging.New(opts.Verbosity, common.Log.File)
	if err != nil {
		fmt.Fprintf(p.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("Starting agent",
		zap.String("program", p.Name),
		zap.String("version", p.Version),
		zap.String("config", common.FilePath))
	logger.Debug("Report credentials",
		zap.String("report_url", common.ReportURL),
		zap.String("token", logging.RedactToken(common.ReportToken)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, telemetry.Config{
		ServiceName:    p.Name,
		ServiceVersion: p.Version,
		Exporter:       telemetry.Exporter(common.Telemetry.Exporter),
		Endpoint:       common.Telemetry.Endpoint,
		Insecure:       common.Telemetry.Insecure,
	})
	if err != nil {
		logger.Error("Failed to initialize telemetry", zap.Error(err))
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			logger.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	runner := p.New(cfg, agent.Options{
		Logger:    logger,
		Telemetry: tel,
		Client:    &http.Client{},
		Version:   p.Version,
	})

	if service.IsWindowsService() {
		logger.Info("Running as Windows service", zap.String("service", p.ServiceName))
	}
	err = service.Run(ctx, p.ServiceName, logger, runner.Run)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Agent failed", zap.Error(err))
		return 1
	}
	logger.Info("Agent stopped")
	return 0
}
