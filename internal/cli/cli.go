// Package cli parses the command line shared by the Overwatch agents:
//
//	overwatch-<kind>-agent [-v|--verbose ...] CONF_FILE
//	overwatch-<kind>-agent --install-service CONF_FILE
//	overwatch-<kind>-agent --uninstall-service
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// ErrHelp is returned when -h/--help was requested.
var ErrHelp = pflag.ErrHelp

// Options holds the parsed command line.
type Options struct {
	ConfigPath  string
	Verbosity   int
	ShowVersion bool

	InstallService   bool
	UninstallService bool
}

// Parse parses args (without the program name). Usage and errors are written to out.
func Parse(program string, args []string, out io.Writer) (Options, error) {
	var opts Options

	fs := pflag.NewFlagSet(program, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.CountVarP(&opts.Verbosity, "verbose", "v", "increase console log verbosity (-v info, -vv debug)")
	fs.BoolVar(&opts.ShowVersion, "version", false, "show version and exit")
	fs.BoolVar(&opts.InstallService, "install-service", false, "register the agent with the system service manager and start it")
	fs.BoolVar(&opts.UninstallService, "uninstall-service", false, "stop and remove the registered service")
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s [-v|--verbose ...] CONF_FILE\n", program)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.InstallService && opts.UninstallService {
		return opts, errors.New("--install-service and --uninstall-service are mutually exclusive")
	}
	if opts.ShowVersion || (opts.UninstallService && fs.NArg() == 0) {
		return opts, nil
	}
	switch fs.NArg() {
	case 1:
		opts.ConfigPath = fs.Arg(0)
	case 0:
		fs.Usage()
		return opts, errors.New("missing configuration file argument")
	default:
		fs.Usage()
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	return opts, nil
}
