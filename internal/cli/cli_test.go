package cli

import (
	"errors"
	"io"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPath  string
		wantLevel int
		wantErr   bool
	}{
		{"plain", []string{"conf.yaml"}, "conf.yaml", 0, false},
		{"one v", []string{"-v", "conf.yaml"}, "conf.yaml", 1, false},
		{"stacked", []string{"-vv", "conf.yaml"}, "conf.yaml", 2, false},
		{"long", []string{"--verbose", "--verbose", "--verbose", "conf.yaml"}, "conf.yaml", 3, false},
		{"flag after path", []string{"conf.yaml", "-v"}, "conf.yaml", 1, false},
		{"missing path", []string{"-v"}, "", 1, true},
		{"two paths", []string{"a.yaml", "b.yaml"}, "", 0, true},
		{"unknown flag", []string{"--config", "a.yaml"}, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Parse("overwatch-test-agent", tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if opts.ConfigPath != tt.wantPath {
				t.Errorf("ConfigPath = %q, want %q", opts.ConfigPath, tt.wantPath)
			}
			if opts.Verbosity != tt.wantLevel {
				t.Errorf("Verbosity = %d, want %d", opts.Verbosity, tt.wantLevel)
			}
		})
	}
}

func TestParse_Help(t *testing.T) {
	_, err := Parse("overwatch-test-agent", []string{"--help"}, io.Discard)
	if !errors.Is(err, ErrHelp) {
		t.Errorf("err = %v, want ErrHelp", err)
	}
}

func TestParse_Version(t *testing.T) {
	opts, err := Parse("overwatch-test-agent", []string{"--version"}, io.Discard)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !opts.ShowVersion {
		t.Error("ShowVersion should be set")
	}
}

func TestParse_Service(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		wantInstall   bool
		wantUninstall bool
		wantErr       bool
	}{
		{"install", []string{"--install-service", "conf.yaml"}, true, false, false},
		{"install needs path", []string{"--install-service"}, false, false, true},
		{"uninstall", []string{"--uninstall-service"}, false, true, false},
		{"both", []string{"--install-service", "--uninstall-service", "conf.yaml"}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Parse("overwatch-test-agent", tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if opts.InstallService != tt.wantInstall || opts.UninstallService != tt.wantUninstall {
				t.Errorf("install = %v, uninstall = %v", opts.InstallService, opts.UninstallService)
			}
		})
	}
}
