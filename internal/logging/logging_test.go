package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConsoleLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{0, zapcore.ErrorLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{5, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := ConsoleLevel(tt.verbosity); got != tt.want {
			t.Errorf("ConsoleLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestRedactToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"abcdefghijkl", "abc...jkl"},
		{"12345678", "123...678"},
		{"short", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		got := RedactToken(tt.token)
		if got != tt.want {
			t.Errorf("RedactToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
		if len(tt.token) > 0 && strings.Contains(got, tt.token) {
			t.Errorf("RedactToken(%q) leaks the full token", tt.token)
		}
	}
}

func TestNew_WritesDebugToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")

	logger, err := New(0, path)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("debug line", zap.String("k", "v"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "debug line") {
		t.Errorf("log file does not contain debug entry: %s", data)
	}
}

func TestNew_BadFile(t *testing.T) {
	if _, err := New(1, filepath.Join(t.TempDir(), "missing", "agent.log")); err == nil {
		t.Error("expected error for unwritable log file")
	}
}
