// Package logging builds the zap logger shared by the agents.
// The console receives messages at the level selected by the -v count;
// the optional log file always receives everything down to debug.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsoleLevel maps the number of -v flags to the console log level.
func ConsoleLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.ErrorLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// New creates a logger writing human-readable output to stderr and, when
// file is not empty, structured JSON to that file.
func New(verbosity int, file string) (*zap.Logger, error) {
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.Lock(os.Stderr),
			ConsoleLevel(verbosity),
		),
	}

	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(f),
			zapcore.DebugLevel,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// RedactToken returns a fragment of a credential safe to log: the first and
// last three characters. Tokens too short to keep anything hidden are masked.
func RedactToken(token string) string {
	if len(token) < 8 {
		return "***"
	}
	return token[:3] + "..." + token[len(token)-3:]
}
