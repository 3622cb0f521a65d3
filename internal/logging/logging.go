// Package logging builds the application's zap loggers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugLogPath is the fixed path of the --debug log, relative to the working
// directory so it is easy to find.
const DebugLogPath = "coursetable-debug.log"

// Mode selects the logger flavour.
type Mode int

const (
	// Quiet discards everything. Used by one-shot commands and the TUI.
	Quiet Mode = iota
	// Console writes human-readable lines to stderr. Used by serve and watch.
	Console
	// Debug writes JSON at debug level to DebugLogPath.
	Debug
)

// Options configures New.
type Options struct {
	Mode  Mode
	Level string // "debug", "info", ...; empty means info (debug in Debug mode)
	Path  string // output file for Debug mode; empty means DebugLogPath
}

// New builds a logger for the given options.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config

	switch opts.Mode {
	case Quiet:
		return zap.NewNop(), nil
	case Console:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case Debug:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		path := opts.Path
		if path == "" {
			path = DebugLogPath
		}
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	default:
		return nil, fmt.Errorf("unknown log mode %d", opts.Mode)
	}

	if opts.Level != "" {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Sync flushes the logger, ignoring the errors stderr and stdout return on
// some platforms.
func Sync(l *zap.Logger) {
	if l != nil {
		_ = l.Sync()
	}
}
