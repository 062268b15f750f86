// Package config handles application configuration and setup
package config

import (
	"os"

	"github.com/retroenv/nandrandomizer/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger for the given options. Debug logging takes
// priority over quiet mode. If the dump is written to the console the log
// goes to stderr.
func CreateLogger(opts options.Program) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case opts.Debug:
		cfg.Level = log.DebugLevel
	case opts.Quiet:
		cfg.Level = log.ErrorLevel
	}
	if consoleOutput(opts) {
		cfg.Output = os.Stderr
	}
	return log.NewWithConfig(cfg)
}

// consoleOutput returns whether the processed dump is written to stdout.
func consoleOutput(opts options.Program) bool {
	return opts.Output == "" && opts.Batch == "" && !opts.Info
}
