package config

import (
	"maps"
	"time"

	"github.com/aqatest/aqa/pkg/report"
)

// Default configuration values.
const (
	DefaultConcurrency = true
	DefaultTimeout     = 2 * time.Minute
	DefaultOutputDir   = report.DefaultOutputDir
)

// DefaultRunners maps test file extensions to the command that executes them.
// The test file path is appended as the last argument.
var DefaultRunners = map[string][]string{
	".go":  {"go", "run"},
	".js":  {"node"},
	".mjs": {"node"},
	".cjs": {"node"},
	".sh":  {"sh"},
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Concurrency == nil {
		v := DefaultConcurrency
		cfg.Concurrency = &v
	}
	if cfg.ReporterOptions == nil {
		cfg.ReporterOptions = &ReporterOptions{}
	}
	if cfg.ReporterOptions.OutputDir == "" {
		cfg.ReporterOptions.OutputDir = DefaultOutputDir
	}
	if cfg.Timeout == "" {
		cfg.Timeout = DefaultTimeout.String()
	}

	runners := maps.Clone(DefaultRunners)
	maps.Copy(runners, cfg.Runners)
	cfg.Runners = runners
}
