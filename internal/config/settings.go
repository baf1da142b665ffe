package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aqatest/aqa/internal/errors"
	"github.com/aqatest/aqa/pkg/aqa"
	"github.com/aqatest/aqa/pkg/report"
)

// Environment variables read by the aqa command. The per-file variables
// shared with test processes are declared in package aqa.
const (
	EnvVerbose           = aqa.EnvVerbose
	EnvReporter          = aqa.EnvReporter
	EnvReporterOutputDir = aqa.EnvReporterOutputDir
	EnvConcurrency       = "AQA_CONCURRENCY"
	EnvTimeout           = "AQA_TIMEOUT"
	EnvMaxWorkers        = "AQA_MAX_WORKERS"
)

// Settings is the fully resolved configuration of one aqa invocation.
type Settings struct {
	Root        string
	Source      string
	Verbose     bool
	Concurrency bool
	Reporter    report.Reporter
	OutputDir   string
	Timeout     time.Duration
	MaxWorkers  int
	Runners     map[string][]string
}

// Resolve applies defaults to cfg and converts it to typed settings.
func Resolve(cfg *Config) (*Settings, error) {
	applyDefaults(cfg)

	reporter, err := report.ParseReporter(cfg.Reporter)
	if err != nil {
		return nil, errors.WrapKind(errors.KindConfig, err, "reporter")
	}
	timeout, err := parseTimeout(cfg.Timeout)
	if err != nil {
		return nil, errors.WrapKind(errors.KindConfig, err, "timeout")
	}
	if cfg.MaxWorkers < 0 {
		return nil, errors.Configf("maxWorkers: must not be negative, got %d", cfg.MaxWorkers)
	}
	for ext, cmd := range cfg.Runners {
		if !strings.HasPrefix(ext, ".") {
			return nil, errors.Configf("runners: extension %q must start with a dot", ext)
		}
		if len(cmd) == 0 || cmd[0] == "" {
			return nil, errors.Configf("runners: command for %q is empty", ext)
		}
	}

	return &Settings{
		Verbose:     cfg.Verbose,
		Concurrency: *cfg.Concurrency,
		Reporter:    reporter,
		OutputDir:   cfg.ReporterOptions.OutputDir,
		Timeout:     timeout,
		MaxWorkers:  cfg.MaxWorkers,
		Runners:     cfg.Runners,
	}, nil
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

// ApplyEnv overlays the AQA_* environment variables onto s.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvVerbose); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvVerbose, v, err)
		}
		s.Verbose = b
	}
	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvConcurrency, v, err)
		}
		s.Concurrency = b
	}
	if v, ok := lookup(EnvReporter); ok {
		r, err := report.ParseReporter(v)
		if err != nil {
			return envError(EnvReporter, v, err)
		}
		s.Reporter = r
	}
	if v, ok := lookup(EnvReporterOutputDir); ok && v != "" {
		s.OutputDir = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return envError(EnvTimeout, v, err)
		}
		s.Timeout = d
	}
	if v, ok := lookup(EnvMaxWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n < 0 {
			err = fmt.Errorf("must not be negative")
		}
		if err != nil {
			return envError(EnvMaxWorkers, v, err)
		}
		s.MaxWorkers = n
	}
	return nil
}

func envError(name, value string, cause error) error {
	return errors.WrapKind(errors.KindConfig, cause, fmt.Sprintf("invalid %s=%q", name, value))
}

// OutputPath returns the report directory as an absolute path.
func (s *Settings) OutputPath() string {
	if filepath.IsAbs(s.OutputDir) || s.Root == "" {
		return s.OutputDir
	}
	return filepath.Join(s.Root, s.OutputDir)
}

// Extensions returns the file extensions that have a runner, sorted.
func (s *Settings) Extensions() []string {
	exts := make([]string, 0, len(s.Runners))
	for ext := range s.Runners {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Runner returns the command for a test file and whether one is configured.
func (s *Settings) Runner(file string) ([]string, bool) {
	cmd, ok := s.Runners[filepath.Ext(file)]
	return cmd, ok
}
