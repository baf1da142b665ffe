// Package config loads aqa settings from the project manifest, the
// environment and command-line flags.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aqatest/aqa/internal/errors"
	"github.com/aqatest/aqa/internal/project"
	"github.com/aqatest/aqa/internal/schema"
)

// PackageSection is the package.json key holding aqa configuration.
const PackageSection = "aqa"

// Config mirrors the manifest as written by the user.
type Config struct {
	Schema          string              `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	Verbose         bool                `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	Concurrency     *bool               `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Reporter        string              `json:"reporter,omitempty" yaml:"reporter,omitempty"`
	ReporterOptions *ReporterOptions    `json:"reporterOptions,omitempty" yaml:"reporterOptions,omitempty"`
	Timeout         string              `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxWorkers      int                 `json:"maxWorkers,omitempty" yaml:"maxWorkers,omitempty"`
	Runners         map[string][]string `json:"runners,omitempty" yaml:"runners,omitempty"`
}

// ReporterOptions configures report file output.
type ReporterOptions struct {
	OutputDir string `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
}

// FindManifest returns the manifest path under root, or "" when the project
// has no aqa configuration. aqa.yaml wins over the package.json section.
func FindManifest(root string) (string, error) {
	for _, name := range []string{project.ConfigFileName, project.AltConfigFileName} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	path := filepath.Join(root, project.PackageFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.FileError(path, "failed to read package manifest", err)
	}
	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", errors.WrapKind(errors.KindConfig, err, "failed to parse "+path)
	}
	if _, ok := pkg[PackageSection]; ok {
		return path, nil
	}
	return "", nil
}

// Load reads and parses a manifest. A package.json manifest contributes only
// its "aqa" section.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithWarnings(path)
	return cfg, err
}

// LoadWithWarnings reads a manifest, validates it against the embedded
// schema and returns warnings for keys aqa does not know.
func LoadWithWarnings(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.FileError(path, "failed to read config file", err)
	}

	if filepath.Base(path) == project.PackageFileName {
		return parseJSON(path, data)
	}
	return parseYAML(path, data)
}

func parseJSON(path string, data []byte) (*Config, []string, error) {
	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, nil, configError(path, "failed to parse config file", err)
	}
	section, ok := pkg[PackageSection]
	if !ok {
		return &Config{}, nil, nil
	}

	var raw any
	if err := json.Unmarshal(section, &raw); err != nil {
		return nil, nil, configError(path, "failed to parse config file", err)
	}
	if err := schema.ValidateValue(raw); err != nil {
		return nil, nil, configError(path, "invalid configuration", err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(section))
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, configError(path, "failed to parse config file", err)
	}
	return &cfg, detectUnknownFields(raw), nil
}

func parseYAML(path string, data []byte) (*Config, []string, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, configError(path, "failed to parse config file", err)
	}
	if raw == nil {
		// Empty manifest.
		return &Config{}, nil, nil
	}

	// The schema validator works on JSON values, so round-trip through JSON.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, configError(path, "configuration keys must be strings", err)
	}
	if err := schema.ValidateConfig(asJSON); err != nil {
		return nil, nil, configError(path, "invalid configuration", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, configError(path, "failed to parse config file", err)
	}
	return &cfg, detectUnknownFields(raw), nil
}

func configError(path, message string, cause error) error {
	return &errors.AqaError{
		Kind:    errors.KindConfig,
		File:    path,
		Message: message,
		Cause:   cause,
	}
}

// LoadAndValidate finds the manifest under root, loads it, applies defaults
// and the environment overlay, and returns the resolved settings together
// with any warnings. A project without a manifest resolves to defaults.
func LoadAndValidate(root string) (*Settings, []string, error) {
	return LoadWithEnv(root, os.LookupEnv)
}

// LoadWithEnv is LoadAndValidate with an explicit environment lookup.
func LoadWithEnv(root string, lookup func(string) (string, bool)) (*Settings, []string, error) {
	path, err := FindManifest(root)
	if err != nil {
		return nil, nil, err
	}

	cfg := &Config{}
	var warnings []string
	if path != "" {
		cfg, warnings, err = LoadWithWarnings(path)
		if err != nil {
			return nil, warnings, err
		}
	}

	settings, err := Resolve(cfg)
	if err != nil {
		return nil, warnings, wrapSource(path, err)
	}
	settings.Root = root
	settings.Source = path

	if err := settings.ApplyEnv(lookup); err != nil {
		return nil, warnings, err
	}
	return settings, warnings, nil
}

func wrapSource(path string, err error) error {
	if path == "" {
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}
