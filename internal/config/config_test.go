package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqatest/aqa/internal/errors"
	"github.com/aqatest/aqa/pkg/report"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "aqa.yaml", `
verbose: true
concurrency: false
reporter: junit
reporterOptions:
  outputDir: reports
timeout: 30s
maxWorkers: 3
runners:
  .py: [python3, -u]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	require.NotNil(t, cfg.Concurrency)
	assert.False(t, *cfg.Concurrency)
	assert.Equal(t, "junit", cfg.Reporter)
	assert.Equal(t, "reports", cfg.ReporterOptions.OutputDir)
	assert.Equal(t, "30s", cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.Equal(t, []string{"python3", "-u"}, cfg.Runners[".py"])
}

func TestLoad_PackageJSONSection(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "package.json", `{
		"name": "demo",
		"scripts": {"test": "aqa"},
		"aqa": {"verbose": true, "reporter": "tap"}
	}`)

	cfg, warnings, err := LoadWithWarnings(path)
	require.NoError(t, err)
	assert.Empty(t, warnings, "keys outside the aqa section are not checked")
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "tap", cfg.Reporter)
}

func TestLoad_EmptyYAML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "aqa.yaml", "# nothing configured\n")

	cfg, warnings, err := LoadWithWarnings(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"malformed yaml", "aqa.yaml", "verbose: [true\n"},
		{"schema violation", "aqa.yaml", "reporter: xunit\n"},
		{"wrong type", "aqa.yml", "maxWorkers: many\n"},
		{"malformed json", "package.json", `{"aqa": `},
		{"json schema violation", "package.json", `{"aqa": {"timeout": 5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, 2, errors.GetExitCode(err), "config errors exit with 2")
		})
	}
}

func TestLoadWithWarnings_UnknownFields(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "aqa.yaml", `
verbose: true
colour: always
reporterOptions:
  outputDir: out
  pretty: true
`)

	_, warnings, err := LoadWithWarnings(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`unknown field "colour" at root level (ignored)`,
		`unknown field "pretty" in reporterOptions (ignored)`,
	}, warnings)
}

func TestLoadWithWarnings_SchemaFieldIgnored(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "aqa.yaml", "$schema: ./aqa.schema.json\n")

	_, warnings, err := LoadWithWarnings(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestFindManifest(t *testing.T) {
	t.Parallel()

	t.Run("yaml wins over package.json", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"aqa": {}}`)
		want := writeFile(t, dir, "aqa.yaml", "verbose: true\n")
		got, err := FindManifest(dir)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("package.json without section", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "demo"}`)
		got, err := FindManifest(dir)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("nothing", func(t *testing.T) {
		t.Parallel()
		got, err := FindManifest(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLoadWithEnv_Defaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, warnings, err := LoadWithEnv(dir, noEnv)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, dir, s.Root)
	assert.Empty(t, s.Source)
	assert.False(t, s.Verbose)
	assert.True(t, s.Concurrency)
	assert.Equal(t, report.ReporterNone, s.Reporter)
	assert.Equal(t, "test-results", s.OutputDir)
	assert.Equal(t, filepath.Join(dir, "test-results"), s.OutputPath())
	assert.Equal(t, 2*time.Minute, s.Timeout)
	assert.Zero(t, s.MaxWorkers)
	assert.Equal(t, []string{".cjs", ".go", ".js", ".mjs", ".sh"}, s.Extensions())
}

func TestLoadWithEnv_Precedence(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "aqa.yaml", `
verbose: true
reporter: tap
timeout: 10s
runners:
  .js: [bun]
`)

	s, _, err := LoadWithEnv(dir, envMap(map[string]string{
		EnvVerbose:           "false",
		EnvConcurrency:       "0",
		EnvReporter:          "junit",
		EnvReporterOutputDir: "/tmp/reports",
		EnvTimeout:           "1m",
		EnvMaxWorkers:        "2",
	}))
	require.NoError(t, err)
	assert.False(t, s.Verbose)
	assert.False(t, s.Concurrency)
	assert.Equal(t, report.ReporterJUnit, s.Reporter)
	assert.Equal(t, "/tmp/reports", s.OutputPath())
	assert.Equal(t, time.Minute, s.Timeout)
	assert.Equal(t, 2, s.MaxWorkers)

	cmd, ok := s.Runner("math.test.js")
	assert.True(t, ok)
	assert.Equal(t, []string{"bun"}, cmd)
	cmd, ok = s.Runner("math.test.go")
	assert.True(t, ok)
	assert.Equal(t, []string{"go", "run"}, cmd)
	_, ok = s.Runner("math.test.rb")
	assert.False(t, ok)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		EnvVerbose:     "loud",
		EnvConcurrency: "maybe",
		EnvReporter:    "xunit",
		EnvTimeout:     "-1s",
		EnvMaxWorkers:  "-3",
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s, err := Resolve(&Config{})
			require.NoError(t, err)
			err = s.ApplyEnv(envMap(map[string]string{name: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
			assert.Equal(t, 2, errors.GetExitCode(err))
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"reporter", Config{Reporter: "html"}},
		{"timeout", Config{Timeout: "soon"}},
		{"zero timeout", Config{Timeout: "0s"}},
		{"workers", Config{MaxWorkers: -1}},
		{"runner extension", Config{Runners: map[string][]string{"py": {"python3"}}}},
		{"runner command", Config{Runners: map[string][]string{".py": {}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := tt.cfg
			_, err := Resolve(&cfg)
			require.Error(t, err)
		})
	}
}
