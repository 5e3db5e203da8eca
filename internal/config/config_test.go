package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/doclint/internal/diag"
	"github.com/mvp-joe/doclint/internal/rules"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .doclint/config.yml and .doclint/config.yaml, merging with defaults
// - Environment variables override config file values and defaults
// - NewFileLoader() requires its file to exist
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects each invalid field and reports all of them together
// - Registry()/Threshold()/EngineOptions() convert settings

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	configDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	path := filepath.Join(configDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Contains(t, cfg.Paths.Include, "**/*.js")
	assert.Contains(t, cfg.Paths.Include, "**/*.ts")
	assert.Contains(t, cfg.Paths.Ignore, "node_modules/**")
	assert.Equal(t, "warning", cfg.Lint.MinSeverity)
	assert.Equal(t, 0, cfg.Lint.Jobs)
	assert.Empty(t, cfg.Lint.Rules)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce())

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Paths, cfg.Paths)
	assert.Equal(t, defaults.Lint.MinSeverity, cfg.Lint.MinSeverity)
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Equal(t, defaults.Watch, cfg.Watch)
	assert.NotNil(t, cfg.Lint.Rules)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", `paths:
  include:
    - "src/**/*.js"
  ignore:
    - "src/vendor/**"
lint:
  min_severity: error
  jobs: 4
  rules:
    missing-this: "off"
    missing-param: error
output:
  format: json
  color: never
watch:
  debounce_ms: 50
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.js"}, cfg.Paths.Include)
	assert.Equal(t, []string{"src/vendor/**"}, cfg.Paths.Ignore)
	assert.Equal(t, "error", cfg.Lint.MinSeverity)
	assert.Equal(t, 4, cfg.Lint.Jobs)
	assert.Equal(t, map[string]string{"missing-this": "off", "missing-param": "error"}, cfg.Lint.Rules)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce())
}

func TestLoadConfig_LoadsFromConfigYamlAndMergesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "output:\n  format: json\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, Default().Paths.Include, cfg.Paths.Include)
	assert.Equal(t, "warning", cfg.Lint.MinSeverity)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "lint:\n  min_severity: info\n  jobs: 2\n")

	t.Setenv("DOCLINT_LINT_MIN_SEVERITY", "error")
	t.Setenv("DOCLINT_OUTPUT_FORMAT", "json")
	t.Setenv("DOCLINT_WATCH_DEBOUNCE_MS", "1000")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Lint.MinSeverity)
	assert.Equal(t, 2, cfg.Lint.Jobs)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, time.Second, cfg.Debounce())
}

func TestNewFileLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  color: always\n"), 0644))

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "always", cfg.Output.Color)

	_, err = NewFileLoader(filepath.Join(dir, "missing.yml")).Load()
	assert.Error(t, err)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, "config.yml", "lint:\n  jobs: [unclosed\n")
		_, err := NewLoader(dir).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, "config.yml", "output:\n  format: xml\n")
		_, err := NewLoader(dir).Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty include", func(c *Config) { c.Paths.Include = nil }, ErrEmptyInclude},
		{"bad pattern", func(c *Config) { c.Paths.Ignore = []string{"[unclosed"} }, ErrInvalidPattern},
		{"bad severity", func(c *Config) { c.Lint.MinSeverity = "fatal" }, ErrInvalidSeverity},
		{"negative jobs", func(c *Config) { c.Lint.Jobs = -1 }, ErrInvalidJobs},
		{"negative cache", func(c *Config) { c.Lint.CacheSize = -1 }, ErrInvalidCacheSize},
		{"unknown rule", func(c *Config) { c.Lint.Rules = map[string]string{"no-such-rule": "error"} }, ErrInvalidRules},
		{"bad rule level", func(c *Config) { c.Lint.Rules = map[string]string{rules.MissingThis: "loud"} }, ErrInvalidRules},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, ErrInvalidFormat},
		{"bad color", func(c *Config) { c.Output.Color = "sometimes" }, ErrInvalidColor},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, ErrInvalidDebounce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Lint.Jobs = -1
	cfg.Output.Format = "xml"
	cfg.Watch.DebounceMs = -1

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidJobs)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidDebounce)
	assert.Contains(t, err.Error(), "validation failed:")
}

func TestConfig_Conversions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Lint.MinSeverity = "error"
	cfg.Lint.Rules = map[string]string{rules.MissingThis: "off"}

	sev, err := cfg.Threshold()
	require.NoError(t, err)
	assert.Equal(t, diag.SevError, sev)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	_, ok := reg.Lookup(rules.MissingThis)
	assert.False(t, ok)

	opts, err := cfg.EngineOptions(nil)
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	cfg.Lint.Rules = map[string]string{"bogus": "error"}
	_, err = cfg.EngineOptions(nil)
	assert.ErrorIs(t, err, ErrInvalidRules)
}
