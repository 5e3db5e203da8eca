// Package config loads doclint configuration: built-in defaults, then
// .doclint/config.yml, then DOCLINT_* environment variables.
package config

import (
	"time"
)

// Config represents the complete doclint configuration.
// It can be loaded from .doclint/config.yml with environment variable overrides.
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Lint   LintConfig   `yaml:"lint" mapstructure:"lint"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// PathsConfig defines which files to lint and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// LintConfig controls the checks.
type LintConfig struct {
	MinSeverity string            `yaml:"min_severity" mapstructure:"min_severity"` // exit-code threshold
	Jobs        int               `yaml:"jobs" mapstructure:"jobs"`                 // 0 = GOMAXPROCS
	CacheSize   int               `yaml:"cache_size" mapstructure:"cache_size"`     // memoized file results, 0 disables
	Rules       map[string]string `yaml:"rules" mapstructure:"rules"`               // rule id -> off|info|warning|error
}

// OutputConfig controls how diagnostics are printed.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
	Color  string `yaml:"color" mapstructure:"color"`   // "auto", "always" or "never"
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.js",
				"**/*.mjs",
				"**/*.cjs",
				"**/*.jsx",
				"**/*.ts",
				"**/*.tsx",
			},
			Ignore: []string{
				"node_modules/**",
				".git/**",
				"dist/**",
				"build/**",
				"vendor/**",
				"**/*.min.js",
				"**/*.d.ts",
			},
		},
		Lint: LintConfig{
			MinSeverity: "warning",
			Jobs:        0,
			CacheSize:   4096,
			Rules:       map[string]string{},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Watch: WatchConfig{
			DebounceMs: 300,
		},
	}
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
