package config

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/doclint/internal/diag"
	"github.com/mvp-joe/doclint/internal/engine"
	"github.com/mvp-joe/doclint/internal/rules"
)

// Registry returns the default rules with the configured overrides applied.
func (c *Config) Registry() (*rules.Registry, error) {
	reg, err := rules.Default().Configure(c.Lint.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	return reg, nil
}

// Threshold returns the parsed minimum severity.
func (c *Config) Threshold() (diag.Severity, error) {
	sev, err := diag.ParseSeverity(c.Lint.MinSeverity)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSeverity, err)
	}
	return sev, nil
}

// EngineOptions converts the lint settings to engine options.
func (c *Config) EngineOptions(log logrus.FieldLogger) ([]engine.Option, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithLogger(log),
		engine.WithRules(reg),
		engine.WithJobs(c.Lint.Jobs),
		engine.WithCache(c.Lint.CacheSize),
	}, nil
}
