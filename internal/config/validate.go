package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/doclint/internal/diag"
	"github.com/mvp-joe/doclint/internal/rules"
)

var (
	// ErrEmptyInclude indicates no include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidSeverity indicates an unknown minimum severity
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrInvalidJobs indicates a negative job count
	ErrInvalidJobs = errors.New("invalid jobs")

	// ErrInvalidCacheSize indicates a negative cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidRules indicates bad rule overrides
	ErrInvalidRules = errors.New("invalid rule overrides")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidColor indicates an unsupported color mode
	ErrInvalidColor = errors.New("invalid color mode")

	// ErrInvalidDebounce indicates a negative debounce interval
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateLint(&cfg.Lint); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude))
	}

	for _, pattern := range append(append([]string(nil), cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateLint(cfg *LintConfig) error {
	var errs []error

	if _, err := diag.ParseSeverity(cfg.MinSeverity); err != nil {
		errs = append(errs, fmt.Errorf("%w: min_severity: %v", ErrInvalidSeverity, err))
	}

	if cfg.Jobs < 0 {
		errs = append(errs, fmt.Errorf("%w: jobs cannot be negative, got %d", ErrInvalidJobs, cfg.Jobs))
	}

	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	if _, err := rules.Default().Configure(cfg.Rules); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidRules, err))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'text' or 'json', got '%s'", ErrInvalidFormat, cfg.Format))
	}

	switch strings.ToLower(cfg.Color) {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'auto', 'always' or 'never', got '%s'", ErrInvalidColor, cfg.Color))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The sentinel errors stay matchable with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &multiError{errs: errs}
}

type multiError struct {
	errs []error
}

func (m *multiError) Error() string {
	msgs := make([]string, 0, len(m.errs))
	for _, err := range m.errs {
		msgs = append(msgs, err.Error())
	}
	return "validation failed:\n  - " + strings.Join(msgs, "\n  - ")
}

func (m *multiError) Unwrap() []error {
	return m.errs
}
