package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/ubidoc/internal/report"
)

var (
	// ErrInvalidFormat indicates an output format no renderer handles
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidIgnorePattern indicates an ignore pattern that does not compile
	ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")

	// ErrEmptyOutputDir indicates a blank output directory
	ErrEmptyOutputDir = errors.New("empty output directory")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateSource(&cfg.Source); err != nil {
		errs = append(errs, err)
	}
	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	return joinErrors(errs)
}

func validateSource(cfg *SourceConfig) error {
	var errs []error
	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidIgnorePattern, pattern, err))
		}
	}
	return joinErrors(errs)
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Dir) == "" {
		errs = append(errs, fmt.Errorf("%w: output.dir is required", ErrEmptyOutputDir))
	}

	// An empty list falls back to html in the writer.
	valid := report.Formats()
	for _, f := range cfg.Formats {
		if !slices.Contains(valid, f) {
			errs = append(errs, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidFormat, f, strings.Join(valid, ", ")))
		}
	}

	return joinErrors(errs)
}

// validationError lists several problems, one per line, and unwraps to all
// of them so errors.Is finds every sentinel.
type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return "validation failed:\n  - " + strings.Join(msgs, "\n  - ")
}

func (e *validationError) Unwrap() []error {
	return e.errs
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return &validationError{errs: errs}
}
