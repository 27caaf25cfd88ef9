package config

import (
	"fmt"

	"ivyharness/internal/buildmode"
	"ivyharness/internal/roles"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a HarnessConfig for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *HarnessConfig) []ValidationError {
	var errs []ValidationError
	h := cfg.Harness

	if h.Protocol == "" {
		errs = append(errs, ValidationError{Field: "harness.protocol", Message: "is required"})
	}
	if h.ServiceName == "" {
		errs = append(errs, ValidationError{Field: "harness.service_name", Message: "is required"})
	}
	if h.TestName == "" {
		errs = append(errs, ValidationError{Field: "harness.test_name", Message: "is required"})
	}

	if !roles.Known(roles.Role(h.Role)) {
		errs = append(errs, ValidationError{
			Field:   "harness.role",
			Message: fmt.Sprintf("invalid role %q (valid: client, server, sender, receiver)", h.Role),
		})
	}

	if _, err := buildmode.Parse(h.BuildMode); err != nil {
		errs = append(errs, ValidationError{
			Field:   "harness.build_mode",
			Message: err.Error(),
		})
	}

	if h.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "harness.timeout", Message: "must not be negative"})
	}
	if h.InternalIterations < 0 {
		errs = append(errs, ValidationError{Field: "harness.internal_iterations", Message: "must not be negative"})
	}

	for i, target := range h.Targets {
		if target == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("harness.targets[%d]", i),
				Message: "must not be empty",
			})
		}
	}

	return errs
}
