package metadata

import (
	"fmt"
	"strings"
)

// ValidationResult contains the outcome of load spec validation.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// AddError appends an error message and marks the result invalid.
func (v *ValidationResult) AddError(format string, args ...interface{}) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks the fields a load job cannot run without.
func Validate(s *LoadSpec) ValidationResult {
	result := ValidationResult{Valid: true}

	if strings.TrimSpace(s.Connection.Database) == "" {
		result.AddError("connection/database is required")
	}

	switch strings.ToLower(strings.TrimSpace(s.Connection.ManagementSystem)) {
	case "", "postgresql", "postgres":
	default:
		result.AddError("connection/management_system %q is not supported, use postgresql", s.Connection.ManagementSystem)
	}

	if _, _, err := s.Connection.HostPort(); err != nil {
		result.AddError("connection/host %q has an invalid port", s.Connection.Host)
	}

	if s.Group != "" && strings.TrimSpace(s.Group) == "" {
		result.AddError("group contains only whitespace")
	}

	return result
}
