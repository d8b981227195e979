package config

import (
	"errors"
	"fmt"
	"strings"
)

// Error types used in ConfigurationError.ErrorType.
const (
	ErrorTypeParse       = "parse"
	ErrorTypeValidation  = "validation"
	ErrorTypeCredentials = "credentials"
)

// ConfigurationError represents a structured configuration problem. It is
// surfaced verbatim to tool callers, so Suggestions should be actionable.
type ConfigurationError struct {
	FilePath    string   `json:"filePath,omitempty"`
	Field       string   `json:"field,omitempty"`
	ErrorType   string   `json:"errorType"`
	Message     string   `json:"message"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	if ce.Field != "" {
		return fmt.Sprintf("configuration error (%s): %s", ce.Field, ce.Message)
	}
	return fmt.Sprintf("configuration error: %s", ce.Message)
}

// DetailedError returns a multi-line message with all context.
func (ce ConfigurationError) DetailedError() string {
	parts := []string{ce.Error()}

	if ce.FilePath != "" {
		parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	}
	if ce.Details != "" {
		parts = append(parts, fmt.Sprintf("  Details: %s", ce.Details))
	}
	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce ConfigurationError
	if errors.As(err, &ce) {
		return true
	}
	var cec ConfigurationErrorCollection
	return errors.As(err, &cec)
}

// ConfigurationErrorCollection holds multiple configuration errors
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection
func (cec ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Add records a validation failure for field.
func (cec *ConfigurationErrorCollection) Add(field, message string) {
	cec.Errors = append(cec.Errors, ConfigurationError{
		Field:     field,
		ErrorType: ErrorTypeValidation,
		Message:   message,
	})
}
