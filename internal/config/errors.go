package config

import (
	"fmt"
	"strings"
)

// Configuration sources reported in ConfigurationError.Source.
const (
	SourceFile    = "file"
	SourceFlags   = "flags"
	SourceEnv     = "env"
	SourceSession = "session"
)

// Error types reported in ConfigurationError.ErrorType.
const (
	ErrorTypeParse   = "parse"
	ErrorTypeIO      = "io"
	ErrorTypeMissing = "missing"
	ErrorTypeInvalid = "invalid"
)

// ConfigurationError represents a structured error found while assembling
// configuration from a file, flags, the environment or a session request.
type ConfigurationError struct {
	Source      string   `json:"source"`             // file, flags, env or session
	Field       string   `json:"field,omitempty"`    // Offending field, if known
	FilePath    string   `json:"filePath,omitempty"` // Set for file errors
	ErrorType   string   `json:"errorType"`          // parse, io, missing or invalid
	Message     string   `json:"message"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	if ce.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", ce.Source, ce.Field, ce.Message)
	}
	return fmt.Sprintf("[%s] %s", ce.Source, ce.Message)
}

// DetailedError returns a detailed error message with all context
func (ce ConfigurationError) DetailedError() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Configuration error (%s): %s", ce.Source, ce.Message))
	if ce.Field != "" {
		parts = append(parts, fmt.Sprintf("  Field: %s", ce.Field))
	}
	if ce.FilePath != "" {
		parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	}
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
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
	msgs := make([]string, 0, len(cec.Errors))
	for _, err := range cec.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d configuration errors: %s", len(cec.Errors), strings.Join(msgs, "; "))
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Add adds a new error to the collection
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// ErrorOrNil returns the collection as an error, or nil when it is empty.
func (cec *ConfigurationErrorCollection) ErrorOrNil() error {
	if !cec.HasErrors() {
		return nil
	}
	return *cec
}

// GetDetailedReport returns a detailed report of all errors
func (cec *ConfigurationErrorCollection) GetDetailedReport() string {
	if len(cec.Errors) == 0 {
		return "No configuration errors to report"
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Configuration error report (%d errors):", len(cec.Errors)))
	for i, err := range cec.Errors {
		parts = append(parts, fmt.Sprintf("\nError %d:", i+1))
		parts = append(parts, err.DetailedError())
	}
	return strings.Join(parts, "\n")
}

// NewConfigurationError creates a configuration error for a single field.
func NewConfigurationError(source, field, errorType, message string) ConfigurationError {
	return ConfigurationError{
		Source:    source,
		Field:     field,
		ErrorType: errorType,
		Message:   message,
	}
}
