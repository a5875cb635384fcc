package discovery

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeNoImporter indicates that no code model importer was configured.
	ErrCodeNoImporter ConfigErrorCode = "NO_IMPORTER"

	// ErrCodeImportFailed indicates that the package roots could not be imported.
	ErrCodeImportFailed ConfigErrorCode = "IMPORT_FAILED"

	// ErrCodeMissingConstructor indicates a registered provider without a factory.
	ErrCodeMissingConstructor ConfigErrorCode = "MISSING_CONSTRUCTOR"

	// ErrCodeConstructorFailed indicates that a provider factory returned an error.
	ErrCodeConstructorFailed ConfigErrorCode = "CONSTRUCTOR_FAILED"

	// ErrCodeConstructorPanic indicates that a provider factory panicked.
	ErrCodeConstructorPanic ConfigErrorCode = "CONSTRUCTOR_PANIC"

	// ErrCodeNilProvider indicates that a provider factory returned nil.
	ErrCodeNilProvider ConfigErrorCode = "NIL_PROVIDER"
)

// ConfigError aborts a run before any check executes.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Provider is the qualified name of the offending provider, if any.
	Provider string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Provider != "" {
		msg += fmt.Sprintf(" (provider=%s)", e.Provider)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
