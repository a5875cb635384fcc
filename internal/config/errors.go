package config

import "fmt"

// LoadErrorCode categorizes settings errors.
type LoadErrorCode string

const (
	// ErrCodeNotFound indicates a missing or unreadable file.
	ErrCodeNotFound LoadErrorCode = "NOT_FOUND"

	// ErrCodeUnsupportedFormat indicates an unknown file extension.
	ErrCodeUnsupportedFormat LoadErrorCode = "UNSUPPORTED_FORMAT"

	// ErrCodeParseFailed indicates malformed content or unknown fields.
	ErrCodeParseFailed LoadErrorCode = "PARSE_FAILED"

	// ErrCodeInvalid indicates well-formed but invalid settings.
	ErrCodeInvalid LoadErrorCode = "INVALID"
)

// LoadError describes why settings could not be loaded.
type LoadError struct {
	Code    LoadErrorCode
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }
