package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/archcheck/internal/codemodel"
	"github.com/roach88/archcheck/internal/config"
	"github.com/roach88/archcheck/internal/discovery"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // every check passed
	ExitFailure      = 1 // at least one check failed or could not be evaluated
	ExitCommandError = 2 // bad flags, settings, import or discovery errors
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without an underlying error.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Errors that are not an ExitError map to ExitCommandError, since cobra
// returns flag and argument errors untyped.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// ErrorCode returns the category code of a typed archcheck error.
func ErrorCode(err error) string {
	var (
		cfgErr  *discovery.ConfigError
		loadErr *config.LoadError
		impErr  *codemodel.ImportError
	)
	// The innermost cause is the most specific; ConfigError wraps the others.
	switch {
	case errors.As(err, &impErr):
		return string(impErr.Code)
	case errors.As(err, &loadErr):
		return string(loadErr.Code)
	case errors.As(err, &cfgErr):
		return string(cfgErr.Code)
	default:
		return "COMMAND_ERROR"
	}
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON reports whether the formatter writes JSON.
func (f *OutputFormatter) JSON() bool { return f.Format == "json" }

// Success writes a successful result. Text output prints data with fmt.
func (f *OutputFormatter) Success(data any) error {
	return f.Respond("ok", data)
}

// Respond writes data under the given status; text output ignores status.
func (f *OutputFormatter) Respond(status string, data any) error {
	if f.JSON() {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: status, Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// CommandError reports err and converts it into an ExitCommandError.
func (f *OutputFormatter) CommandError(message string, err error) error {
	_ = f.Error(ErrorCode(err), err.Error(), nil)
	return WrapExitError(ExitCommandError, message, err)
}

// VerboseLog writes a diagnostic line when verbose output is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
