package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/mktdeploy/internal/deploy"
	"github.com/roach88/mktdeploy/internal/journal"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Deployment failure (publish or initiate failed, run cancelled)
	ExitCommandError = 2 // Command error (bad flags, unreadable target, journal unavailable)
)

// Error codes reported in the JSON envelope and text error lines.
const (
	ErrCodeGeneric        = "E001"
	ErrCodeTargetInvalid  = "E002"
	ErrCodeProfileInvalid = "E003"
	ErrCodeJournal        = "E004"
	ErrCodePublishFailed  = "E005"
	ErrCodeInitFailed     = "E006"
	ErrCodeRunNotFound    = "E007"
	ErrCodeNoAccounts     = "E008"
	ErrCodeCancelled      = "E009"
	ErrCodeAddressUnknown = "E010"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Errors that never passed through a command handler (flag parsing, unknown
// subcommands) are command errors.
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

// errorCode classifies err for the error envelope.
func errorCode(err error) string {
	switch {
	case errors.Is(err, deploy.ErrNoAccounts):
		return ErrCodeNoAccounts
	case errors.Is(err, deploy.ErrInvalidProfile):
		return ErrCodeProfileInvalid
	case deploy.IsPublishError(err):
		return ErrCodePublishFailed
	case deploy.IsInitError(err):
		return ErrCodeInitFailed
	case errors.Is(err, journal.ErrRunNotFound):
		return ErrCodeRunNotFound
	case errors.Is(err, journal.ErrAddressNotFound):
		return ErrCodeAddressUnknown
	case isCancellation(err):
		return ErrCodeCancelled
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// JSON reports whether the formatter emits the JSON envelope.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns it wrapped with exitCode.
func (f *OutputFormatter) Fail(exitCode int, message string, err error) error {
	code := errorCode(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), errorDetails(err))
	return WrapExitError(exitCode, fmt.Sprintf("%s: %s", code, message), err)
}

// errorDetails exposes the failing artifact or init params when there are any.
func errorDetails(err error) interface{} {
	var pubErr *deploy.PublishError
	if errors.As(err, &pubErr) {
		return map[string]string{"artifact": pubErr.Artifact}
	}
	var initErr *deploy.InitError
	if errors.As(err, &initErr) {
		return initErr.Params
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
