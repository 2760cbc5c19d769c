// Package errors provides structured error types for conango.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and CLI
//   - Machine-readable error codes for programmatic handling
//   - Remediation hints telling the user how to fix the problem
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Each code identifies one failure kind of the Conan orchestration:
//   - VERSION_INCOMPATIBLE: the installed Conan is not a supported major version
//   - PROFILE_SETUP: creating or detecting a Conan profile failed
//   - DEPENDENCY_RESOLUTION: conan install could not resolve the dependency set
//   - NETWORK: a transient network failure (the only retryable kind)
//   - LOCAL_RECIPE: a local recipe is missing, malformed, or failed to build
//   - MALFORMED_OUTPUT: Conan produced output we could not parse
//   - INVALID_INPUT: caller-supplied configuration failed validation
//   - COMPAT_WARNING: a host toolchain compatibility issue (downgraded to a warning)
//
// # Usage
//
//	err := errors.New(errors.CodeInvalidInput, "invalid requirement: %s", req)
//	if errors.Is(err, errors.CodeNetwork) {
//	    // retryable
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.CodeDependencyResolution, origErr, "conan install failed")
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure kinds of the Conan orchestration.
const (
	CodeVersionIncompatible  Code = "VERSION_INCOMPATIBLE"
	CodeProfileSetup         Code = "PROFILE_SETUP"
	CodeDependencyResolution Code = "DEPENDENCY_RESOLUTION"
	CodeNetwork              Code = "NETWORK"
	CodeLocalRecipe          Code = "LOCAL_RECIPE"
	CodeMalformedOutput      Code = "MALFORMED_OUTPUT"
	CodeInvalidInput         Code = "INVALID_INPUT"
	CodeCompatWarning        Code = "COMPAT_WARNING"
)

// SupportURL is appended to detailed messages so users know where to get help.
const SupportURL = "https://github.com/conango/conango/issues"

// remediations holds the fixed corrective action per failure kind.
var remediations = map[Code]string{
	CodeVersionIncompatible: "Install Conan 2: pip install 'conan>=2.0.0' (or pipx install conan).",
	CodeProfileSetup: "Check or delete the profile under ~/.conan2/profiles/.\n" +
		"It will be recreated automatically on the next run.",
	CodeDependencyResolution: "Check that:\n" +
		"1. Dependency names and versions are correct\n" +
		"2. The packages exist in ConanCenter or your configured remotes\n" +
		"3. Your Conan profile is configured correctly",
	CodeNetwork: "This is often transient. Try:\n" +
		"1. Running the command again\n" +
		"2. Checking your internet connection\n" +
		"3. Verifying you can reach your Conan remotes",
	CodeLocalRecipe: "Check that:\n" +
		"1. The recipe path is correct\n" +
		"2. The recipe directory contains a valid conanfile.py\n" +
		"3. The recipe builds successfully with 'conan create'",
	CodeMalformedOutput: "This is likely a bug in conango or an incompatible Conan version.\n" +
		"Please report it.",
	CodeInvalidInput:  "Review the setup options and fix the issues listed above.",
	CodeCompatWarning: "Update the incompatible tools to supported versions.",
}

// Error is a structured error with a code, a remediation hint, and an
// optional cause.
type Error struct {
	Code        Code   // Machine-readable error code
	Message     string // Human-readable message
	Remediation string // Suggested fix, fixed per code
	Cause       error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// DetailedMessage renders the error as a banner with the message, the
// remediation (if any) and a support link. This is what the orchestrator
// prints before exiting with a non-zero status.
func (e *Error) DetailedMessage() string {
	rule := strings.Repeat("=", 60)
	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	b.WriteString("ERROR: " + e.Error() + "\n")
	b.WriteString(rule + "\n")
	if e.Remediation != "" {
		b.WriteString("\nSuggested fix:\n" + e.Remediation + "\n")
	}
	b.WriteString("\nFor more help: " + SupportURL + "\n")
	b.WriteString(rule + "\n")
	return b.String()
}

// New creates a new Error with the given code and formatted message.
// The remediation text is fixed per code.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:        code,
		Message:     fmt.Sprintf(format, args...),
		Remediation: remediations[code],
	}
}

// Wrap creates a new Error wrapping an existing error.
// If cause is already an *Error, it is returned unchanged: known kinds must
// pass through wrapping sites unmodified so that retry and exit-code handling
// see the original classification.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	var e *Error
	if errors.As(cause, &e) {
		return e
	}
	return &Error{
		Code:        code,
		Message:     fmt.Sprintf(format, args...),
		Remediation: remediations[code],
		Cause:       cause,
	}
}

// Is reports whether err carries the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Detailed returns the DetailedMessage for err when it is an *Error, and the
// plain error string otherwise.
func Detailed(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.DetailedMessage()
	}
	return err.Error()
}
