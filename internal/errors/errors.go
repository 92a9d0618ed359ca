// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured, user-facing error handling for the
// cie CLI. It defines UserError, a type that carries what went wrong, why,
// and how to fix it, on top of the three exit codes the command line
// contract promises: 0 success, 1 generic failure, 2 bad arguments.
//
// internal/cieerrors carries the engine's own Kind-tagged domain errors;
// FromCieError bridges one into the other at the CLI boundary, so a command
// body can return a *cieerrors.Error and still get a properly-coded,
// formatted UserError at the top level.
//
// # Usage Example
//
//	if err := doSomething(); err != nil {
//	    errors.FatalError(errors.FromCieError(err), jsonOutput)
//	}
//
// # Formatted Output
//
// The Format() method renders colored terminal output:
//
//	Error: Cannot open the CIE database
//	Cause: The database file is locked by another process
//	Fix:   Close other CIE instances or run: cie reset --yes
//
// For JSON output:
//
//	jsonData := err.ToJSON()
//	json.NewEncoder(os.Stderr).Encode(jsonData)
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kraklabs/cie-core/internal/cieerrors"
)

// Exit codes, per the command line contract.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates a generic runtime failure: I/O errors, a
	// corrupted cache, an internal invariant violation, and so on.
	ExitFailure = 1

	// ExitUsage indicates the invocation itself was wrong: a missing or
	// malformed argument, a flag that failed validation.
	ExitUsage = 2
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Err is the underlying error that caused this error (optional).
	// This enables error wrapping and compatibility with errors.Is/As.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, for errors.Is/errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUsageError creates an ExitUsage error for a bad invocation: a missing
// argument, an unknown flag value, a malformed node key.
func NewUsageError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitUsage}
}

// NewFailureError creates an ExitFailure error wrapping err, for anything
// that isn't the caller's fault: I/O, a locked cache file, a corrupted
// snapshot, an internal invariant violation.
func NewFailureError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitFailure, Err: err}
}

// FromCieError converts an internal/cieerrors.Error into a UserError with
// the exit code and fix hint appropriate to its Kind. Non-cieerrors errors
// fall back to a generic ExitFailure UserError.
func FromCieError(err error) *UserError {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}

	var ce *cieerrors.Error
	if !errors.As(err, &ce) {
		return NewFailureError(err.Error(), "", "", err)
	}

	switch ce.Kind {
	case cieerrors.InvalidArgument:
		return &UserError{Message: ce.Message, Fix: "Check the arguments and try again", ExitCode: ExitUsage, Err: ce}
	case cieerrors.NotFound, cieerrors.MissingEndpoint:
		return &UserError{Message: ce.Message, Fix: "Run 'cie index' to build or refresh the graph", ExitCode: ExitFailure, Err: ce}
	case cieerrors.Incompatible:
		return &UserError{Message: ce.Message, Fix: "Run 'cie reset' and re-index with the current embedding model", ExitCode: ExitFailure, Err: ce}
	case cieerrors.Corrupted:
		return &UserError{Message: ce.Message, Fix: "Run 'cie reset' to discard the corrupted cache and re-index", ExitCode: ExitFailure, Err: ce}
	case cieerrors.TimedOut, cieerrors.Cancelled:
		return &UserError{Message: ce.Message, Fix: "Try again, or raise the configured budget", ExitCode: ExitFailure, Err: ce}
	case cieerrors.IOError:
		return &UserError{Message: ce.Message, Fix: "Check filesystem permissions and available disk space", ExitCode: ExitFailure, Err: ce}
	default:
		return NewFailureError(ce.Message, "", "This is an internal error; please report it", ce)
	}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// The output includes colored sections for Error (red/bold), Cause (yellow),
// and Fix (green). Color output respects the NO_COLOR environment variable
// and can be explicitly disabled with the noColor parameter. Empty Cause or
// Fix fields are omitted.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format, for CLI commands
// that support --json output mode.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code. If err is
// not already a *UserError it is passed through FromCieError first. This
// function never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	ue, ok := err.(*UserError)
	if !ok {
		ue = FromCieError(err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ue.ToJSON())
	} else {
		fmt.Fprint(os.Stderr, ue.Format(false))
	}
	os.Exit(ue.ExitCode)
}
