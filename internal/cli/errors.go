// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - error types and exit code mapping for CLI commands.
//
// Handlers always return errors; Run's caller decides how to display them
// and which exit code to use.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/config"
	"github.com/nvakumar/ssfrontend/internal/session"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitRejectedError = 6
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command with context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError rejects user input before anything is sent.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError names a resource that does not exist locally, such as a
// conversation id missing from the user's inbox.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewCommandError creates a command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(name, usage string) error {
	return &ValidationError{Field: name, Reason: "required argument missing", Example: usage}
}

// ErrUnknownSubcommand reports a subcommand the command does not know.
func ErrUnknownSubcommand(command, sub, usage string) error {
	return &ValidationError{
		Field:   command + " subcommand",
		Value:   sub,
		Reason:  "unknown subcommand",
		Example: usage,
	}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode maps err to an exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validation *ValidationError
		notFound   *NotFoundError
		tty        *TTYRequiredError
		cfgErrs    config.ValidateErrors
		cfgErr     config.ValidationError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &tty):
		return ExitUsageError
	case errors.As(err, &cfgErrs), errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &notFound):
		return ExitNotFoundError
	}

	switch {
	case errors.Is(err, views.ErrNotLoggedIn),
		errors.Is(err, views.ErrForbidden),
		errors.Is(err, views.ErrAdminCannotLeave),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrSessionExpired),
		errors.Is(err, session.ErrMissingCredentials),
		api.IsUnauthorized(err):
		return ExitAuthError
	case errors.Is(err, views.ErrEmptyComment),
		errors.Is(err, views.ErrEmptyMessage):
		return ExitUsageError
	case api.IsNotFound(err):
		return ExitNotFoundError
	case api.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case api.IsNetwork(err):
		return ExitNetworkError
	case api.IsRejected(err):
		return ExitRejectedError
	}
	return ExitGeneralError
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError prints err to w, as a JSON envelope in JSON mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Write(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), api.Message(err))
}

// errorDetails returns structured fields for the JSON error envelope.
func errorDetails(err error) map[string]any {
	out := map[string]any{"exit_code": GetExitCode(err)}

	var (
		ce         *api.ClientError
		validation *ValidationError
		cmd        *CommandError
	)
	switch {
	case errors.As(err, &ce):
		out["error_type"] = ce.Type.String()
		if ce.Status != 0 {
			out["status"] = ce.Status
		}
	case errors.As(err, &validation):
		out["error_type"] = "validation_error"
		out["field"] = validation.Field
		if validation.Example != "" {
			out["example"] = validation.Example
		}
	case errors.As(err, &cmd):
		out["error_type"] = "command_error"
		out["command"] = cmd.Command
		out["action"] = cmd.Action
	default:
		out["error_type"] = "generic_error"
	}
	return out
}
