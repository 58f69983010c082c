// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - confirmation for destructive commands.

package cli

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user declines a confirmation prompt.
var ErrCancelled = errors.New("cancelled")

// confirm asks before a destructive action. --confirm skips the prompt. JSON
// mode never prompts, so it requires the flag.
func (a *App) confirm(action string, flag bool) error {
	if flag {
		return nil
	}
	if a.json {
		return &ValidationError{
			Field:   "confirm",
			Reason:  action + " requires --confirm in JSON mode",
			Example: "--confirm",
		}
	}

	answer, err := a.prompt(fmt.Sprintf("%s %s? [y/N] ", WarningStyle.Render("[WARN]"), action))
	if err != nil {
		return ErrCancelled
	}
	if ok, err := ParseBoolString(answer); err != nil || !ok {
		return ErrCancelled
	}
	return nil
}

// isCancelled reports a declined confirmation, which handlers treat as a
// clean exit.
func isCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
