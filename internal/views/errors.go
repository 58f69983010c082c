// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"errors"

	"github.com/nvakumar/ssfrontend/internal/optimistic"
)

var (
	// ErrNotLoggedIn is returned by actions that need a session.
	ErrNotLoggedIn = errors.New("you must be logged in to do that")

	// ErrForbidden is returned when the user lacks the role an action needs.
	ErrForbidden = errors.New("you are not allowed to do that")

	// ErrInFlight is returned when the same action is already running.
	ErrInFlight = optimistic.ErrInFlight

	// ErrEmptyComment rejects blank comments before any request is sent.
	ErrEmptyComment = errors.New("comment cannot be empty")

	// ErrEmptyMessage rejects blank chat messages.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrAdminCannotLeave is returned when a group admin tries to leave.
	ErrAdminCannotLeave = errors.New("the group admin cannot leave the group")

	// ErrNoRecipient is returned when a conversation has no other participant.
	ErrNoRecipient = errors.New("conversation has no other participant")

	// ErrNotMounted is returned by actions on an unmounted view.
	ErrNotMounted = errors.New("view is not mounted")
)
