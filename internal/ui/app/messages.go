// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// =============================================================================
// VIEW BRIDGE
// =============================================================================

// The views publish changes from their own goroutines. Each OnChange
// callback posts a small message on the events channel; listen delivers one
// message at a time to Update, which then re-reads the view's State.

// viewID names the view that changed.
type viewID int

const (
	viewFeed viewID = iota
	viewPost
	viewGroups
	viewGroup
	viewConversations
	viewChat
	viewSearch
	viewLeaderboard
	viewCasting
)

// bridged marks messages that arrive through the events channel. Update
// re-arms listen after each one.
type bridged interface{ bridged() }

// viewChangedMsg reports that a view's state changed.
type viewChangedMsg struct{ view viewID }

// sessionChangedMsg reports a login, logout or external credential change.
type sessionChangedMsg struct {
	session model.Session
	active  bool
}

func (viewChangedMsg) bridged()    {}
func (sessionChangedMsg) bridged() {}

// eventBuffer bounds the bridge. A dropped viewChangedMsg is harmless since
// the next one re-reads the whole state.
const eventBuffer = 256

type bridge chan tea.Msg

// post queues msg without blocking the view that sent it.
func (b bridge) post(msg tea.Msg) {
	select {
	case b <- msg:
	default:
	}
}

// listen waits for the next bridged message.
func (b bridge) listen() tea.Cmd {
	return func() tea.Msg { return <-b }
}

// changed returns an OnChange callback for any view state type.
func changed[S any](b bridge, v viewID) func(S) {
	return func(S) { b.post(viewChangedMsg{view: v}) }
}

// =============================================================================
// COMMAND RESULTS
// =============================================================================

// actionDoneMsg is the result of a background action. done is shown as a
// success toast when set; err as an error toast.
type actionDoneMsg struct {
	action string
	done   string
	err    error
}

// loginDoneMsg is the result of the login form.
type loginDoneMsg struct{ err error }

// chatMountedMsg reports that a chat window finished mounting.
type chatMountedMsg struct {
	window *views.ChatWindow
	err    error
}

// groupMountedMsg reports that a group detail finished loading.
type groupMountedMsg struct {
	detail *views.GroupDetail
	err    error
}

// postDeletedMsg reports a deleted post so the detail screen can close.
type postDeletedMsg struct {
	postID string
	err    error
}
