// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the full-screen terminal UI.
//
// The root Model owns one view per tab (feed, groups, conversations, people,
// leaderboard, casting calls) plus the open post, group or chat. Views run
// their requests in background commands and report changes through OnChange
// callbacks; those are bridged into bubbletea messages so all rendering
// happens on the program goroutine.
package app
