// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package views holds the headless controllers behind each screen. They own
// state, talk to the API client and the realtime channel, and publish
// snapshots through OnChange callbacks; rendering lives in internal/ui and
// internal/cli.
//
// Every controller guards its state with a mutex and may be driven from any
// goroutine. Callbacks run outside the lock.
//
// # Key Types
//
//   - PostCard: optimistic like toggle, pessimistic comments, author edits
//   - ChatWindow: one conversation with history plus realtime arrivals
//   - ListView: a fetched list with generation fencing
//   - Feed, GroupList, Search, Leaderboard, CastingBoard, Conversations:
//     ListView specializations
//   - GroupDetail: membership and admin actions on one group
package views
