// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the client packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe write used for config and credentials
//
// Display Helpers:
//   - TruncateWidth / PadRight: column layout that respects wide runes
//   - RelativeTime: "3m ago" style timestamps for feeds and chats
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	cell := util.PadRight(util.TruncateWidth(name, 20), 20)
package util
