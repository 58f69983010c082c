// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces of the ssfrontend TUI.
//
// # Key Types
//
//   - ToastManager: non-blocking notifications that auto-dismiss
//   - StatusBar: bottom bar with the signed-in user, screen and activity
//   - Cursor: selection and scroll window for the list screens
//
// Rendering helpers (RenderTabs, RenderPostRow, RenderPostDetail,
// RenderMessage) are plain functions of a styles.Theme and the model types;
// they hold no state.
package components
