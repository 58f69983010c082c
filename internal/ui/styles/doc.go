// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ssfrontend TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. Every colored state also carries a shape (see StatusIndicators) so
nothing depends on color alone.

# Color System (colors.go)

  - Purple - selection and the active tab
  - Cyan - brand, headings and your own chat messages
  - Emerald - success, open casting calls, a live chat connection
  - Amber - warnings and admin badges
  - Rose - errors and likes

# Theme (theme.go)

Theme groups the lipgloss styles used by the components and screens:

	theme := styles.NewTheme()
	theme.SetSize(msg.Width, msg.Height)
	theme.Liked.Render(styles.HeartFull)

GetLayoutMode reports Narrow (< 60 columns), Medium or Wide (>= 100), which
screens use to drop secondary columns.
*/
package styles
