// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvakumar/ssfrontend/internal/ui/styles"
	"github.com/nvakumar/ssfrontend/internal/util"
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// Connection is the realtime state shown while a chat is open.
type Connection int

const (
	ConnNone Connection = iota
	ConnConnecting
	ConnLive
	ConnOffline
)

// String returns the display string for the connection.
func (c Connection) String() string {
	switch c {
	case ConnConnecting:
		return "connecting"
	case ConnLive:
		return "live"
	case ConnOffline:
		return "offline"
	default:
		return ""
	}
}

// Icon returns a shape for the connection so it does not rely on color.
func (c Connection) Icon() string {
	switch c {
	case ConnConnecting:
		return styles.StatusIndicators.Pending
	case ConnLive:
		return styles.StatusIndicators.Active
	case ConnOffline:
		return styles.StatusIndicators.Warning
	default:
		return ""
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar is the bottom line of the TUI.
type StatusBar struct {
	User       string
	Screen     string
	Connection Connection
	// Activity is a spinner frame plus label while something loads.
	Activity string
	Hint     string
}

// Render draws the bar at width. The hint is dropped first when space runs
// out.
func (s StatusBar) Render(theme *styles.Theme, width int) string {
	var left []string
	if s.User != "" {
		left = append(left, theme.StatusKey.Render("@")+theme.StatusValue.Render(s.User))
	} else {
		left = append(left, theme.Muted.Render("signed out"))
	}
	if s.Screen != "" {
		left = append(left, theme.StatusValue.Render(s.Screen))
	}
	if s.Connection != ConnNone {
		style := theme.Warning
		if s.Connection == ConnLive {
			style = theme.Success
		}
		left = append(left, style.Render(s.Connection.Icon()+" "+s.Connection.String()))
	}
	if s.Activity != "" {
		left = append(left, theme.Spinner.Render(s.Activity))
	}

	sep := theme.Muted.Render(" | ")
	leftText := strings.Join(left, sep)

	inner := width - theme.StatusBar.GetHorizontalFrameSize()
	if inner < 0 {
		inner = 0
	}
	hint := ""
	if s.Hint != "" && theme.GetLayoutMode() != styles.LayoutNarrow {
		room := inner - lipgloss.Width(leftText) - 2
		if room > 8 {
			hint = theme.Muted.Render(util.TruncateWidth(s.Hint, room))
		}
	}

	gap := inner - lipgloss.Width(leftText) - lipgloss.Width(hint)
	if gap < 1 {
		gap = 1
	}
	return theme.StatusBar.Width(width).MaxWidth(width).Render(leftText + strings.Repeat(" ", gap) + hint)
}

// RenderTabs draws the tab row with the active tab highlighted.
func RenderTabs(theme *styles.Theme, names []string, active int) string {
	tabs := make([]string, 0, len(names))
	for i, name := range names {
		label := name
		if theme.GetLayoutMode() != styles.LayoutNarrow {
			label = string(rune('1'+i)) + " " + name
		}
		if i == active {
			tabs = append(tabs, theme.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, theme.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
