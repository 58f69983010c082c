// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// FRAME
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style
	Help        lipgloss.Style

	// ==========================================================================
	// CONTENT
	// ==========================================================================

	Title       lipgloss.Style
	Section     lipgloss.Style
	Author      lipgloss.Style
	Body        lipgloss.Style
	Muted       lipgloss.Style
	Row         lipgloss.Style
	SelectedRow lipgloss.Style
	Cursor      lipgloss.Style
	Liked       lipgloss.Style
	Badge       lipgloss.Style
	Open        lipgloss.Style
	Closed      lipgloss.Style

	// ==========================================================================
	// CHAT
	// ==========================================================================

	SelfName  lipgloss.Style
	OtherName lipgloss.Style
	Pending   lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputBox      lipgloss.Style
	InputBoxFocus lipgloss.Style
	InputPrompt   lipgloss.Style
	Login         lipgloss.Style

	// ==========================================================================
	// FEEDBACK
	// ==========================================================================

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Spinner lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ActiveTab = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.StatusValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		MarginTop(1)

	t.Author = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Body = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Row = lipgloss.NewStyle().
		PaddingLeft(2)

	// Selection uses a marker as well as a background.
	t.SelectedRow = lipgloss.NewStyle().
		Background(SurfaceBright)

	t.Cursor = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Liked = lipgloss.NewStyle().
		Foreground(Rose)

	t.Badge = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.Open = lipgloss.NewStyle().
		Foreground(Emerald)

	t.Closed = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true)

	t.SelfName = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.OtherName = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Pending = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputBoxFocus = t.InputBox.
		BorderForeground(Purple)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.Login = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)

	t.Error = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.Success = lipgloss.NewStyle().
		Foreground(Emerald)

	t.Warning = lipgloss.NewStyle().
		Foreground(Amber)

	t.Info = lipgloss.NewStyle().
		Foreground(Cyan)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
