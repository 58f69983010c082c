// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders post descriptions, caching the renderer per width.
type Markdown struct {
	enabled  bool
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown returns a renderer. When enabled is false Render returns the
// text unchanged.
func NewMarkdown(enabled bool) *Markdown {
	return &Markdown{enabled: enabled}
}

// Render renders text wrapped at width, falling back to the raw text when
// glamour fails.
func (m *Markdown) Render(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" || !m.enabled {
		return text
	}
	if width < 20 {
		width = 20
	}
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err != nil {
			m.enabled = false
			return text
		}
		m.renderer, m.width = r, width
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
