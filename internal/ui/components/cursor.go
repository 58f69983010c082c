// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "strings"

// Cursor is the selected row of a list plus the first visible row.
type Cursor struct {
	Index  int
	Offset int
}

// Move shifts the selection by delta within n rows.
func (c *Cursor) Move(delta, n int) {
	c.Index += delta
	c.Clamp(n)
}

// Clamp keeps the selection inside n rows, for lists that shrank.
func (c *Cursor) Clamp(n int) {
	if c.Index >= n {
		c.Index = n - 1
	}
	if c.Index < 0 {
		c.Index = 0
	}
}

// Window returns the half-open range of rows to draw so the selection stays
// visible in height rows.
func (c *Cursor) Window(height, n int) (int, int) {
	if height <= 0 || n == 0 {
		return 0, 0
	}
	if c.Index < c.Offset {
		c.Offset = c.Index
	}
	if c.Index >= c.Offset+height {
		c.Offset = c.Index - height + 1
	}
	if c.Offset > n-height {
		c.Offset = max(0, n-height)
	}
	return c.Offset, min(n, c.Offset+height)
}

// RenderList joins pre-rendered rows, scrolled to keep the cursor visible.
// Each row is one or more lines; height counts rows, not lines.
func RenderList(rows []string, c *Cursor, height int) string {
	c.Clamp(len(rows))
	start, end := c.Window(height, len(rows))
	return strings.Join(rows[start:end], "\n")
}
