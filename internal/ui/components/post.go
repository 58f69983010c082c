// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/ui/styles"
	"github.com/nvakumar/ssfrontend/internal/util"
)

// =============================================================================
// POSTS
// =============================================================================

// LikeBadge renders the heart and count for selfID.
func LikeBadge(theme *styles.Theme, p model.Post, selfID string, busy bool) string {
	badge := theme.Muted.Render(fmt.Sprintf("%s %d", styles.HeartEmpty, p.LikeCount()))
	if p.IsLikedBy(selfID) {
		badge = theme.Liked.Render(fmt.Sprintf("%s %d", styles.HeartFull, p.LikeCount()))
	}
	if busy {
		badge += theme.Pending.Render("…")
	}
	return badge
}

// RenderPostRow renders a post as a two line list entry.
func RenderPostRow(theme *styles.Theme, p model.Post, selfID string, now time.Time, width int, selected, busy bool) string {
	marker := "  "
	if selected {
		marker = theme.Cursor.Render("> ")
	}

	title := util.TruncateWidth(p.Title, max(10, width-4))
	line1 := marker + theme.Title.Render(title)

	meta := []string{theme.Author.Render(p.Author.DisplayName())}
	if p.Group != nil && p.Group.Name != "" {
		meta = append(meta, theme.Badge.Render("#"+p.Group.Name))
	}
	meta = append(meta,
		LikeBadge(theme, p, selfID, busy),
		theme.Muted.Render(fmt.Sprintf("💬 %d", len(p.Comments))),
	)
	if p.HasMedia() {
		meta = append(meta, theme.Info.Render("["+strings.ToLower(p.MediaType)+"]"))
	}
	if theme.GetLayoutMode() != styles.LayoutNarrow {
		meta = append(meta, theme.Muted.Render(util.RelativeTime(p.CreatedAt, now)))
	}
	line2 := "  " + strings.Join(meta, "  ")

	row := line1 + "\n" + line2
	if selected {
		return theme.SelectedRow.Width(width).Render(row)
	}
	return row
}

// RenderPostDetail renders a post with its rendered description and
// comments. commentCursor selects a comment, or -1 for none.
func RenderPostDetail(theme *styles.Theme, p model.Post, selfID, description string, now time.Time, width, commentCursor int, busy bool) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(p.Title))
	b.WriteString("\n")

	meta := theme.Author.Render("by " + p.Author.DisplayName())
	if p.Group != nil && p.Group.Name != "" {
		meta += "  " + theme.Badge.Render("#"+p.Group.Name)
	}
	meta += "  " + theme.Muted.Render(util.RelativeTime(p.CreatedAt, now))
	b.WriteString(meta + "\n")
	b.WriteString(LikeBadge(theme, p, selfID, busy) + "\n")

	if p.HasMedia() {
		b.WriteString(theme.Info.Render(p.MediaType+": "+p.MediaURL) + "\n")
	}
	if description != "" {
		b.WriteString("\n" + strings.TrimRight(description, "\n") + "\n")
	}

	b.WriteString(theme.Section.Render(fmt.Sprintf("Comments (%d)", len(p.Comments))))
	b.WriteString("\n")
	if len(p.Comments) == 0 {
		b.WriteString(theme.Muted.Render("  No comments yet.") + "\n")
	}
	for i, c := range p.Comments {
		b.WriteString(RenderComment(theme, c, now, width, i == commentCursor))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderComment renders one comment line.
func RenderComment(theme *styles.Theme, c model.Comment, now time.Time, width int, selected bool) string {
	marker := "  "
	if selected {
		marker = theme.Cursor.Render("> ")
	}
	head := theme.Author.Render(c.Author.DisplayName()) + " " + theme.Muted.Render(util.RelativeTime(c.CreatedAt, now))
	body := lipgloss.NewStyle().Width(max(10, width-4)).Render(c.Text)
	return marker + head + "\n" + lipgloss.NewStyle().PaddingLeft(4).Render(body)
}

// =============================================================================
// CHAT
// =============================================================================

// RenderMessage renders a chat message. names maps sender ids to display
// names. Local messages (realtime arrivals without a stored id) are marked.
func RenderMessage(theme *styles.Theme, m model.Message, selfID string, names map[string]string, showTime bool, width int) string {
	var name string
	if m.IsFrom(selfID) {
		name = theme.SelfName.Render("you")
	} else {
		n := names[m.SenderID]
		if n == "" {
			n = m.SenderID
		}
		name = theme.OtherName.Render(n)
	}

	prefix := ""
	if showTime && !m.CreatedAt.IsZero() {
		prefix = theme.Muted.Render(m.CreatedAt.Local().Format("15:04")) + " "
	}
	suffix := ""
	if m.ID.IsLocal() {
		suffix = " " + theme.Pending.Render("(live)")
	}

	head := prefix + name + ": "
	text := lipgloss.NewStyle().Width(max(10, width-lipgloss.Width(head)-lipgloss.Width(suffix))).Render(m.Text)
	return lipgloss.JoinHorizontal(lipgloss.Top, head, text, suffix)
}
