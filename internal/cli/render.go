// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - text rendering for posts, comments and tabular listings.

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/util"
)

// =============================================================================
// MARKDOWN
// =============================================================================

var (
	markdownOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// renderMarkdown renders content with glamour, falling back to the raw text
// when the renderer cannot be built or fails.
func renderMarkdown(content string) string {
	markdownOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}
	out, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// description renders a post body for the terminal.
func (a *App) description(text string) string {
	if text == "" {
		return ""
	}
	if a.markdown {
		return renderMarkdown(text)
	}
	return text
}

// =============================================================================
// POSTS
// =============================================================================

// writePostLine writes the one-line feed form of a post.
func writePostLine(w io.Writer, p model.Post, selfID string, now time.Time) {
	heart := "♡"
	if p.IsLikedBy(selfID) {
		heart = LikedStyle.Render("♥")
	}
	title := util.TruncateWidth(p.Title, 48)
	fmt.Fprintf(w, "%s  %s\n", TitleStyle.Render(title), DimStyle.Render(p.ID))

	meta := []string{p.Author.DisplayName()}
	if p.Group != nil && p.Group.Name != "" {
		meta = append(meta, "in "+p.Group.Name)
	}
	if rel := util.RelativeTime(p.CreatedAt, now); rel != "" {
		meta = append(meta, rel)
	}
	fmt.Fprintf(w, "  %s\n", DimStyle.Render(strings.Join(meta, " · ")))

	if line := util.FirstLine(p.Description); line != "" {
		fmt.Fprintf(w, "  %s\n", util.TruncateWidth(line, GetTerminalWidth()-4))
	}
	fmt.Fprintf(w, "  %s %d   💬 %d", heart, p.LikeCount(), len(p.Comments))
	if p.HasMedia() {
		fmt.Fprintf(w, "   [%s]", strings.ToLower(p.MediaType))
	}
	fmt.Fprintln(w)
}

// writePostDetail writes a post with its full description and comments.
func (a *App) writePostDetail(w io.Writer, p model.Post, selfID string) {
	now := a.now()
	fmt.Fprintln(w, TitleStyle.Render(p.Title))
	fmt.Fprintln(w, RenderField("ID", p.ID))
	fmt.Fprintln(w, RenderField("Author", p.Author.DisplayName()))
	if p.Group != nil {
		name := p.Group.Name
		if name == "" {
			name = p.Group.ID
		}
		fmt.Fprintln(w, RenderField("Group", name))
	}
	if !p.CreatedAt.IsZero() {
		fmt.Fprintln(w, RenderField("Posted", util.RelativeTime(p.CreatedAt, now)))
	}
	if p.HasMedia() {
		fmt.Fprintln(w, RenderField(p.MediaType, p.MediaURL))
	}
	liked := "no"
	if p.IsLikedBy(selfID) {
		liked = "yes"
	}
	fmt.Fprintln(w, RenderField("Likes", fmt.Sprintf("%d (liked: %s)", p.LikeCount(), liked)))

	if d := a.description(p.Description); d != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d)
	}

	fmt.Fprintln(w, SectionStyle.Render(fmt.Sprintf("Comments (%d)", len(p.Comments))))
	for _, c := range p.Comments {
		writeComment(w, c, now)
	}
}

func writeComment(w io.Writer, c model.Comment, now time.Time) {
	head := c.Author.DisplayName()
	if rel := util.RelativeTime(c.CreatedAt, now); rel != "" {
		head += " · " + rel
	}
	fmt.Fprintf(w, "  %s %s\n", ValueStyle.Render(head), DimStyle.Render(c.ID))
	for _, line := range strings.Split(c.Text, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// =============================================================================
// TABLES
// =============================================================================

// table lays out rows in columns measured in terminal cells, so names with
// wide runes stay aligned.
type table struct {
	headers []string
	rows    [][]string
	max     []int
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

// limit caps the width of column i.
func (t *table) limit(i, width int) *table {
	for len(t.max) <= i {
		t.max = append(t.max, 0)
	}
	t.max[i] = width
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		s := row[i]
		if i < len(t.max) && t.max[i] > 0 {
			s = util.TruncateWidth(s, t.max[i])
		}
		return s
	}
	for i, h := range t.headers {
		widths[i] = util.StringWidth(h)
	}
	for _, row := range t.rows {
		for i := range widths {
			if cw := util.StringWidth(cell(row, i)); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(row []string, style func(string) string) {
		var b strings.Builder
		for i := range widths {
			c := cell(row, i)
			if i < len(widths)-1 {
				c = util.PadRight(c, widths[i]+2)
			}
			b.WriteString(c)
		}
		fmt.Fprintln(w, style(strings.TrimRight(b.String(), " ")))
	}

	line(t.headers, func(s string) string { return LabelStyle.UnsetWidth().Render(s) })
	for _, row := range t.rows {
		line(row, func(s string) string { return s })
	}
}
