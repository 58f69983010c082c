// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// people.go - user search, the leaderboard and casting calls.

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/ui/components"
	"github.com/nvakumar/ssfrontend/internal/util"
)

// =============================================================================
// SEARCH
// =============================================================================

func (m *Model) handlePeopleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Search) || (key.Matches(msg, m.keys.Open) && m.search.Query() == "") {
		m.searching = true
		return m.searchInput.Focus()
	}
	m.moveCursor(msg, &m.searchCursor, len(m.search.Items()))
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		return nil
	case tea.KeyEnter:
		m.searching = false
		m.searchInput.Blur()
		m.searchCursor = components.Cursor{}
		q, search := m.searchInput.Value(), m.search
		return m.do("search", "", func(ctx context.Context) error {
			return search.SetQuery(ctx, q)
		})
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return cmd
}

func (m Model) viewPeople(height int) string {
	box := m.theme.InputBox
	if m.searching {
		box = m.theme.InputBoxFocus
	}
	var b strings.Builder
	b.WriteString(box.Width(max(10, m.width-2)).Render(m.searchInput.View()))
	b.WriteString("\n")

	if m.search.Query() == "" {
		b.WriteString(m.theme.Muted.Render("Press / to search people by name."))
		return b.String()
	}
	st := m.search.State()
	if s, ok := m.viewListState(st.Loading, st.Loaded, st.Err, len(st.Items), fmt.Sprintf("No users match %q.", m.search.Query())); ok {
		b.WriteString(s)
		return b.String()
	}

	c := m.searchCursor
	c.Clamp(len(st.Items))
	rows := make([]string, len(st.Items))
	for i, u := range st.Items {
		rows[i] = m.renderUserRow(u, i == c.Index)
	}
	b.WriteString(m.listError(st.Err))
	b.WriteString(components.RenderList(rows, &c, max(1, (height-inputHeight)/2)))
	return b.String()
}

func (m Model) renderUserRow(u model.User, selected bool) string {
	head := m.theme.Author.Render(u.DisplayName())
	if u.Role != "" {
		head += "  " + m.theme.Badge.Render(u.Role)
	}
	detail := u.Bio
	if len(u.Skills) > 0 {
		detail = strings.Join(u.Skills, ", ")
	}
	row := head + "\n" + m.theme.Muted.Render(util.TruncateWidth("  "+util.FirstLine(detail), max(10, m.width-2)))
	if selected {
		return m.theme.SelectedRow.Width(m.width).Render(row)
	}
	return row
}

// =============================================================================
// LEADERBOARD
// =============================================================================

func (m *Model) handleLeaderboardKey(msg tea.KeyMsg) tea.Cmd {
	n := len(model.Roles) + 1
	switch {
	case key.Matches(msg, m.keys.NextRole):
		m.roleIndex = (m.roleIndex + 1) % n
	case key.Matches(msg, m.keys.PrevRole):
		m.roleIndex = (m.roleIndex + n - 1) % n
	default:
		m.moveCursor(msg, &m.boardCursor, len(m.board.Items()))
		return nil
	}
	role := model.AllRoles
	if m.roleIndex > 0 {
		role = model.Roles[m.roleIndex-1]
	}
	m.boardCursor = components.Cursor{}
	board := m.board
	return m.do("load leaderboard", "", func(ctx context.Context) error {
		return board.SetRole(ctx, role)
	})
}

func (m Model) viewLeaderboard(height int) string {
	var b strings.Builder
	b.WriteString(m.theme.Section.Render("Top creators · "+m.board.Role()) + "  " + m.theme.Muted.Render("[ ] change role"))
	b.WriteString("\n")

	st := m.board.State()
	if s, ok := m.viewListState(st.Loading, st.Loaded, st.Err, len(st.Items), "Nobody ranked yet."); ok {
		b.WriteString(s)
		return b.String()
	}

	c := m.boardCursor
	c.Clamp(len(st.Items))
	rows := make([]string, len(st.Items))
	nameWidth := min(28, max(12, m.width-40))
	for i, e := range st.Items {
		row := fmt.Sprintf("%3d. %s %s %5d posts %6d likes %7.1f",
			i+1,
			util.PadRight(util.TruncateWidth(e.FullName, nameWidth), nameWidth),
			util.PadRight(e.Role, 10),
			e.TotalPosts, e.TotalLikes, e.EngagementScore)
		if i == c.Index {
			row = m.theme.SelectedRow.Width(m.width).Render(row)
		} else {
			row = m.theme.Row.Render(row)
		}
		rows[i] = row
	}
	b.WriteString(m.listError(st.Err))
	b.WriteString(components.RenderList(rows, &c, max(1, height-1)))
	return b.String()
}

// =============================================================================
// CASTING
// =============================================================================

func (m Model) viewCasting(height int) string {
	st := m.casting.State()
	if s, ok := m.viewListState(st.Loading, st.Loaded, st.Err, len(st.Items), "No casting calls."); ok {
		return s
	}
	c := m.castingCursor
	c.Clamp(len(st.Items))
	now := m.now()
	rows := make([]string, len(st.Items))
	for i, call := range st.Items {
		rows[i] = m.renderCastingRow(call, now, i == c.Index)
	}
	return m.listError(st.Err) + components.RenderList(rows, &c, max(1, height/3))
}

func (m Model) renderCastingRow(c model.CastingCall, now time.Time, selected bool) string {
	status := m.theme.Open.Render("open")
	if !c.Open(now) {
		status = m.theme.Closed.Render("closed")
	}
	head := m.theme.Title.Render(c.ProjectTitle) + "  " + status

	var meta []string
	for _, s := range []string{c.ProjectType, c.RoleType, c.Location} {
		if s != "" {
			meta = append(meta, s)
		}
	}
	if !c.ApplicationDeadline.IsZero() {
		meta = append(meta, "apply by "+c.ApplicationDeadline.Format("Jan 2, 2006"))
	}
	row := head + "\n" + m.theme.Muted.Render(util.TruncateWidth("  "+strings.Join(meta, " · "), max(10, m.width-2)))
	if selected {
		extra := c.ContactEmail
		if c.RoleDescription != "" {
			extra = util.FirstLine(c.RoleDescription) + " · " + extra
		}
		row += "\n" + m.theme.Body.Render(util.TruncateWidth("  "+extra, max(10, m.width-2)))
		return m.theme.SelectedRow.Width(m.width).Render(row)
	}
	return row
}
