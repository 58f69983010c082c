// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// groups.go - the group directory and the group detail screen.

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/ui/components"
	"github.com/nvakumar/ssfrontend/internal/util"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// groupScreen is the open group.
type groupScreen struct {
	detail  *views.GroupDetail
	cursor  components.Cursor
	confirm bool
}

// =============================================================================
// GROUPS TAB
// =============================================================================

func (m *Model) handleGroupsKey(msg tea.KeyMsg) tea.Cmd {
	groups := m.groups.Items()
	if m.moveCursor(msg, &m.groupCursor, len(groups)) || len(groups) == 0 {
		return nil
	}
	if key.Matches(msg, m.keys.Open) {
		m.groupCursor.Clamp(len(groups))
		return m.openGroup(groups[m.groupCursor.Index].ID)
	}
	return nil
}

func (m Model) viewGroups(height int) string {
	st := m.groups.State()
	if s, ok := m.viewListState(st.Loading, st.Loaded, st.Err, len(st.Items), "No groups yet."); ok {
		return s
	}
	c := m.groupCursor
	c.Clamp(len(st.Items))
	rows := make([]string, len(st.Items))
	for i, g := range st.Items {
		rows[i] = m.renderGroupRow(g, i == c.Index)
	}
	return m.listError(st.Err) + components.RenderList(rows, &c, max(1, height/2))
}

func (m Model) renderGroupRow(g model.Group, selected bool) string {
	head := m.theme.Title.Render(g.Name) + "  " + m.theme.Badge.Render(g.Visibility())
	if g.IsMember(m.session.UserID) {
		head += "  " + m.theme.Success.Render("member")
	}
	meta := fmt.Sprintf("%d members", g.MemberCount())
	if g.Description != "" {
		meta += " · " + util.FirstLine(g.Description)
	}
	row := head + "\n" + m.theme.Muted.Render(util.TruncateWidth("  "+meta, max(10, m.width-2)))
	if selected {
		return m.theme.SelectedRow.Width(m.width).Render(row)
	}
	return row
}

// =============================================================================
// GROUP SCREEN
// =============================================================================

func (m *Model) openGroup(id string) tea.Cmd {
	m.closeGroup()
	d := views.NewGroupDetail(id, m.deps.API, m.deps.Session, m.log)
	d.OnChange(changed[views.GroupState](m.events, viewGroup))
	d.Posts.OnChange(changed[views.ListState[model.Post]](m.events, viewGroup))
	m.group.detail = d
	m.group.cursor = components.Cursor{}
	m.screen = screenGroup

	// Open now so a close before the load lands unmounts the same scope.
	ctx := m.ctx
	d.Open(ctx)
	return func() tea.Msg {
		err := d.Reload(ctx)
		if err == nil {
			err = d.Posts.Refresh(ctx)
		}
		return groupMountedMsg{detail: d, err: err}
	}
}

// closeGroup unmounts the open group, if any.
func (m *Model) closeGroup() {
	if m.group.detail != nil {
		m.group.detail.Unmount()
	}
	m.group = groupScreen{}
}

func (m *Model) handleGroupMounted(msg groupMountedMsg) {
	if msg.detail != m.group.detail {
		msg.detail.Unmount()
		return
	}
	if msg.err == nil {
		return
	}
	m.handleActionDone(actionDoneMsg{action: "open group", err: msg.err})
}

// groupChanged leaves the screen once the group is deleted.
func (m *Model) groupChanged() {
	d := m.group.detail
	if d == nil {
		return
	}
	m.group.cursor.Clamp(len(d.Posts.Items()))
	if !d.State().Deleted {
		return
	}
	id := d.State().Group.ID
	m.closeGroup()
	if m.screen == screenGroup || m.screen == screenPost {
		m.closePost()
		m.screen = screenTabs
	}
	m.groups.Remove(func(g model.Group) bool { return g.ID == id })
	m.toasts.AddSuccess("Group deleted")
}

func (m *Model) handleGroupKey(msg tea.KeyMsg) tea.Cmd {
	d := m.group.detail
	if d == nil {
		m.screen = screenTabs
		return nil
	}
	posts := d.Posts.Items()
	if m.moveCursor(msg, &m.group.cursor, len(posts)) {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeGroup()
		m.screen = screenTabs
	case key.Matches(msg, m.keys.Refresh):
		return m.do("reload group", "", func(ctx context.Context) error {
			if err := d.Reload(ctx); err != nil {
				return err
			}
			return d.Posts.Refresh(ctx)
		})
	case key.Matches(msg, m.keys.Open):
		if len(posts) == 0 {
			return nil
		}
		m.group.cursor.Clamp(len(posts))
		return m.openPost(posts[m.group.cursor.Index], screenGroup, d.Posts)
	case key.Matches(msg, m.keys.Like):
		if len(posts) == 0 {
			return nil
		}
		m.group.cursor.Clamp(len(posts))
		return m.do("like", "", m.cardFor(posts[m.group.cursor.Index], d.Posts).ToggleLike)
	case key.Matches(msg, m.keys.Join):
		if d.IsMember() {
			m.toasts.AddStatus("You are already a member")
			return nil
		}
		return m.do("join group", "Joined group", d.Join)
	case key.Matches(msg, m.keys.Leave):
		if !d.IsMember() {
			m.toasts.AddStatus("You are not a member")
			return nil
		}
		if d.IsAdmin() {
			m.toasts.AddWarning(views.ErrAdminCannotLeave.Error())
			return nil
		}
		return m.do("leave group", "Left group", d.Leave)
	case key.Matches(msg, m.keys.DelPost):
		if !d.IsAdmin() {
			m.toasts.AddWarning("Only the group admin can delete the group")
			return nil
		}
		m.group.confirm = true
	}
	return nil
}

func (m *Model) deleteGroup() tea.Cmd {
	d := m.group.detail
	if d == nil {
		return nil
	}
	return m.do("delete group", "", d.Delete)
}

func (m Model) viewGroup(height int) string {
	d := m.group.detail
	if d == nil {
		return ""
	}
	st := d.State()
	if !st.Loaded {
		if st.Err != nil {
			return m.theme.Error.Render("Could not load group: "+api.Message(st.Err)) + "\n" +
				m.theme.Muted.Render("Press r to retry, Esc to go back.")
		}
		return m.spinner.View() + " Loading group..."
	}

	g := st.Group
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(g.Name) + "  " + m.theme.Badge.Render(g.Visibility()) + "\n")
	if g.Description != "" {
		b.WriteString(m.theme.Body.Render(g.Description) + "\n")
	}
	role := "not a member · J to join"
	switch {
	case d.IsAdmin():
		role = "admin · D to delete"
	case d.IsMember():
		role = "member · L to leave"
	}
	b.WriteString(m.theme.Muted.Render(fmt.Sprintf("%d members · admin %s · %s",
		g.MemberCount(), g.Admin.DisplayName(), role)) + "\n")
	if m.group.confirm {
		b.WriteString(m.theme.Warning.Render("Delete this group? Press y to confirm, any other key to cancel.") + "\n")
	}
	b.WriteString(m.theme.Section.Render("Posts") + "\n")

	used := strings.Count(b.String(), "\n")
	ps := d.Posts.State()
	if s, ok := m.viewListState(ps.Loading, ps.Loaded, ps.Err, len(ps.Items), "No posts in this group yet."); ok {
		b.WriteString(s)
		return b.String()
	}
	b.WriteString(m.listError(ps.Err))
	b.WriteString(m.renderPosts(ps.Items, m.group.cursor, height-used))
	return b.String()
}
