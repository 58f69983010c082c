// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// feed.go - the feed tab and the post detail screen.

package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/ui/components"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// Action names that change screen state when they succeed.
const (
	actionComment = "comment"
	actionSend    = "send"
)

// inputHeight is the height of a bordered text input.
const inputHeight = 3

// postScreen is the open post.
type postScreen struct {
	card     *views.PostCard
	from     screen
	comment  components.Cursor
	input    textinput.Model
	typing   bool
	confirm  bool
	viewport viewport.Model
	dirty    bool
}

func newCommentInput() textinput.Model {
	in := textinput.New()
	in.Placeholder = "Write a comment"
	in.Prompt = "> "
	in.CharLimit = 1000
	return in
}

// =============================================================================
// FEED TAB
// =============================================================================

func (m *Model) handleFeedKey(msg tea.KeyMsg) tea.Cmd {
	posts := m.feed.Items()
	if m.moveCursor(msg, &m.feedCursor, len(posts)) || len(posts) == 0 {
		return nil
	}
	m.feedCursor.Clamp(len(posts))
	p := posts[m.feedCursor.Index]

	switch {
	case key.Matches(msg, m.keys.Open):
		return m.openPost(p, screenTabs)
	case key.Matches(msg, m.keys.Like):
		return m.do("like", "", m.cardFor(p).ToggleLike)
	}
	return nil
}

// cardFor returns the controller for p, creating a fresh one unless the
// current card has a like in flight or is open. Changes are copied into the
// feed and into every list in also.
func (m *Model) cardFor(p model.Post, also ...*views.ListView[model.Post]) *views.PostCard {
	if c, ok := m.cards[p.ID]; ok && (c.Busy() || c == m.post.card) {
		return c
	}
	c := m.feed.Card(p)
	feed, events := m.feed, m.events
	c.OnChange(func(updated model.Post) {
		feed.Replace(updated)
		for _, l := range also {
			replacePost(l, updated)
		}
		events.post(viewChangedMsg{view: viewPost})
	})
	m.cards[p.ID] = c
	return c
}

func replacePost(l *views.ListView[model.Post], p model.Post) {
	l.Update(func(items []model.Post) []model.Post {
		for i := range items {
			if items[i].ID == p.ID {
				items[i] = p
			}
		}
		return items
	})
}

func (m Model) viewFeed(height int) string {
	st := m.feed.State()
	if s, ok := m.viewListState(st.Loading, st.Loaded, st.Err, len(st.Items), "No posts yet."); ok {
		return s
	}
	return m.listError(st.Err) + m.renderPosts(st.Items, m.feedCursor, height)
}

// renderPosts draws two-line post rows. c is a copy so View stays pure.
func (m Model) renderPosts(posts []model.Post, c components.Cursor, height int) string {
	rows := make([]string, len(posts))
	c.Clamp(len(posts))
	for i, p := range posts {
		busy := false
		if card, ok := m.cards[p.ID]; ok {
			busy = card.Busy()
		}
		rows[i] = components.RenderPostRow(m.theme, p, m.session.UserID, m.now(), m.width, i == c.Index, busy)
	}
	return components.RenderList(rows, &c, max(1, height/2))
}

// =============================================================================
// POST SCREEN
// =============================================================================

func (m *Model) openPost(p model.Post, from screen, also ...*views.ListView[model.Post]) tea.Cmd {
	m.post.card = m.cardFor(p, also...)
	m.post.from = from
	m.post.comment = components.Cursor{}
	m.post.typing, m.post.confirm = false, false
	m.post.viewport.GotoTop()
	m.post.dirty = true
	m.screen = screenPost
	return nil
}

// closePost drops the post screen state without changing screens.
func (m *Model) closePost() {
	m.post.card = nil
	m.post.typing, m.post.confirm = false, false
	m.post.input.Reset()
	m.post.input.Blur()
}

func (m *Model) leavePost() {
	from := m.post.from
	m.closePost()
	if from == screenGroup && m.group.detail == nil {
		from = screenTabs
	}
	m.screen = from
}

func (m *Model) renderPost() {
	if m.post.card == nil {
		return
	}
	p := m.post.card.Post()
	m.post.comment.Clamp(len(p.Comments))
	selected := -1
	if len(p.Comments) > 0 {
		selected = m.post.comment.Index
	}
	desc := m.md.Render(p.Description, m.width-4)
	m.post.viewport.SetContent(components.RenderPostDetail(
		m.theme, p, m.session.UserID, desc, m.now(), m.width, selected, m.post.card.Busy()))
}

func (m *Model) handlePostKey(msg tea.KeyMsg) tea.Cmd {
	card := m.post.card
	if card == nil {
		m.leavePost()
		return nil
	}
	p := card.Post()

	switch {
	case key.Matches(msg, m.keys.Back):
		m.leavePost()
	case key.Matches(msg, m.keys.Up):
		m.post.comment.Move(-1, len(p.Comments))
		m.post.dirty = true
	case key.Matches(msg, m.keys.Down):
		m.post.comment.Move(1, len(p.Comments))
		m.post.dirty = true
	case key.Matches(msg, m.keys.PageUp):
		m.post.viewport.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.post.viewport.HalfViewDown()
	case key.Matches(msg, m.keys.Like):
		return m.do("like", "", card.ToggleLike)
	case key.Matches(msg, m.keys.Comment):
		m.post.typing = true
		return m.post.input.Focus()
	case key.Matches(msg, m.keys.Delete):
		if len(p.Comments) == 0 {
			return nil
		}
		m.post.comment.Clamp(len(p.Comments))
		cm := p.Comments[m.post.comment.Index]
		if !card.CanDeleteComment(cm) {
			m.toasts.AddWarning("You can only delete your own comments or comments on your post")
			return nil
		}
		id := cm.ID
		return m.do("delete comment", "Comment deleted", func(ctx context.Context) error {
			return card.DeleteComment(ctx, id)
		})
	case key.Matches(msg, m.keys.DelPost):
		if !card.CanModify() {
			m.toasts.AddWarning("Only the author or the group admin can delete this post")
			return nil
		}
		m.post.confirm = true
	}
	return nil
}

func (m *Model) handleCommentKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.post.typing = false
		m.post.input.Blur()
		return nil
	case tea.KeyEnter:
		text := m.post.input.Value()
		if strings.TrimSpace(text) == "" {
			m.toasts.AddWarning(views.ErrEmptyComment.Error())
			return nil
		}
		card := m.post.card
		return m.do(actionComment, "Comment posted", func(ctx context.Context) error {
			return card.SubmitComment(ctx, text)
		})
	}
	var cmd tea.Cmd
	m.post.input, cmd = m.post.input.Update(msg)
	return cmd
}

// handleConfirmKey resolves a pending delete. Any key but y cancels.
func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	yes := key.Matches(msg, m.keys.Confirm)
	switch {
	case m.post.confirm:
		m.post.confirm = false
		if yes {
			return m.deletePost()
		}
	case m.group.confirm:
		m.group.confirm = false
		if yes {
			return m.deleteGroup()
		}
	}
	return nil
}

func (m *Model) deletePost() tea.Cmd {
	card, feed, ctx := m.post.card, m.feed, m.ctx
	if card == nil {
		return nil
	}
	var groupPosts *views.ListView[model.Post]
	if m.group.detail != nil {
		groupPosts = m.group.detail.Posts
	}
	return func() tea.Msg {
		id := card.ID()
		err := feed.Delete(ctx, card)
		if err == nil && groupPosts != nil {
			groupPosts.Remove(func(p model.Post) bool { return p.ID == id })
		}
		return postDeletedMsg{postID: id, err: err}
	}
}

func (m *Model) handlePostDeleted(msg postDeletedMsg) {
	if msg.err != nil {
		m.log.Warnw("post delete failed", "post", msg.postID, "error", msg.err)
		m.handleActionDone(actionDoneMsg{action: "delete post", err: msg.err})
		return
	}
	delete(m.cards, msg.postID)
	m.toasts.AddSuccess("Post deleted")
	if m.post.card != nil && m.post.card.ID() == msg.postID {
		m.leavePost()
	}
}

func (m Model) viewPost() string {
	var footer string
	switch {
	case m.post.confirm:
		footer = m.theme.Warning.Render("Delete this post? Press y to confirm, any other key to cancel.")
	case m.post.typing:
		footer = m.theme.InputBoxFocus.Width(max(10, m.width-2)).Render(m.post.input.View())
	default:
		footer = m.theme.Muted.Render("l like · c comment · d delete comment · D delete post · Esc back")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.post.viewport.View(), footer)
}
