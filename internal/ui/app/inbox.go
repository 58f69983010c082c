// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// inbox.go - the conversation list and the live chat screen.

package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/ui/components"
	"github.com/nvakumar/ssfrontend/internal/util"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// chatScreen is the open conversation.
type chatScreen struct {
	window   *views.ChatWindow
	names    map[string]string
	viewport viewport.Model
	input    textinput.Model
	mounting bool
	sending  bool
	dirty    bool
}

func newChatInput() textinput.Model {
	in := textinput.New()
	in.Placeholder = "Type a message"
	in.Prompt = "> "
	in.CharLimit = 2000
	return in
}

// =============================================================================
// CONVERSATIONS TAB
// =============================================================================

func (m *Model) handleInboxKey(msg tea.KeyMsg) tea.Cmd {
	convs := m.convs.Items()
	if m.moveCursor(msg, &m.convCursor, len(convs)) || len(convs) == 0 {
		return nil
	}
	if key.Matches(msg, m.keys.Open) {
		m.convCursor.Clamp(len(convs))
		return m.openChat(convs[m.convCursor.Index])
	}
	return nil
}

func (m Model) viewInbox(height int) string {
	st := m.convs.State()
	if s, ok := m.viewListState(st.Loading, st.Loaded, st.Err, len(st.Items), "No conversations yet."); ok {
		return s
	}
	c := m.convCursor
	c.Clamp(len(st.Items))
	now := m.now()
	rows := make([]string, len(st.Items))
	for i, conv := range st.Items {
		marker := "  "
		if i == c.Index {
			marker = m.theme.Cursor.Render("> ")
		}
		row := marker + m.theme.Author.Render(conv.Title(m.session.UserID))
		if !conv.UpdatedAt.IsZero() {
			row += "  " + m.theme.Muted.Render(util.RelativeTime(conv.UpdatedAt, now))
		}
		if i == c.Index {
			row = m.theme.SelectedRow.Width(m.width).Render(row)
		}
		rows[i] = row
	}
	return m.listError(st.Err) + components.RenderList(rows, &c, height)
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

func (m *Model) openChat(conv model.Conversation) tea.Cmd {
	m.closeChat()
	w := views.NewChatWindow(conv, m.deps.API, m.deps.Session, m.deps.Connect, m.log)
	w.OnChange(changed[views.ChatState](m.events, viewChat))

	names := make(map[string]string, len(conv.Participants))
	for _, p := range conv.Participants {
		names[p.ID] = p.FullName
	}
	m.chat.window = w
	m.chat.names = names
	m.chat.mounting = true
	m.chat.dirty = true
	m.chat.viewport.SetContent("")
	m.screen = screenChat

	ctx := m.ctx
	return tea.Batch(m.chat.input.Focus(), func() tea.Msg {
		return chatMountedMsg{window: w, err: w.Mount(ctx)}
	})
}

// closeChat unmounts the open chat, which closes its realtime connection.
func (m *Model) closeChat() {
	if m.chat.window != nil {
		m.chat.window.Unmount()
	}
	m.chat.window = nil
	m.chat.names = nil
	m.chat.mounting, m.chat.sending = false, false
	m.chat.input.Reset()
	m.chat.input.Blur()
}

func (m *Model) handleChatMounted(msg chatMountedMsg) {
	if msg.window != m.chat.window {
		// Closed while mounting.
		msg.window.Unmount()
		return
	}
	m.chat.mounting = false
	m.chat.dirty = true
	if msg.err != nil {
		m.handleActionDone(actionDoneMsg{action: "open chat", err: msg.err})
		return
	}
	if st := msg.window.State(); !st.Connected && st.Err != nil {
		m.toasts.AddWarning("Live delivery unavailable: " + api.Message(st.Err))
	}
}

func (m *Model) handleChatKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEsc:
		m.closeChat()
		m.screen = screenTabs
		return nil
	case msg.Type == tea.KeyEnter:
		return m.sendChat()
	case msg.Type == tea.KeyUp:
		m.chat.viewport.LineUp(1)
		return nil
	case msg.Type == tea.KeyDown:
		m.chat.viewport.LineDown(1)
		return nil
	case key.Matches(msg, m.keys.PageUp):
		m.chat.viewport.HalfViewUp()
		return nil
	case key.Matches(msg, m.keys.PageDown):
		m.chat.viewport.HalfViewDown()
		return nil
	}
	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return cmd
}

// sendChat sends the input. The text stays in the input until the server
// stores the message.
func (m *Model) sendChat() tea.Cmd {
	w := m.chat.window
	text := m.chat.input.Value()
	if w == nil || m.chat.sending || strings.TrimSpace(text) == "" {
		return nil
	}
	m.chat.sending = true
	return m.do(actionSend, "", func(ctx context.Context) error {
		_, err := w.Send(ctx, text)
		return err
	})
}

func (m *Model) chatConnection() components.Connection {
	switch {
	case m.chat.window == nil:
		return components.ConnNone
	case m.chat.mounting:
		return components.ConnConnecting
	case m.chat.window.State().Connected:
		return components.ConnLive
	default:
		return components.ConnOffline
	}
}

// renderChat refreshes the message viewport, following new messages unless
// the user scrolled up.
func (m *Model) renderChat() {
	w := m.chat.window
	if w == nil {
		return
	}
	st := w.State()
	if !st.HistoryLoaded && len(st.Messages) == 0 {
		m.chat.viewport.SetContent(m.theme.Muted.Render("Loading messages..."))
		return
	}
	if len(st.Messages) == 0 {
		m.chat.viewport.SetContent(m.theme.Muted.Render("No messages yet. Say hello."))
		return
	}

	follow := m.chat.viewport.AtBottom() || m.chat.viewport.TotalLineCount() <= m.chat.viewport.Height
	lines := make([]string, len(st.Messages))
	for i, msg := range st.Messages {
		lines[i] = components.RenderMessage(m.theme, msg, m.session.UserID, m.chat.names, m.showTimes, m.width)
	}
	m.chat.viewport.SetContent(strings.Join(lines, "\n"))
	if follow {
		m.chat.viewport.GotoBottom()
	}
}

func (m Model) viewChat() string {
	w := m.chat.window
	if w == nil {
		return ""
	}
	title := m.theme.Title.Render("Chat with " + w.Conversation().Title(m.session.UserID))
	conn := m.chatConnection()
	title += "  " + m.theme.Muted.Render(conn.Icon()+" "+conn.String())

	box := m.theme.InputBoxFocus
	if m.chat.sending {
		box = m.theme.InputBox
	}
	input := box.Width(max(10, m.width-2)).Render(m.chat.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, title, m.chat.viewport.View(), input)
}
