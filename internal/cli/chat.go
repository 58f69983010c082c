// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - conversation listing and the interactive chat REPL.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"

	"github.com/nvakumar/ssfrontend/internal/config"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/util"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ConversationData is one row of "conversations --json".
type ConversationData struct {
	ID        string    `json:"id"`
	With      string    `json:"with"`
	WithID    string    `json:"with_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// HandleConversations lists the signed-in user's conversations.
func HandleConversations(ctx context.Context, a *App, _ Args) error {
	convs, err := a.conversations(ctx)
	if err != nil {
		return err
	}
	selfID := a.Session.UserID()

	rows := make([]ConversationData, 0, len(convs))
	for _, c := range convs {
		row := ConversationData{ID: c.ID, With: c.Title(selfID), UpdatedAt: c.UpdatedAt}
		if other, ok := c.Other(selfID); ok {
			row.WithID = other.ID
		}
		rows = append(rows, row)
	}

	return a.emit("conversations", rows, func() {
		if len(rows) == 0 {
			a.printf("No conversations yet.\n")
			return
		}
		now := a.now()
		t := newTable("ID", "WITH", "UPDATED").limit(1, 32)
		for _, r := range rows {
			t.add(r.ID, r.With, util.RelativeTime(r.UpdatedAt, now))
		}
		t.render(a.out)
	})
}

func (a *App) conversations(ctx context.Context) ([]model.Conversation, error) {
	list := views.NewConversations(a.API, a.Session, a.Log)
	if err := list.Mount(ctx); err != nil {
		return nil, err
	}
	defer list.Unmount()
	return list.Items(), nil
}

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader reads one line of chat input.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatREPL provides line editing and persistent input history for chat.
type ChatREPL struct {
	line        *liner.State
	historyFile string
}

// NewChatREPL starts liner and loads the input history from the config
// directory.
func NewChatREPL() *ChatREPL {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &ChatREPL{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// ReadInput reads a line, adding non-empty input to the history.
func (r *ChatREPL) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (r *ChatREPL) Close() {
	if _, err := config.EnsureDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// plainReader reads lines from a non-terminal input such as a pipe.
type plainReader struct {
	r *bufio.Reader
}

func (p plainReader) ReadInput(string) (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (plainReader) Close() {}

// =============================================================================
// CHAT
// =============================================================================

// chatPrinter writes each message once, in list order, after the history has
// loaded.
type chatPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	selfID  string
	names   map[string]string
	times   bool
	printed int
}

func newChatPrinter(w io.Writer, conv model.Conversation, selfID string, times bool) *chatPrinter {
	names := make(map[string]string, len(conv.Participants))
	for _, p := range conv.Participants {
		names[p.ID] = p.FullName
	}
	return &chatPrinter{w: w, selfID: selfID, names: names, times: times}
}

func (p *chatPrinter) update(s views.ChatState) {
	if !s.HistoryLoaded {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed > len(s.Messages) {
		p.printed = 0
	}
	for _, m := range s.Messages[p.printed:] {
		p.write(m)
	}
	p.printed = len(s.Messages)
}

// replay prints every message again.
func (p *chatPrinter) replay(msgs []model.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		p.write(m)
	}
	p.printed = len(msgs)
}

func (p *chatPrinter) write(m model.Message) {
	name := p.names[m.SenderID]
	if name == "" {
		name = m.SenderID
	}
	style := ValueStyle
	if m.IsFrom(p.selfID) {
		name, style = "you", SelfStyle
	}
	prefix := ""
	if p.times && !m.CreatedAt.IsZero() {
		prefix = DimStyle.Render(m.CreatedAt.Local().Format("15:04")) + " "
	}
	fmt.Fprintf(p.w, "\r%s%s %s\n", prefix, style.Render(name+":"), m.Text)
}

const chatHelp = `Commands:
  /history   Show the whole conversation again
  /quit      Leave the chat (also /exit, Ctrl+D)
Anything else is sent as a message.
`

// HandleChat opens a live chat on a conversation. Messages from the other
// participant appear as they arrive; each line typed is sent.
func HandleChat(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)
	convID := p.Positional(0)
	if convID == "" {
		return ErrMissingArgument("conversation id", "ssfrontend chat <conversationId> (see: ssfrontend conversations)")
	}
	selfID, err := a.requireSession()
	if err != nil {
		return err
	}

	convs, err := a.conversations(ctx)
	if err != nil {
		return err
	}
	var conv model.Conversation
	for _, c := range convs {
		if c.ID == convID {
			conv = c
			break
		}
	}
	if conv.ID == "" {
		return &NotFoundError{Resource: "conversation", ID: convID}
	}

	var input lineReader
	if a.stdinTTY {
		input = NewChatREPL()
	} else {
		input = plainReader{r: a.in}
	}
	defer input.Close()

	return runChat(ctx, a, conv, selfID, input)
}

func runChat(ctx context.Context, a *App, conv model.Conversation, selfID string, input lineReader) error {
	window := views.NewChatWindow(conv, a.API, a.Session, a.Connect, a.Log)
	printer := newChatPrinter(a.out, conv, selfID, a.Config.UI.ShowTimestamps)
	window.OnChange(printer.update)

	a.printf("%s\n", TitleStyle.Render("Chat with "+conv.Title(selfID)))
	if err := window.Mount(ctx); err != nil {
		window.Unmount()
		return err
	}
	defer window.Unmount()

	st := window.State()
	if st.Err != nil && !st.Connected {
		a.notef("%s live delivery unavailable: %v\n", WarningStyle.Render("[WARN]"), st.Err)
	}
	a.notef("%s\n", DimStyle.Render("Type /help for commands."))

	for {
		line, err := input.ReadInput("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "/quit", "/exit", "/q":
			return nil
		case "/history":
			printer.replay(window.Messages())
			continue
		case "/help", "/?":
			a.printf("%s", chatHelp)
			continue
		}

		if _, err := window.Send(ctx, line); err != nil {
			fmt.Fprintf(a.errOut, "%s %s\n", ErrorStyle.Render("[ERROR]"), err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
