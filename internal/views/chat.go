// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/logging"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/realtime"
)

// ChatState is a snapshot of a ChatWindow.
type ChatState struct {
	Messages      []model.Message
	HistoryLoaded bool
	Connected     bool
	Err           error
}

// ChatWindow shows one conversation: stored history, realtime arrivals and
// sent messages.
type ChatWindow struct {
	conv    model.Conversation
	svc     ChatService
	session Session
	connect Connector
	log     *zap.SugaredLogger

	mu       sync.Mutex
	state    ChatState
	mounted  bool
	gen      uint64
	cancel   context.CancelFunc
	channel  RealtimeChannel
	loopDone chan struct{}
	onChange func(ChatState)
}

// NewChatWindow returns an unmounted chat view for conv. connect may be nil,
// in which case the view works without realtime delivery.
func NewChatWindow(conv model.Conversation, svc ChatService, sess Session, connect Connector, log *zap.SugaredLogger) *ChatWindow {
	return &ChatWindow{
		conv:    conv,
		svc:     svc,
		session: sess,
		connect: connect,
		log:     logging.OrNop(log).With("conversation", conv.ID),
	}
}

// Conversation returns the conversation shown.
func (w *ChatWindow) Conversation() model.Conversation { return w.conv }

// OnChange registers fn for state changes. fn runs outside the lock.
func (w *ChatWindow) OnChange(fn func(ChatState)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// State returns a snapshot.
func (w *ChatWindow) State() ChatState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Messages returns the message list.
func (w *ChatWindow) Messages() []model.Message { return w.State().Messages }

func (w *ChatWindow) snapshotLocked() ChatState {
	s := w.state
	s.Messages = append([]model.Message(nil), w.state.Messages...)
	return s
}

func (w *ChatWindow) notifyLocked() {
	s, fn := w.snapshotLocked(), w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Mount opens the realtime channel, registers the signed-in user, starts
// delivering arrivals and loads the history. A realtime failure is logged and
// recorded in the state; the history still loads. The returned error is the
// history error, if any.
func (w *ChatWindow) Mount(parent context.Context) error {
	sess, ok := w.session.Current()
	if !ok {
		return ErrNotLoggedIn
	}

	w.mu.Lock()
	if w.mounted {
		w.mu.Unlock()
		return nil
	}
	scope, cancel := context.WithCancel(parent)
	w.mounted = true
	w.gen++
	gen := w.gen
	w.cancel = cancel
	w.state = ChatState{}
	w.mu.Unlock()

	if w.connect != nil {
		w.attach(scope, gen, sess.UserID)
	}
	return w.loadHistory(scope, gen)
}

func (w *ChatWindow) attach(ctx context.Context, gen uint64, selfID string) {
	ch, err := w.connect(ctx)
	if err != nil {
		w.log.Warnw("realtime connect failed", "error", err)
		w.mu.Lock()
		if w.gen == gen {
			w.state.Err = fmt.Errorf("realtime: %w", err)
			w.notifyLocked()
			return
		}
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	if w.gen != gen || !w.mounted {
		// Unmounted while dialing.
		w.mu.Unlock()
		_ = ch.Close()
		return
	}
	w.channel = ch
	w.loopDone = make(chan struct{})
	w.state.Connected = true
	done := w.loopDone
	w.notifyLocked()

	if err := ch.AddUser(selfID); err != nil {
		w.log.Warnw("realtime addUser failed", "error", err)
	}
	go w.arrivalLoop(ch, gen, done)
}

func (w *ChatWindow) arrivalLoop(ch RealtimeChannel, gen uint64, done chan struct{}) {
	defer close(done)
	for a := range ch.Arrivals() {
		w.onArrival(gen, a)
	}
	w.mu.Lock()
	if w.gen == gen && w.mounted {
		w.state.Connected = false
		w.notifyLocked()
		return
	}
	w.mu.Unlock()
}

// onArrival appends a Local message when the sender takes part in the
// conversation. Everything else is dropped.
func (w *ChatWindow) onArrival(gen uint64, a realtime.Arrival) {
	if !w.conv.HasParticipant(a.SenderID) {
		w.log.Debugw("ignoring arrival from non-participant", "sender", a.SenderID)
		return
	}
	w.mu.Lock()
	if w.gen != gen || !w.mounted {
		w.mu.Unlock()
		return
	}
	w.state.Messages = append(w.state.Messages, model.NewArrival(a.SenderID, a.Text, a.ReceivedAt))
	w.notifyLocked()
}

// loadHistory fetches stored messages. Anything appended while it ran stays
// after the history.
func (w *ChatWindow) loadHistory(ctx context.Context, gen uint64) error {
	history, err := w.svc.ListMessages(ctx, w.conv.ID)

	w.mu.Lock()
	if w.gen != gen || !w.mounted {
		w.mu.Unlock()
		return err
	}
	if err != nil {
		w.log.Warnw("failed to load messages", "error", err)
		w.state.Err = err
		w.notifyLocked()
		return err
	}
	w.state.Messages = append(history, w.state.Messages...)
	w.state.HistoryLoaded = true
	w.notifyLocked()
	return nil
}

// Unmount cancels the view's scope and closes the realtime channel. Calling
// it again does nothing.
func (w *ChatWindow) Unmount() {
	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return
	}
	w.mounted = false
	w.gen++
	ch, done := w.channel, w.loopDone
	w.channel, w.loopDone = nil, nil
	w.state.Connected = false
	cancel := w.cancel
	w.mu.Unlock()

	cancel()
	if ch != nil {
		if err := ch.Close(); err != nil {
			w.log.Debugw("realtime close", "error", err)
		}
		<-done
	}
}

// =============================================================================
// SENDING
// =============================================================================

// Send relays text over the realtime channel and stores it through the API.
// The realtime relay is best effort. The stored message is appended only
// when the API call succeeds; on failure the list is unchanged and the error
// is returned.
func (w *ChatWindow) Send(ctx context.Context, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, ErrEmptyMessage
	}
	sess, ok := w.session.Current()
	if !ok {
		return model.Message{}, ErrNotLoggedIn
	}
	other, ok := w.conv.Other(sess.UserID)
	if !ok {
		return model.Message{}, ErrNoRecipient
	}

	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return model.Message{}, ErrNotMounted
	}
	gen, ch := w.gen, w.channel
	w.mu.Unlock()

	if ch != nil {
		if err := ch.SendMessage(sess.UserID, other.ID, text); err != nil {
			w.log.Warnw("realtime send failed", "error", err)
		}
	}

	msg, err := w.svc.CreateMessage(ctx, api.NewMessage{
		ConversationID: w.conv.ID,
		SenderID:       sess.UserID,
		ReceiverID:     other.ID,
		Text:           text,
	})
	if err != nil {
		w.log.Warnw("failed to store message", "error", err)
		return model.Message{}, fmt.Errorf("send message: %w", err)
	}

	w.mu.Lock()
	if w.gen != gen || !w.mounted {
		w.mu.Unlock()
		return msg, nil
	}
	w.state.Messages = append(w.state.Messages, msg)
	w.notifyLocked()
	return msg, nil
}
