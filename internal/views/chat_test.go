// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/realtime"
	"github.com/nvakumar/ssfrontend/internal/testutil"
)

func aliceBob() model.Conversation {
	return model.Conversation{
		ID: testutil.ConvAliceBob,
		Participants: []model.Participant{
			{ID: testutil.Alice, FullName: "Alice Archer"},
			{ID: testutil.Bob, FullName: "Bob Barker"},
		},
	}
}

func mountedChat(t *testing.T, e *env, ch *fakeChannel) *ChatWindow {
	t.Helper()
	w := NewChatWindow(aliceBob(), e.client, e.sess, ch.connector(), e.log)
	require.NoError(t, w.Mount(context.Background()))
	t.Cleanup(w.Unmount)
	return w
}

// =============================================================================
// MOUNT AND ARRIVAL TESTS
// =============================================================================

func TestChatWindow_MountLoadsHistoryAndRegisters(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ch := newFakeChannel()
	w := mountedChat(t, e, ch)

	s := w.State()
	assert.True(t, s.HistoryLoaded)
	assert.True(t, s.Connected)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "Hey Alice", s.Messages[0].Text)

	ch.mu.Lock()
	assert.Equal(t, []string{testutil.Alice}, ch.users)
	ch.mu.Unlock()
}

func TestChatWindow_ArrivalFiltering(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ch := newFakeChannel()
	w := mountedChat(t, e, ch)

	ch.arrivals <- realtime.Arrival{SenderID: testutil.Carol, Text: "wrong chat", ReceivedAt: time.Now()}
	ch.arrivals <- realtime.Arrival{SenderID: testutil.Bob, Text: "you there?", ReceivedAt: time.Now()}

	waitFor(t, "arrival", func() bool { return len(w.Messages()) == 3 })

	// Arrivals are handled in order, so the Carol frame is already dropped.
	msgs := w.Messages()
	require.Len(t, msgs, 3)
	last := msgs[2]
	assert.Equal(t, testutil.Bob, last.SenderID)
	assert.Equal(t, "you there?", last.Text)
	assert.True(t, last.ID.IsLocal())
	assert.False(t, last.ID.IsZero())
}

func TestChatWindow_ArrivalDuringHistoryKeptAfter(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ch := newFakeChannel()
	release := e.b.HoldNext("GET /api/messages/{conversationId}")

	w := NewChatWindow(aliceBob(), e.client, e.sess, ch.connector(), e.log)
	defer w.Unmount()

	mounted := make(chan error, 1)
	go func() { mounted <- w.Mount(context.Background()) }()

	waitFor(t, "history request", func() bool { return e.b.Calls("GET /api/messages/{conversationId}") == 1 })
	ch.arrivals <- realtime.Arrival{SenderID: testutil.Bob, Text: "early", ReceivedAt: time.Now()}
	waitFor(t, "early arrival", func() bool { return len(w.Messages()) == 1 })

	release()
	require.NoError(t, <-mounted)

	msgs := w.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Hey Alice", msgs[0].Text)
	assert.Equal(t, "early", msgs[2].Text)
}

func TestChatWindow_UnmountClosesOnce(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ch := newFakeChannel()
	w := NewChatWindow(aliceBob(), e.client, e.sess, ch.connector(), e.log)
	require.NoError(t, w.Mount(context.Background()))

	w.Unmount()
	w.Unmount()

	if n := ch.closeCount(); n != 1 {
		t.Errorf("channel closed %d times, want 1", n)
	}
	assert.False(t, w.State().Connected)

	_, err := w.Send(context.Background(), "after")
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestChatWindow_RequiresSession(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ch := newFakeChannel()
	w := NewChatWindow(aliceBob(), e.client, loggedOut, ch.connector(), e.log)

	assert.ErrorIs(t, w.Mount(context.Background()), ErrNotLoggedIn)
	assert.Equal(t, 0, ch.closeCount())
}

func TestChatWindow_ConnectFailureStillLoadsHistory(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	connect := func(context.Context) (RealtimeChannel, error) { return nil, errors.New("refused") }
	w := NewChatWindow(aliceBob(), e.client, e.sess, connect, e.log)
	defer w.Unmount()

	require.NoError(t, w.Mount(context.Background()))
	s := w.State()
	assert.Len(t, s.Messages, 2)
	assert.False(t, s.Connected)
	assert.Error(t, s.Err)
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestChatWindow_Send(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ch := newFakeChannel()
	w := mountedChat(t, e, ch)

	msg, err := w.Send(context.Background(), "Lunch?")
	require.NoError(t, err)
	assert.False(t, msg.ID.IsLocal())

	msgs := w.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, msg.ID, msgs[2].ID)

	ch.mu.Lock()
	require.Len(t, ch.sent, 1)
	assert.Equal(t, testutil.SentMessage{SenderID: testutil.Alice, ReceiverID: testutil.Bob, Text: "Lunch?"}, ch.sent[0])
	ch.mu.Unlock()

	assert.Len(t, e.b.Messages(testutil.ConvAliceBob), 3)
}

func TestChatWindow_SendFailureLeavesList(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ch := newFakeChannel()
	w := mountedChat(t, e, ch)
	e.b.FailNext("POST /api/messages", http.StatusInternalServerError, "db down")

	_, err := w.Send(context.Background(), "lost")
	require.Error(t, err)
	assert.Len(t, w.Messages(), 2)

	ch.mu.Lock()
	assert.Len(t, ch.sent, 1, "realtime relay happens before the store call")
	ch.mu.Unlock()
}

func TestChatWindow_SendEmpty(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	w := mountedChat(t, e, newFakeChannel())

	_, err := w.Send(context.Background(), " \n")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, e.b.Calls("POST /api/messages"))
}

// =============================================================================
// GATEWAY TESTS
// =============================================================================

func TestChatWindow_AgainstGateway(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	connect := RealtimeConnector(realtime.Config{URL: e.b.WSURL(), HandshakeTimeout: time.Second}, e.b.Tokens(testutil.Alice), e.log)
	w := NewChatWindow(aliceBob(), e.client, e.sess, connect, e.log)
	require.NoError(t, w.Mount(context.Background()))

	require.True(t, e.b.Gateway.WaitForUser(testutil.Alice, waitTimeout))
	require.True(t, e.b.Gateway.Push(testutil.Alice, testutil.Carol, "spam"))
	require.True(t, e.b.Gateway.Push(testutil.Alice, testutil.Bob, "ping"))
	waitFor(t, "gateway arrival", func() bool { return len(w.Messages()) == 3 })
	assert.Equal(t, "ping", w.Messages()[2].Text)

	_, err := w.Send(context.Background(), "pong")
	require.NoError(t, err)
	waitFor(t, "relay", func() bool { return len(e.b.Gateway.Sent()) == 1 })
	assert.Equal(t, testutil.Bob, e.b.Gateway.Sent()[0].ReceiverID)

	w.Unmount()
	assert.True(t, testutil.WaitFor(waitTimeout, func() bool { return e.b.Gateway.Closed() == 1 }))
	assert.Equal(t, 1, e.b.Gateway.Opened())
}
