// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/realtime"
	"github.com/nvakumar/ssfrontend/internal/testutil"
)

const waitTimeout = 2 * time.Second

// fakeSession is a fixed session.
type fakeSession struct {
	s  model.Session
	ok bool
}

func (f fakeSession) Current() (model.Session, bool) { return f.s, f.ok }

func loggedIn(userID string) fakeSession {
	return fakeSession{s: model.Session{UserID: userID, Token: "t"}, ok: true}
}

var loggedOut = fakeSession{}

// env is a backend plus a client authenticated as one user.
type env struct {
	b      *testutil.Backend
	client *api.Client
	sess   fakeSession
	log    *zap.SugaredLogger
}

func newEnv(t *testing.T, userID string) *env {
	t.Helper()
	b := testutil.NewBackend(t)
	log := zaptest.NewLogger(t).Sugar()
	return &env{
		b:      b,
		client: api.NewClient(&api.ClientConfig{BaseURL: b.URL(), Timeout: 5 * time.Second}, b.Tokens(userID), log),
		sess:   loggedIn(userID),
		log:    log,
	}
}

// as returns a client and session for another user on the same backend.
func (e *env) as(userID string) (*api.Client, fakeSession) {
	return api.NewClient(&api.ClientConfig{BaseURL: e.b.URL()}, e.b.Tokens(userID), e.log), loggedIn(userID)
}

// fakeChannel is an in-memory RealtimeChannel.
type fakeChannel struct {
	arrivals chan realtime.Arrival

	mu     sync.Mutex
	users  []string
	sent   []testutil.SentMessage
	closes int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{arrivals: make(chan realtime.Arrival, 8)}
}

func (f *fakeChannel) AddUser(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return nil
}

func (f *fakeChannel) SendMessage(senderID, receiverID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closes > 0 {
		return realtime.ErrClosed
	}
	f.sent = append(f.sent, testutil.SentMessage{SenderID: senderID, ReceiverID: receiverID, Text: text})
	return nil
}

func (f *fakeChannel) Arrivals() <-chan realtime.Arrival { return f.arrivals }

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	if f.closes == 1 {
		close(f.arrivals)
	}
	return nil
}

func (f *fakeChannel) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *fakeChannel) connector() Connector {
	return func(context.Context) (RealtimeChannel, error) { return f, nil }
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	if !testutil.WaitFor(waitTimeout, cond) {
		t.Fatalf("timed out waiting for %s", what)
	}
}
