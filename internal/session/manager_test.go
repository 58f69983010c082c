// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/storage"
)

type fakeAuth struct {
	user  model.User
	token string
	err   error
	calls int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (model.User, string, error) {
	f.calls++
	return f.user, f.token, f.err
}

func jwtExpiring(t *testing.T, at time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1", "exp": at.Unix()}).
		SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func newManager(t *testing.T) (*Manager, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewManager(store, zaptest.NewLogger(t).Sugar()), store
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

func TestManager_LoginPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	var events []bool
	m.Subscribe(func(s model.Session, active bool) { events = append(events, active) })

	auth := &fakeAuth{user: model.User{ID: "u1", FullName: "Ann"}, token: "tok"}
	require.NoError(t, m.Login(ctx, auth, " ann@example.com ", "pw"))

	s, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "Ann", s.DisplayName)

	tok, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	stored, err := store.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", stored)
	assert.Equal(t, []bool{true}, events)

	require.NoError(t, m.Logout(ctx))
	_, ok = m.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []bool{true, false}, events)

	_, err = m.Token()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_LoginFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	auth := &fakeAuth{err: errors.New("invalid credentials")}
	err := m.Login(ctx, auth, "a@b.c", "bad")
	require.Error(t, err)

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestManager_LoginValidatesInput(t *testing.T) {
	m, _ := newManager(t)
	auth := &fakeAuth{}

	assert.ErrorIs(t, m.Login(context.Background(), auth, "  ", "pw"), ErrMissingCredentials)
	assert.ErrorIs(t, m.Login(context.Background(), auth, "a@b.c", ""), ErrMissingCredentials)
	assert.Equal(t, 0, auth.calls, "no request for invalid input")
}

// =============================================================================
// HYDRATE
// =============================================================================

func TestManager_HydrateRestoresSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	first := NewManager(store, nil)
	require.NoError(t, first.Login(ctx, &fakeAuth{user: model.User{ID: "u1", FullName: "Ann"}, token: "tok"}, "a@b.c", "pw"))

	second := NewManager(store, nil)
	require.NoError(t, second.Hydrate(ctx))

	s, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "tok", s.Token)
}

func TestManager_HydrateEmptyStore(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.Hydrate(context.Background()))
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestManager_HydrateDiscardsExpiredToken(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	require.NoError(t, store.Set(ctx, storage.KeyUser, `{"userId":"u1","displayName":"Ann"}`))
	require.NoError(t, store.Set(ctx, storage.KeyToken, jwtExpiring(t, time.Now().Add(-time.Hour))))

	require.NoError(t, m.Hydrate(ctx))
	_, ok := m.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len(), "expired credentials must be cleared")
}

func TestManager_HydrateDiscardsCorruptUser(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	require.NoError(t, store.Set(ctx, storage.KeyUser, `{broken`))
	require.NoError(t, store.Set(ctx, storage.KeyToken, "tok"))

	require.NoError(t, m.Hydrate(ctx))
	_, ok := m.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestManager_HydrateAfterExternalLogout(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	require.NoError(t, m.Login(ctx, &fakeAuth{user: model.User{ID: "u1"}, token: "tok"}, "a@b.c", "pw"))

	var loggedOut bool
	m.Subscribe(func(_ model.Session, active bool) { loggedOut = !active })

	require.NoError(t, storage.Clear(ctx, store))
	require.NoError(t, m.Hydrate(ctx))

	assert.True(t, loggedOut)
}

// =============================================================================
// TOKEN EXPIRY
// =============================================================================

func TestManager_TokenExpiresWhileActive(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, m.Login(ctx, &fakeAuth{user: model.User{ID: "u1"}, token: jwtExpiring(t, exp)}, "a@b.c", "pw"))

	_, err := m.Token()
	require.NoError(t, err)

	m.now = func() time.Time { return exp.Add(time.Second) }
	_, err = m.Token()
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestManager_Unsubscribe(t *testing.T) {
	m, _ := newManager(t)
	calls := 0
	unsub := m.Subscribe(func(model.Session, bool) { calls++ })
	unsub()

	require.NoError(t, m.Login(context.Background(), &fakeAuth{user: model.User{ID: "u"}, token: "t"}, "a@b.c", "pw"))
	assert.Equal(t, 0, calls)
}
