// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvakumar/ssfrontend/internal/testutil"
)

func TestGroupDetail_JoinAndLeave(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ctx := context.Background()
	g := NewGroupDetail(testutil.GroupFilm, e.client, e.sess, e.log)
	require.NoError(t, g.Mount(ctx))
	defer g.Unmount()

	assert.False(t, g.IsMember())
	assert.Len(t, g.Posts.Items(), 1)

	require.NoError(t, g.Join(ctx))
	assert.True(t, g.IsMember(), "state is refetched after join")

	require.NoError(t, g.Leave(ctx))
	assert.False(t, g.IsMember())
}

func TestGroupDetail_AdminRules(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ctx := context.Background()

	alice := NewGroupDetail(testutil.GroupFilm, e.client, e.sess, e.log)
	require.NoError(t, alice.Mount(ctx))
	defer alice.Unmount()
	assert.ErrorIs(t, alice.RemoveMember(ctx, testutil.Carol), ErrForbidden)
	assert.ErrorIs(t, alice.Delete(ctx), ErrForbidden)

	bobClient, bobSess := e.as(testutil.Bob)
	bob := NewGroupDetail(testutil.GroupFilm, bobClient, bobSess, e.log)
	require.NoError(t, bob.Mount(ctx))
	defer bob.Unmount()

	assert.True(t, bob.IsAdmin())
	assert.ErrorIs(t, bob.Leave(ctx), ErrAdminCannotLeave)
	assert.Equal(t, 0, e.b.Calls("POST /api/groups/{id}/leave"))

	require.NoError(t, bob.RemoveMember(ctx, testutil.Carol))
	assert.False(t, bob.State().Group.IsMember(testutil.Carol))

	require.NoError(t, bob.Delete(ctx))
	assert.True(t, bob.State().Deleted)
	_, ok := e.b.Group(testutil.GroupFilm)
	assert.False(t, ok)
}

func TestGroupDetail_NotLoggedIn(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	g := NewGroupDetail(testutil.GroupFilm, e.client, loggedOut, e.log)
	assert.ErrorIs(t, g.Join(context.Background()), ErrNotLoggedIn)
	assert.Equal(t, 0, e.b.Calls("POST /api/groups/{id}/join"))
}

func TestGroupDetail_ActionsAfterUnmount(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ctx := context.Background()
	g := NewGroupDetail(testutil.GroupFilm, e.client, e.sess, e.log)
	require.NoError(t, g.Mount(ctx))
	g.Unmount()
	assert.False(t, g.Mounted())

	assert.ErrorIs(t, g.Join(ctx), ErrNotMounted)
	assert.ErrorIs(t, g.Reload(ctx), ErrNotMounted)
	assert.Equal(t, 0, e.b.Calls("POST /api/groups/{id}/join"))
	assert.Equal(t, 1, e.b.Calls("GET /api/groups/{id}"))
	assert.False(t, g.IsMember())

	// Unmount is idempotent.
	g.Unmount()
}

func TestGroupDetail_UnmountCancelsReload(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ctx := context.Background()
	g := NewGroupDetail(testutil.GroupFilm, e.client, e.sess, e.log)
	require.NoError(t, g.Mount(ctx))
	before := g.State()

	e.b.HoldNext("GET /api/groups/{id}")
	done := make(chan error, 1)
	go func() { done <- g.Reload(ctx) }()
	require.True(t, testutil.WaitFor(2*time.Second, func() bool {
		return e.b.Calls("GET /api/groups/{id}") == 2
	}))

	g.Unmount()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reload was not cancelled by Unmount")
	}
	assert.Equal(t, before, g.State(), "nothing applied after Unmount")
}
