// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/testutil"
)

const likeKey = "PUT /api/posts/{id}/like"

func cardFor(t *testing.T, e *env, postID string) *PostCard {
	t.Helper()
	p, ok := e.b.Post(postID)
	require.True(t, ok)
	return NewPostCard(p, e.client, e.sess, e.log)
}

// =============================================================================
// LIKE TESTS
// =============================================================================

func TestToggleLike_FromEmpty(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	card := cardFor(t, e, testutil.PostByAlice)
	ctx := context.Background()

	require.NoError(t, card.ToggleLike(ctx))
	liked, count := card.Liked()
	if !liked || count != 1 {
		t.Errorf("after toggle = (%v, %d), want (true, 1)", liked, count)
	}
	stored, _ := e.b.Post(testutil.PostByAlice)
	assert.True(t, stored.IsLikedBy(testutil.Alice))

	require.NoError(t, card.ToggleLike(ctx))
	liked, count = card.Liked()
	if liked || count != 0 {
		t.Errorf("after second toggle = (%v, %d), want (false, 0)", liked, count)
	}
}

func TestToggleLike_RejectedRestores(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	card := cardFor(t, e, testutil.PostByAlice)
	e.b.FailNext(likeKey, http.StatusBadRequest, "Post already liked")

	err := card.ToggleLike(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))
	assert.Equal(t, "Post already liked", api.Message(err))

	liked, count := card.Liked()
	if liked || count != 0 {
		t.Errorf("after rejection = (%v, %d), want (false, 0)", liked, count)
	}
}

func TestToggleLike_RejectedRestoresOtherLikers(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	card := cardFor(t, e, testutil.PostByBob)
	before := card.Post().Likes
	e.b.FailNext(likeKey, http.StatusInternalServerError, "db down")

	require.Error(t, card.ToggleLike(context.Background()))
	assert.Equal(t, before, card.Post().Likes)
}

func TestToggleLike_OptimisticAndGuarded(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	card := cardFor(t, e, testutil.PostByAlice)
	release := e.b.HoldNext(likeKey)

	var mu sync.Mutex
	var changes []model.Post
	card.OnChange(func(p model.Post) {
		mu.Lock()
		changes = append(changes, p)
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() { done <- card.ToggleLike(context.Background()) }()

	waitFor(t, "optimistic like", func() bool {
		liked, _ := card.Liked()
		return liked && card.Busy()
	})

	err := card.ToggleLike(context.Background())
	if !errors.Is(err, ErrInFlight) {
		t.Errorf("concurrent toggle = %v, want ErrInFlight", err)
	}

	release()
	require.NoError(t, <-done)
	assert.False(t, card.Busy())
	assert.Equal(t, 1, e.b.Calls(likeKey))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, changes, 1, "success does not reconcile")
}

func TestToggleLike_NotLoggedIn(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	p, _ := e.b.Post(testutil.PostByAlice)
	card := NewPostCard(p, e.client, loggedOut, e.log)

	assert.ErrorIs(t, card.ToggleLike(context.Background()), ErrNotLoggedIn)
	assert.Equal(t, 0, e.b.Calls(likeKey))
}

// =============================================================================
// COMMENT TESTS
// =============================================================================

func TestSubmitComment_AppearsOnlyAfterServer(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	card := cardFor(t, e, testutil.PostByBob)
	release := e.b.HoldNext("POST /api/posts/{id}/comment")

	done := make(chan error, 1)
	go func() { done <- card.SubmitComment(context.Background(), "Great!") }()

	waitFor(t, "comment request", func() bool { return e.b.Calls("POST /api/posts/{id}/comment") == 1 })
	assert.Len(t, card.Post().Comments, 1, "comment must not appear before the server answers")

	release()
	require.NoError(t, <-done)
	comments := card.Post().Comments
	require.Len(t, comments, 2)
	assert.Equal(t, "Great!", comments[1].Text)
}

func TestSubmitComment_Empty(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	card := cardFor(t, e, testutil.PostByBob)

	assert.ErrorIs(t, card.SubmitComment(context.Background(), "   "), ErrEmptyComment)
	assert.Equal(t, 0, e.b.Calls("POST /api/posts/{id}/comment"))
}

func TestSubmitComment_FailureLeavesList(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	card := cardFor(t, e, testutil.PostByBob)
	e.b.FailNext("POST /api/posts/{id}/comment", http.StatusBadRequest, "Comment text is required")

	require.Error(t, card.SubmitComment(context.Background(), "x"))
	assert.Len(t, card.Post().Comments, 1)
}

func TestDeleteComment_Permissions(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ctx := context.Background()

	// Alice neither wrote the comment nor the post.
	card := cardFor(t, e, testutil.PostByBob)
	assert.False(t, card.CanDeleteComment(card.Post().Comments[0]))
	assert.ErrorIs(t, card.DeleteComment(ctx, testutil.CommentByCarol), ErrForbidden)

	// Bob wrote the post.
	bobClient, bobSess := e.as(testutil.Bob)
	p, _ := e.b.Post(testutil.PostByBob)
	bobCard := NewPostCard(p, bobClient, bobSess, e.log)
	require.NoError(t, bobCard.DeleteComment(ctx, testutil.CommentByCarol))
	assert.Empty(t, bobCard.Post().Comments)

	stored, _ := e.b.Post(testutil.PostByBob)
	assert.Empty(t, stored.Comments)
}

func TestDeleteComment_GroupAdmin(t *testing.T) {
	e := newEnv(t, testutil.Carol)
	ctx := context.Background()
	id := addGroupPost(e)

	// Carol wrote neither the post nor the comment and is only a member.
	p, _ := e.b.Post(id)
	card := NewPostCard(p, e.client, e.sess, e.log)
	assert.False(t, card.CanDeleteComment(p.Comments[0]))

	// Bob administers the group.
	bobClient, bobSess := e.as(testutil.Bob)
	bobCard := NewPostCard(p, bobClient, bobSess, e.log)
	assert.True(t, bobCard.CanDeleteComment(p.Comments[0]))
	require.NoError(t, bobCard.DeleteComment(ctx, p.Comments[0].ID))
	assert.Empty(t, bobCard.Post().Comments)

	stored, _ := e.b.Post(id)
	assert.Empty(t, stored.Comments)
}

// addGroupPost stores a post by Alice in Bob's group with one comment by
// Alice.
func addGroupPost(e *env) string {
	return e.b.AddPost(model.Post{
		Author: model.Ref(testutil.Alice),
		Title:  "Location scouting",
		Group:  &model.GroupRef{ID: testutil.GroupFilm, Name: "Indie Film Makers", Admin: model.Ref(testutil.Bob)},
		Likes:  []string{},
		Comments: []model.Comment{
			{ID: "cm-scout", Author: model.Ref(testutil.Alice), Text: "Anyone free Sunday?"},
		},
	})
}

// =============================================================================
// AUTHOR ACTION TESTS
// =============================================================================

func TestUpdateAndDelete_AuthorOnly(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ctx := context.Background()

	bobs := cardFor(t, e, testutil.PostByBob)
	assert.False(t, bobs.CanModify())
	assert.ErrorIs(t, bobs.Update(ctx, "x", "y"), ErrForbidden)
	assert.ErrorIs(t, bobs.Delete(ctx), ErrForbidden)

	mine := cardFor(t, e, testutil.PostByAlice)
	require.NoError(t, mine.Update(ctx, "Wrap party", "Thanks all"))
	assert.Equal(t, "Wrap party", mine.Post().Title)
	assert.Equal(t, "Thanks all", mine.Post().Description)
}

func TestUpdateAndDelete_GroupAdmin(t *testing.T) {
	e := newEnv(t, testutil.Carol)
	ctx := context.Background()
	id := addGroupPost(e)
	p, _ := e.b.Post(id)

	member := NewPostCard(p, e.client, e.sess, e.log)
	assert.False(t, member.CanModify())
	assert.ErrorIs(t, member.Delete(ctx), ErrForbidden)

	bobClient, bobSess := e.as(testutil.Bob)
	admin := NewPostCard(p, bobClient, bobSess, e.log)
	require.True(t, admin.CanModify())
	require.NoError(t, admin.Update(ctx, "Scouting moved", "Saturday instead"))
	assert.Equal(t, "Scouting moved", admin.Post().Title)

	require.NoError(t, admin.Delete(ctx))
	_, ok := e.b.Post(id)
	assert.False(t, ok)
}

func TestFeed_DeleteRemovesPost(t *testing.T) {
	e := newEnv(t, testutil.Alice)
	ctx := context.Background()
	feed := NewFeed(e.client, e.sess, e.log)
	require.NoError(t, feed.Mount(ctx))
	defer feed.Unmount()
	require.Len(t, feed.Items(), 2)

	var card *PostCard
	for _, p := range feed.Items() {
		if p.ID == testutil.PostByAlice {
			card = feed.Card(p)
		}
	}
	require.NotNil(t, card)
	require.NoError(t, feed.Delete(ctx, card))

	items := feed.Items()
	require.Len(t, items, 1)
	assert.Equal(t, testutil.PostByBob, items[0].ID)
}
