// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/testutil"
)

func newTestClient(t *testing.T, b *testutil.Backend, userID string) *Client {
	t.Helper()
	var tokens TokenSource
	if userID != "" {
		tokens = b.Tokens(userID)
	}
	return NewClient(&ClientConfig{BaseURL: b.URL(), Timeout: 5 * time.Second}, tokens, nil)
}

type failingTokens struct{ err error }

func (f failingTokens) Token() (string, error) { return "", f.err }

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&ClientConfig{BaseURL: "http://example.com/"}, nil, nil)
	cfg := c.Config()

	if cfg.BaseURL != "http://example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.RateBurst != 20 {
		t.Errorf("RateBurst = %d, want 20", cfg.RateBurst)
	}
	if cfg.UserAgent != "ssfrontend" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestNewClient_DoesNotMutateConfig(t *testing.T) {
	in := &ClientConfig{BaseURL: "http://example.com/"}
	NewClient(in, nil, nil)
	if in.BaseURL != "http://example.com/" || in.Timeout != 0 {
		t.Errorf("caller config was modified: %+v", in)
	}
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestLogin(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, "")

	user, token, err := c.Login(context.Background(), "alice@example.com", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, testutil.Alice, user.ID)
	assert.Equal(t, "Alice Archer", user.FullName)
	assert.NotEmpty(t, token)

	// The issued token authorizes later calls.
	authed := NewClient(&ClientConfig{BaseURL: b.URL()}, testutil.StaticToken(token), nil)
	_, err = authed.ListPosts(context.Background())
	assert.NoError(t, err)
}

func TestLogin_BadCredentials(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, "")

	_, _, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.Equal(t, "Invalid credentials", Message(err))
}

func TestLogin_FlatResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"u1","fullName":"Flat","email":"f@x","role":"Actor","token":"tok-1"}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL}, nil, nil)
	user, token, err := c.Login(context.Background(), "f@x", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "tok-1", token)
}

func TestLogin_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"_id":"u1"}}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL}, nil, nil)
	_, _, err := c.Login(context.Background(), "f@x", "pw")
	require.Error(t, err)
	assert.Equal(t, ErrTypeInvalidResponse, errorType(err))
}

// =============================================================================
// TOKEN AND ERROR CLASSIFICATION TESTS
// =============================================================================

func TestDo_NoTokenSendsNothing(t *testing.T) {
	b := testutil.NewBackend(t)

	c := newTestClient(t, b, "")
	_, err := c.ListPosts(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}

	c = NewClient(&ClientConfig{BaseURL: b.URL()}, failingTokens{errors.New("expired")}, nil)
	_, err = c.ListPosts(context.Background())
	if !IsUnauthorized(err) {
		t.Errorf("err = %v, want unauthorized", err)
	}

	if n := b.Calls("GET /api/posts"); n != 0 {
		t.Errorf("backend saw %d requests, want 0", n)
	}
}

func TestDo_RejectedToken(t *testing.T) {
	b := testutil.NewBackend(t)
	c := NewClient(&ClientConfig{BaseURL: b.URL()}, testutil.StaticToken("forged"), nil)

	_, err := c.ListPosts(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Not authorized, token failed", Message(err))
}

func TestDo_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"bad request", http.StatusBadRequest, IsRejected},
		{"forbidden", http.StatusForbidden, IsUnauthorized},
		{"not found", http.StatusNotFound, IsNotFound},
		{"server", http.StatusInternalServerError, func(err error) bool { return errorType(err) == ErrTypeServer }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := testutil.NewBackend(t)
			c := newTestClient(t, b, testutil.Alice)
			b.FailNext("GET /api/posts", tc.status, "boom")

			_, err := c.ListPosts(context.Background())
			if !tc.check(err) {
				t.Errorf("err = %v (type %v), unexpected classification", err, errorType(err))
			}
			if Message(err) != "boom" {
				t.Errorf("Message = %q, want 'boom'", Message(err))
			}
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(&ClientConfig{BaseURL: url}, testutil.StaticToken("t"), nil)
	_, err := c.ListPosts(context.Background())
	assert.True(t, IsNetwork(err), "err = %v", err)
}

func TestDo_Timeout(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, testutil.Alice)
	release := b.HoldNext("GET /api/posts")
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ListPosts(ctx)
	assert.True(t, IsTimeout(err), "err = %v", err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestDo_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL}, testutil.StaticToken("t"), nil)
	_, err := c.ListPosts(context.Background())
	assert.Equal(t, ErrTypeInvalidResponse, errorType(err))
}

func TestServerMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"m"}`, "m"},
		{`{"msg":"short"}`, "short"},
		{`{"error":"e"}`, "e"},
		{`plain text`, "plain text"},
		{`<html>oops</html>`, ""},
		{``, ""},
	}
	for _, tc := range tests {
		if got := serverMessage(strings.NewReader(tc.body)); got != tc.want {
			t.Errorf("serverMessage(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestClientError_Error(t *testing.T) {
	err := &ClientError{Type: ErrTypeRejected, Status: 400, Message: "bad", Cause: errors.New("cause")}
	if got := err.Error(); got != "bad (HTTP 400): cause" {
		t.Errorf("Error() = %q", got)
	}
	if ErrTypeNotFound.String() != "not_found" {
		t.Errorf("String() = %q", ErrTypeNotFound.String())
	}
}

func TestPathf_EscapesSegments(t *testing.T) {
	if got := pathf("/api/posts/%s", "a/b c"); got != "/api/posts/a%2Fb%20c" {
		t.Errorf("pathf = %q", got)
	}
}

// =============================================================================
// ENDPOINT TESTS
// =============================================================================

func TestPosts(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, testutil.Alice)
	ctx := context.Background()

	posts, err := c.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, testutil.PostByBob, posts[0].ID)
	assert.Equal(t, "Bob Barker", posts[0].Author.FullName)
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, testutil.GroupFilm, posts[0].Group.ID)

	require.NoError(t, c.LikePost(ctx, testutil.PostByBob))
	stored, _ := b.Post(testutil.PostByBob)
	assert.True(t, stored.IsLikedBy(testutil.Alice))

	comments, err := c.AddComment(ctx, testutil.PostByBob, "Count me in")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Count me in", comments[1].Text)
	assert.Equal(t, testutil.Alice, comments[1].Author.ID)

	require.NoError(t, c.DeleteComment(ctx, testutil.PostByBob, comments[1].ID))
	stored, _ = b.Post(testutil.PostByBob)
	assert.Len(t, stored.Comments, 1)
}

func TestCreatePost_Multipart(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, testutil.Alice)

	p, err := c.CreatePost(context.Background(), NewPost{
		Title:       "Headshots",
		Description: "New photos",
		Media:       &Upload{Name: "headshot.png", Reader: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Headshots", p.Title)
	assert.Equal(t, "/uploads/headshot.png", p.MediaURL)
	assert.Equal(t, model.MediaPhoto, p.MediaType)
	assert.Equal(t, testutil.Alice, p.Author.ID)
}

func TestUpdateAndDeletePost_AuthorOnly(t *testing.T) {
	b := testutil.NewBackend(t)
	alice := newTestClient(t, b, testutil.Alice)
	ctx := context.Background()

	_, err := alice.UpdatePost(ctx, testutil.PostByBob, PostUpdate{Title: "hijack"})
	assert.True(t, IsUnauthorized(err), "err = %v", err)

	p, err := alice.UpdatePost(ctx, testutil.PostByAlice, PostUpdate{Title: "Second day", Description: "wrap"})
	require.NoError(t, err)
	assert.Equal(t, "Second day", p.Title)

	require.NoError(t, alice.DeletePost(ctx, testutil.PostByAlice))
	_, err = alice.GetPost(ctx, testutil.PostByAlice)
	assert.True(t, IsNotFound(err))
}

func TestMessages(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, testutil.Alice)
	ctx := context.Background()

	convs, err := c.ListConversations(ctx, testutil.Alice)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "Bob Barker", convs[0].Title(testutil.Alice))

	msgs, err := c.ListMessages(ctx, testutil.ConvAliceBob)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.False(t, msgs[0].ID.IsLocal())

	m, err := c.CreateMessage(ctx, NewMessage{
		ConversationID: testutil.ConvAliceBob,
		SenderID:       testutil.Alice,
		ReceiverID:     testutil.Bob,
		Text:           "See you Friday",
	})
	require.NoError(t, err)
	assert.False(t, m.ID.IsZero())
	assert.Equal(t, "See you Friday", m.Text)
	assert.Len(t, b.Messages(testutil.ConvAliceBob), 3)
}

func TestGroups(t *testing.T) {
	b := testutil.NewBackend(t)
	alice := newTestClient(t, b, testutil.Alice)
	bob := newTestClient(t, b, testutil.Bob)
	ctx := context.Background()

	groups, err := alice.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].MemberCount())

	require.NoError(t, alice.JoinGroup(ctx, testutil.GroupFilm))
	g, err := alice.GetGroup(ctx, testutil.GroupFilm)
	require.NoError(t, err)
	assert.True(t, g.IsMember(testutil.Alice))

	posts, err := alice.ListGroupPosts(ctx, testutil.GroupFilm)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	err = bob.LeaveGroup(ctx, testutil.GroupFilm)
	assert.True(t, IsRejected(err), "admin leave: %v", err)

	g, err = bob.RemoveMember(ctx, testutil.GroupFilm, testutil.Alice)
	require.NoError(t, err)
	assert.False(t, g.IsMember(testutil.Alice))

	err = alice.DeleteGroup(ctx, testutil.GroupFilm)
	assert.True(t, IsUnauthorized(err))

	created, err := alice.CreateGroup(ctx, NewGroup{Name: "Stunts", IsPrivate: true})
	require.NoError(t, err)
	assert.True(t, created.IsAdmin(testutil.Alice))
	assert.Equal(t, "Private", created.Visibility())

	cover, err := alice.UpdateGroupCover(ctx, created.ID, Upload{Name: "cover.jpg", Reader: strings.NewReader("jpg")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cover.jpg", cover.CoverImageURL)
}

func TestUsers(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, testutil.Alice)
	ctx := context.Background()

	users, err := c.SearchUsers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, testutil.Bob, users[0].ID)

	avatar, err := c.UploadAvatar(ctx, Upload{Name: "me.png", Reader: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/me.png", avatar)

	resume, err := c.UploadResume(ctx, Upload{Name: "cv.pdf", Reader: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cv.pdf", resume)

	u, err := c.UpdateProfile(ctx, ProfileUpdate{Bio: "Actor", Skills: []string{"Voice"}, ProfilePictureURL: avatar})
	require.NoError(t, err)
	assert.Equal(t, "Actor", u.Bio)
	assert.Equal(t, avatar, u.ProfilePicture)
}

func TestLeaderboard_RoleFilter(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, testutil.Alice)
	ctx := context.Background()

	all, err := c.Leaderboard(ctx, model.AllRoles)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	directors, err := c.Leaderboard(ctx, "Director")
	require.NoError(t, err)
	require.Len(t, directors, 1)
	assert.Equal(t, testutil.Bob, directors[0].UserID)
}

func TestCastingCalls(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newTestClient(t, b, testutil.Alice)
	ctx := context.Background()

	created, err := c.CreateCastingCall(ctx, NewCastingCall{ProjectTitle: "Ad spot", RoleType: "Model"})
	require.NoError(t, err)
	assert.Equal(t, testutil.Alice, created.PostedBy.ID)

	calls, err := c.ListCastingCalls(ctx)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "Ad spot", calls[0].ProjectTitle)
}

func TestMediaTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.png": model.MediaPhoto,
		"b.JPG": model.MediaPhoto,
		"c.mp4": model.MediaVideo,
		"d.txt": "",
		"noext": "",
	}
	for name, want := range tests {
		if got := MediaTypeFor(name); got != want {
			t.Errorf("MediaTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}
