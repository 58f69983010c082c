// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nvakumar/ssfrontend/internal/config"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/session"
	"github.com/nvakumar/ssfrontend/internal/storage"
	"github.com/nvakumar/ssfrontend/internal/testutil"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// =============================================================================
// HELPERS
// =============================================================================

const waitTimeout = 2 * time.Second

type testApp struct {
	*App
	b      *testutil.Backend
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestApp(t *testing.T, input string, jsonMode bool) *testApp {
	t.Helper()
	b := testutil.NewBackend(t)

	cfg := config.Default()
	cfg.API.BaseURL = b.URL()
	cfg.Realtime.URL = b.WSURL()
	cfg.UI.ShowTimestamps = false

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	a, err := NewApp(context.Background(), Options{
		Config: cfg,
		Store:  storage.NewMemoryStore(),
		Logger: zaptest.NewLogger(t).Sugar(),
		In:     strings.NewReader(input),
		Out:    out,
		Err:    errOut,
		JSON:   jsonMode,
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return &testApp{App: a, b: b, out: out, errOut: errOut}
}

func (ta *testApp) loginAs(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, ta.Session.Login(context.Background(), ta.API, email, testutil.Password))
}

func decodeEnvelope(t *testing.T, raw []byte, data any) JSONResponse {
	t.Helper()
	var env struct {
		JSONResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.JSONResponse
}

// =============================================================================
// PARSING
// =============================================================================

func TestParse_GlobalFlagsAnywhere(t *testing.T) {
	cmd, args := Parse([]string{"feed", "--json", "--group", "g1", "-q", "--config=/tmp/c.toml"})
	assert.Equal(t, CmdFeed, cmd)
	assert.True(t, args.JSON)
	assert.True(t, args.Quiet)
	assert.Equal(t, "/tmp/c.toml", args.ConfigPath)
	assert.Equal(t, []string{"--group", "g1"}, args.Raw)
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{nil, CmdTUI},
		{[]string{"me"}, CmdWhoami},
		{[]string{"inbox"}, CmdConversations},
		{[]string{"top"}, CmdLeaderboard},
		{[]string{"--help"}, CmdHelp},
		{[]string{"GROUPS"}, CmdGroups},
		{[]string{"frobnicate"}, CmdUnknown},
	}
	for _, tt := range tests {
		cmd, _ := Parse(tt.argv)
		assert.Equal(t, tt.want, cmd, "argv %v", tt.argv)
	}
	assert.False(t, CmdConfig.NeedsApp())
	assert.True(t, CmdChat.NeedsApp())
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"add", "p1", "--title=Hi", "-n", "3", "--private", "--", "-dash", "text"})
	assert.Equal(t, "add", p.Subcommand())
	assert.Equal(t, "p1", p.Positional(1))
	assert.Equal(t, "Hi", p.Flag("title"))
	assert.Equal(t, 3, p.FlagIntOrDefault("n", 0))
	assert.True(t, p.BoolFlag("private"))
	assert.Equal(t, "-dash text", JoinPositionalArgs(p, 2))
	assert.Equal(t, "fallback", p.FlagOrDefault("missing", "fallback"))
}

func TestSplitListAndParseBool(t *testing.T) {
	assert.Equal(t, []string{"acting", "singing"}, SplitList(" acting, ,singing "))
	assert.Empty(t, SplitList(""))

	for _, s := range []string{"y", "YES", "on", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.New("boom"), ExitGeneralError},
		{&ValidationError{Field: "x"}, ExitUsageError},
		{&NotFoundError{Resource: "post", ID: "p"}, ExitNotFoundError},
		{views.ErrForbidden, ExitAuthError},
		{session.ErrNoSession, ExitAuthError},
		{views.ErrEmptyComment, ExitUsageError},
		{context.DeadlineExceeded, ExitTimeoutError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetExitCode(tt.err), "%v", tt.err)
	}
}

// =============================================================================
// ACCOUNT
// =============================================================================

func TestLoginWhoamiLogout(t *testing.T) {
	ta := newTestApp(t, testutil.Password+"\n", false)
	ctx := context.Background()

	err := HandleLogin(ctx, ta.App, Args{Raw: []string{"--email", "alice@example.com", "--password-stdin"}})
	require.NoError(t, err)
	assert.Contains(t, ta.out.String(), "Logged in as Alice Archer")
	assert.Equal(t, testutil.Alice, ta.Session.UserID())

	ta.out.Reset()
	require.NoError(t, HandleWhoami(ctx, ta.App, Args{}))
	assert.Contains(t, ta.out.String(), "Alice Archer")

	ta.out.Reset()
	require.NoError(t, HandleLogout(ctx, ta.App, Args{}))
	assert.Contains(t, ta.out.String(), "Logged out Alice Archer")
	_, ok := ta.Session.Current()
	assert.False(t, ok)

	ta.out.Reset()
	require.NoError(t, HandleLogout(ctx, ta.App, Args{}))
	assert.Contains(t, ta.out.String(), "Not logged in")
}

func TestLogin_BadPassword(t *testing.T) {
	ta := newTestApp(t, "wrong\n", false)
	err := HandleLogin(context.Background(), ta.App, Args{Raw: []string{"--email", "alice@example.com", "--password-stdin"}})
	require.Error(t, err)
	assert.NotEqual(t, ExitSuccess, GetExitCode(err))
	_, ok := ta.Session.Current()
	assert.False(t, ok)
}

func TestRun_RequiresSession(t *testing.T) {
	ta := newTestApp(t, "", false)
	err := Run(context.Background(), ta.App, CmdProfile, Args{})
	assert.Equal(t, ExitAuthError, GetExitCode(err))

	err = Run(context.Background(), ta.App, CmdUnknown, Args{Name: "frob"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// POSTS
// =============================================================================

func TestFeed_JSON(t *testing.T) {
	ta := newTestApp(t, "", true)
	ta.loginAs(t, "alice@example.com")

	require.NoError(t, HandleFeed(context.Background(), ta.App, Args{}))

	var posts []PostSummary
	env := decodeEnvelope(t, ta.out.Bytes(), &posts)
	assert.True(t, env.Success)
	require.Len(t, posts, 2)
	assert.Equal(t, testutil.PostByBob, posts[0].ID)
	assert.Equal(t, "Bob Barker", posts[0].Author)
	assert.Equal(t, 1, posts[0].Likes)
	assert.False(t, posts[0].Liked)
}

func TestFeed_Limit(t *testing.T) {
	ta := newTestApp(t, "", true)
	ta.loginAs(t, "alice@example.com")

	require.NoError(t, HandleFeed(context.Background(), ta.App, Args{Raw: []string{"--limit", "1"}}))
	var posts []PostSummary
	decodeEnvelope(t, ta.out.Bytes(), &posts)
	assert.Len(t, posts, 1)
}

func TestLike_Toggles(t *testing.T) {
	ta := newTestApp(t, "", true)
	ta.loginAs(t, "alice@example.com")
	ctx := context.Background()

	require.NoError(t, HandleLike(ctx, ta.App, Args{Raw: []string{testutil.PostByBob}}))
	var like LikeData
	decodeEnvelope(t, ta.out.Bytes(), &like)
	assert.True(t, like.Liked)
	assert.Equal(t, 2, like.Likes)

	ta.out.Reset()
	require.NoError(t, HandleLike(ctx, ta.App, Args{Raw: []string{testutil.PostByBob}}))
	decodeEnvelope(t, ta.out.Bytes(), &like)
	assert.False(t, like.Liked)
	assert.Equal(t, 1, like.Likes)

	assert.Equal(t, 2, ta.b.Calls("PUT /api/posts/{id}/like"))
}

func TestComment_AddAndEmpty(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "alice@example.com")
	ctx := context.Background()

	err := HandleComment(ctx, ta.App, Args{Raw: []string{"add", testutil.PostByBob, "Count", "me", "in"}})
	require.NoError(t, err)
	assert.Contains(t, ta.out.String(), "Comment added (2 total)")

	post, ok := ta.b.Post(testutil.PostByBob)
	require.True(t, ok)
	assert.Equal(t, "Count me in", post.Comments[len(post.Comments)-1].Text)

	err = HandleComment(ctx, ta.App, Args{Raw: []string{"add", testutil.PostByBob, "  "}})
	assert.ErrorIs(t, err, views.ErrEmptyComment)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestPostDelete_ForbiddenForOthers(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "alice@example.com")

	err := HandlePost(context.Background(), ta.App, Args{Raw: []string{"delete", testutil.PostByBob, "--confirm"}})
	assert.ErrorIs(t, err, views.ErrForbidden)
	_, ok := ta.b.Post(testutil.PostByBob)
	assert.True(t, ok)
}

func TestPostDelete_DeclinedConfirm(t *testing.T) {
	ta := newTestApp(t, "n\n", false)
	ta.loginAs(t, "alice@example.com")

	err := HandlePost(context.Background(), ta.App, Args{Raw: []string{"delete", testutil.PostByAlice}})
	require.NoError(t, err)
	assert.Contains(t, ta.out.String(), "Cancelled")
	_, ok := ta.b.Post(testutil.PostByAlice)
	assert.True(t, ok)
}

func TestPostDelete_JSONRequiresConfirmFlag(t *testing.T) {
	ta := newTestApp(t, "", true)
	ta.loginAs(t, "alice@example.com")

	err := HandlePost(context.Background(), ta.App, Args{Raw: []string{"delete", testutil.PostByAlice}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestPostShow_NotFound(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "alice@example.com")

	err := HandlePost(context.Background(), ta.App, Args{Raw: []string{"show", "nope"}})
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

// =============================================================================
// GROUPS AND DIRECTORY
// =============================================================================

func TestGroups_AdminCannotLeave(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "bob@example.com")

	err := HandleGroups(context.Background(), ta.App, Args{Raw: []string{"leave", testutil.GroupFilm}})
	assert.ErrorIs(t, err, views.ErrAdminCannotLeave)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

func TestGroups_JoinThenShow(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "alice@example.com")
	ctx := context.Background()

	require.NoError(t, HandleGroups(ctx, ta.App, Args{Raw: []string{"join", testutil.GroupFilm}}))
	assert.Contains(t, ta.out.String(), "Joined Indie Film Makers")

	g, ok := ta.b.Group(testutil.GroupFilm)
	require.True(t, ok)
	assert.True(t, g.IsMember(testutil.Alice))

	ta.out.Reset()
	require.NoError(t, HandleGroups(ctx, ta.App, Args{Raw: []string{"show", testutil.GroupFilm}}))
	out := ta.out.String()
	assert.Contains(t, out, "Indie Film Makers")
	assert.Contains(t, out, "member")
	assert.Contains(t, out, "Casting for a short film")
}

func TestGroups_DeleteRequiresAdmin(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "carol@example.com")

	err := HandleGroups(context.Background(), ta.App, Args{Raw: []string{"delete", testutil.GroupFilm, "--confirm"}})
	assert.ErrorIs(t, err, views.ErrForbidden)
}

func TestSearch(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "alice@example.com")

	require.NoError(t, HandleSearch(context.Background(), ta.App, Args{Raw: []string{"  bob "}}))
	assert.Contains(t, ta.out.String(), "Bob Barker")
	assert.NotContains(t, ta.out.String(), "Carol Chen")

	err := HandleSearch(context.Background(), ta.App, Args{Raw: []string{"   "}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestLeaderboard(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "alice@example.com")
	ctx := context.Background()

	require.NoError(t, HandleLeaderboard(ctx, ta.App, Args{}))
	out := ta.out.String()
	assert.Less(t, strings.Index(out, "Bob Barker"), strings.Index(out, "Alice Archer"))

	err := HandleLeaderboard(ctx, ta.App, Args{Raw: []string{"--role", "Astronaut"}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "--role", ve.Field)
}

func TestCasting_CreateValidatesDeadline(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "bob@example.com")

	err := HandleCasting(context.Background(), ta.App, Args{Raw: []string{
		"create", "--title", "Old", "--email", "b@example.com", "--deadline", "2001-01-01",
	}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "--deadline", ve.Field)
}

// =============================================================================
// CHAT
// =============================================================================

func TestConversations(t *testing.T) {
	ta := newTestApp(t, "", true)
	ta.loginAs(t, "alice@example.com")

	require.NoError(t, HandleConversations(context.Background(), ta.App, Args{}))
	var rows []ConversationData
	decodeEnvelope(t, ta.out.Bytes(), &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, testutil.ConvAliceBob, rows[0].ID)
	assert.Equal(t, "Bob Barker", rows[0].With)
	assert.Equal(t, testutil.Bob, rows[0].WithID)
}

func TestChat_PipedInput(t *testing.T) {
	ta := newTestApp(t, "\n/help\nsee you on set\n/quit\nnever sent\n", false)
	ta.loginAs(t, "alice@example.com")

	require.NoError(t, HandleChat(context.Background(), ta.App, Args{Raw: []string{testutil.ConvAliceBob}}))

	out := ta.out.String()
	assert.Contains(t, out, "Chat with Bob Barker")
	assert.Contains(t, out, "Bob Barker: Hey Alice")
	assert.Contains(t, out, "you: Hi Bob!")
	assert.Contains(t, out, "you: see you on set")
	assert.Contains(t, out, "/history")
	assert.Less(t, strings.Index(out, "Hey Alice"), strings.Index(out, "see you on set"))

	msgs := ta.b.Messages(testutil.ConvAliceBob)
	require.Len(t, msgs, 3)
	assert.Equal(t, "see you on set", msgs[2].Text)
	assert.True(t, testutil.WaitFor(waitTimeout, func() bool { return ta.b.Gateway.Open() == 0 }))
}

func TestChat_UnknownConversation(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.loginAs(t, "alice@example.com")

	err := HandleChat(context.Background(), ta.App, Args{Raw: []string{"c-missing"}})
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestChatPrinter_PrintsEachMessageOnceAfterHistory(t *testing.T) {
	var buf bytes.Buffer
	conv := model.Conversation{
		ID:           "c1",
		Participants: []model.Participant{{ID: "u1", FullName: "Ann"}, {ID: "u2", FullName: "Ben"}},
	}
	msgs := []model.Message{
		{ID: model.Confirmed("m1"), SenderID: "u2", Text: "hello"},
		{ID: model.Confirmed("m2"), SenderID: "u1", Text: "hi"},
	}
	p := newChatPrinter(&buf, conv, "u1", false)

	p.update(views.ChatState{Messages: msgs[:1]})
	assert.Empty(t, buf.String())

	p.update(views.ChatState{Messages: msgs, HistoryLoaded: true})
	p.update(views.ChatState{Messages: msgs, HistoryLoaded: true})
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "Ben: hello")
	assert.Contains(t, buf.String(), "you: hi")

	p.update(views.ChatState{Messages: append(msgs, model.NewArrival("u2", "again", time.Time{})), HistoryLoaded: true})
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_SetGetKeys(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SSF_HOME", dir)
	path := filepath.Join(dir, "config.toml")
	var out bytes.Buffer

	require.NoError(t, HandleConfig(&out, Args{ConfigPath: path, Raw: []string{"set", "ui.show_timestamps", "false"}}))
	assert.Contains(t, out.String(), "ui.show_timestamps = false")

	out.Reset()
	require.NoError(t, HandleConfig(&out, Args{ConfigPath: path, Raw: []string{"get", "ui.show_timestamps"}}))
	assert.Equal(t, "false\n", out.String())

	out.Reset()
	require.NoError(t, HandleConfig(&out, Args{ConfigPath: path, Raw: []string{"keys"}}))
	assert.Contains(t, out.String(), "api.base_url")

	err := HandleConfig(&out, Args{ConfigPath: path, Raw: []string{"get", "nope.nothing"}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleConfig(&out, Args{ConfigPath: path, Raw: []string{"frob"}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}
