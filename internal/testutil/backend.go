// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// Seeded user ids.
const (
	Alice = "u-alice"
	Bob   = "u-bob"
	Carol = "u-carol"
)

// Password accepted for every seeded user.
const Password = "password"

// Seeded content ids.
const (
	PostByBob       = "p-bob"
	PostByAlice     = "p-alice"
	GroupFilm       = "g-film"
	ConvAliceBob    = "c-alice-bob"
	CommentByCarol  = "cm-carol"
	CastingCallLead = "cc-lead"
)

// epoch anchors seeded timestamps.
var epoch = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type gate struct {
	ch   chan struct{}
	once sync.Once
}

func (g *gate) open() { g.once.Do(func() { close(g.ch) }) }

type fault struct {
	status  int
	message string
}

// Backend is an in-memory fake of the REST API and realtime gateway.
type Backend struct {
	t      testing.TB
	server *httptest.Server

	// Gateway is the realtime side of the backend.
	Gateway *Gateway

	mu            sync.Mutex
	users         map[string]model.User
	tokens        map[string]string
	posts         []*model.Post
	groups        []*model.Group
	conversations []model.Conversation
	messages      map[string][]model.Message
	leaderboard   []model.LeaderboardEntry
	casting       []model.CastingCall
	seq           int

	faults map[string][]fault
	holds  map[string][]*gate
	gates  []*gate
	calls  map[string]int
}

// NewBackend starts a seeded backend that is shut down with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		t:        t,
		users:    make(map[string]model.User),
		tokens:   make(map[string]string),
		messages: make(map[string][]model.Message),
		faults:   make(map[string][]fault),
		holds:    make(map[string][]*gate),
		calls:    make(map[string]int),
	}
	b.Gateway = newGateway(t)
	b.seed()

	b.server = httptest.NewServer(b.routes())
	t.Cleanup(func() {
		b.releaseAll()
		b.Gateway.closeAll()
		b.server.Close()
	})
	return b
}

// URL is the REST base URL.
func (b *Backend) URL() string { return b.server.URL }

// WSURL is the realtime gateway URL.
func (b *Backend) WSURL() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http") + "/ws"
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/ws", b.Gateway.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		b.handle(r, http.MethodPost, "/auth/login", b.login, false)

		b.handle(r, http.MethodGet, "/posts", b.listPosts, true)
		b.handle(r, http.MethodPost, "/posts", b.createPost, true)
		b.handle(r, http.MethodGet, "/posts/{id}", b.getPost, true)
		b.handle(r, http.MethodPut, "/posts/{id}", b.updatePost, true)
		b.handle(r, http.MethodDelete, "/posts/{id}", b.deletePost, true)
		b.handle(r, http.MethodPut, "/posts/{id}/like", b.likePost, true)
		b.handle(r, http.MethodPost, "/posts/{id}/comment", b.addComment, true)
		b.handle(r, http.MethodDelete, "/posts/{id}/comment/{commentId}", b.deleteComment, true)

		b.handle(r, http.MethodGet, "/conversations/{userId}", b.listConversations, true)
		b.handle(r, http.MethodGet, "/messages/{conversationId}", b.listMessages, true)
		b.handle(r, http.MethodPost, "/messages", b.createMessage, true)

		b.handle(r, http.MethodGet, "/groups", b.listGroups, true)
		b.handle(r, http.MethodPost, "/groups", b.createGroup, true)
		b.handle(r, http.MethodGet, "/groups/{id}", b.getGroup, true)
		b.handle(r, http.MethodDelete, "/groups/{id}", b.deleteGroup, true)
		b.handle(r, http.MethodGet, "/groups/{id}/posts", b.listGroupPosts, true)
		b.handle(r, http.MethodPost, "/groups/{id}/join", b.joinGroup, true)
		b.handle(r, http.MethodPost, "/groups/{id}/leave", b.leaveGroup, true)
		b.handle(r, http.MethodPost, "/groups/{id}/remove-member", b.removeMember, true)
		b.handle(r, http.MethodPut, "/groups/{id}/cover", b.updateCover, true)

		b.handle(r, http.MethodGet, "/users/search", b.searchUsers, true)
		b.handle(r, http.MethodPut, "/users/me", b.updateProfile, true)
		b.handle(r, http.MethodPost, "/users/upload/avatar", b.uploadAvatar, true)
		b.handle(r, http.MethodPost, "/users/upload/resume", b.uploadResume, true)

		b.handle(r, http.MethodGet, "/leaderboard", b.getLeaderboard, true)
		b.handle(r, http.MethodGet, "/casting-calls", b.listCasting, true)
		b.handle(r, http.MethodPost, "/casting-calls", b.createCasting, true)
	})
	return r
}

type authedHandler func(w http.ResponseWriter, r *http.Request, caller string)

// handle registers a route wrapped with call counting, holds, faults and
// (when auth is set) bearer token checks. Keys look like
// "PUT /api/posts/{id}/like".
func (b *Backend) handle(r chi.Router, method, pattern string, h authedHandler, auth bool) {
	key := method + " /api" + pattern
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		b.calls[key]++
		var hold *gate
		if q := b.holds[key]; len(q) > 0 {
			hold, b.holds[key] = q[0], q[1:]
		}
		var f *fault
		if q := b.faults[key]; len(q) > 0 {
			f, b.faults[key] = &q[0], q[1:]
		}
		b.mu.Unlock()

		if hold != nil {
			select {
			case <-hold.ch:
			case <-req.Context().Done():
				return
			}
		}

		caller := ""
		if auth {
			tok := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
			b.mu.Lock()
			caller = b.tokens[tok]
			b.mu.Unlock()
			if caller == "" {
				writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
		}

		if f != nil {
			writeError(w, f.status, f.message)
			return
		}
		h(w, req, caller)
	}))
}

// =============================================================================
// TEST CONTROLS
// =============================================================================

// FailNext makes the next request to key fail with status and message.
func (b *Backend) FailNext(key string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[key] = append(b.faults[key], fault{status: status, message: message})
}

// HoldNext blocks the next request to key until the returned release
// function is called.
func (b *Backend) HoldNext(key string) (release func()) {
	g := &gate{ch: make(chan struct{})}
	b.mu.Lock()
	b.holds[key] = append(b.holds[key], g)
	b.gates = append(b.gates, g)
	b.mu.Unlock()
	return g.open
}

// Calls returns how many requests reached key.
func (b *Backend) Calls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *Backend) releaseAll() {
	b.mu.Lock()
	gates := b.gates
	b.gates, b.holds = nil, make(map[string][]*gate)
	b.mu.Unlock()
	for _, g := range gates {
		g.open()
	}
}

// IssueToken returns a valid bearer token for userID without a login call.
func (b *Backend) IssueToken(userID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := b.nextID("tok")
	b.tokens[tok] = userID
	return tok
}

// Tokens returns a TokenSource-compatible value for userID.
func (b *Backend) Tokens(userID string) StaticToken {
	return StaticToken(b.IssueToken(userID))
}

// StaticToken is a fixed bearer token.
type StaticToken string

// Token returns the token.
func (s StaticToken) Token() (string, error) { return string(s), nil }

// Post returns a copy of a stored post.
func (b *Backend) Post(id string) (model.Post, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.findPost(id); p != nil {
		return clonePost(*p), true
	}
	return model.Post{}, false
}

// Group returns a copy of a stored group.
func (b *Backend) Group(id string) (model.Group, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g := b.findGroup(id); g != nil {
		return *g, true
	}
	return model.Group{}, false
}

// Messages returns the stored history of a conversation.
func (b *Backend) Messages(convID string) []model.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Message(nil), b.messages[convID]...)
}

// AddPost stores p at the top of the feed and returns its id.
func (b *Backend) AddPost(p model.Post) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = b.nextID("p")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = b.now()
	}
	p.Author = b.ref(p.Author.ID)
	b.posts = append([]*model.Post{&p}, b.posts...)
	return p.ID
}

// =============================================================================
// HELPERS
// =============================================================================

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

func (b *Backend) now() time.Time {
	return epoch.Add(time.Duration(b.seq) * time.Minute)
}

func (b *Backend) ref(userID string) model.UserRef {
	if u, ok := b.users[userID]; ok {
		return model.UserRef{User: model.User{ID: u.ID, FullName: u.FullName, Role: u.Role, Avatar: u.Avatar}}
	}
	return model.Ref(userID)
}

func (b *Backend) findPost(id string) *model.Post {
	for _, p := range b.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (b *Backend) findGroup(id string) *model.Group {
	for _, g := range b.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func clonePost(p model.Post) model.Post {
	p.Likes = append([]string(nil), p.Likes...)
	p.Comments = append([]model.Comment(nil), p.Comments...)
	return p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return false
	}
	return true
}
