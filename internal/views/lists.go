// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// =============================================================================
// FEED
// =============================================================================

// Feed is the post list with a PostCard per post.
type Feed struct {
	*ListView[model.Post]

	svc     PostService
	session Session
	log     *zap.SugaredLogger
}

// NewFeed returns the main feed.
func NewFeed(svc PostService, sess Session, log *zap.SugaredLogger) *Feed {
	return &Feed{
		ListView: NewListView(svc.ListPosts, log),
		svc:      svc,
		session:  sess,
		log:      log,
	}
}

// Card returns a controller for p.
func (f *Feed) Card(p model.Post) *PostCard {
	return NewPostCard(p, f.svc, f.session, f.log)
}

// Replace swaps in an updated post.
func (f *Feed) Replace(p model.Post) {
	f.Update(func(items []model.Post) []model.Post {
		for i := range items {
			if items[i].ID == p.ID {
				items[i] = p
			}
		}
		return items
	})
}

// Delete deletes the post through its card and drops it from the feed.
func (f *Feed) Delete(ctx context.Context, card *PostCard) error {
	if err := card.Delete(ctx); err != nil {
		return err
	}
	id := card.ID()
	f.Remove(func(p model.Post) bool { return p.ID == id })
	return nil
}

// =============================================================================
// GROUPS, CASTING, CONVERSATIONS
// =============================================================================

// NewGroupList returns the group directory.
func NewGroupList(svc GroupService, log *zap.SugaredLogger) *ListView[model.Group] {
	return NewListView(svc.ListGroups, log)
}

// NewCastingBoard returns the casting call list.
func NewCastingBoard(svc DirectoryService, log *zap.SugaredLogger) *ListView[model.CastingCall] {
	return NewListView(svc.ListCastingCalls, log)
}

// NewConversations lists the signed-in user's conversations. Without a
// session the fetch fails with ErrNotLoggedIn.
func NewConversations(svc ChatService, sess Session, log *zap.SugaredLogger) *ListView[model.Conversation] {
	return NewListView(func(ctx context.Context) ([]model.Conversation, error) {
		s, ok := sess.Current()
		if !ok {
			return nil, ErrNotLoggedIn
		}
		return svc.ListConversations(ctx, s.UserID)
	}, log)
}

// =============================================================================
// SEARCH
// =============================================================================

// Search finds users by name.
type Search struct {
	*ListView[model.User]

	mu    sync.Mutex
	query string
}

// NewSearch returns an empty search view.
func NewSearch(svc DirectoryService, log *zap.SugaredLogger) *Search {
	s := &Search{}
	s.ListView = NewListView(func(ctx context.Context) ([]model.User, error) {
		return svc.SearchUsers(ctx, s.Query())
	}, log)
	return s
}

// NormalizeQuery trims q and converts it to NFC so that composed and
// decomposed input send the same request.
func NormalizeQuery(q string) string {
	return norm.NFC.String(strings.TrimSpace(q))
}

// Query returns the active query.
func (s *Search) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Mount mounts the view. It only searches when a query is already set.
func (s *Search) Mount(ctx context.Context) error {
	s.Open(ctx)
	if s.Query() == "" {
		return nil
	}
	return s.Refresh(ctx)
}

// SetQuery runs a search for q. An empty query clears the results without a
// request.
func (s *Search) SetQuery(ctx context.Context, q string) error {
	q = NormalizeQuery(q)
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()

	if q == "" {
		s.Clear()
		return nil
	}
	return s.Refresh(ctx)
}

// =============================================================================
// LEADERBOARD
// =============================================================================

// Leaderboard ranks users, optionally filtered by role.
type Leaderboard struct {
	*ListView[model.LeaderboardEntry]

	mu   sync.Mutex
	role string
}

// NewLeaderboard returns a leaderboard starting with role (model.AllRoles
// or "" for no filter).
func NewLeaderboard(svc DirectoryService, role string, log *zap.SugaredLogger) *Leaderboard {
	if role == "" {
		role = model.AllRoles
	}
	lb := &Leaderboard{role: role}
	lb.ListView = NewListView(func(ctx context.Context) ([]model.LeaderboardEntry, error) {
		return svc.Leaderboard(ctx, lb.Role())
	}, log)
	return lb
}

// Role returns the active filter.
func (lb *Leaderboard) Role() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.role
}

// SetRole changes the filter and refetches.
func (lb *Leaderboard) SetRole(ctx context.Context, role string) error {
	if role == "" {
		role = model.AllRoles
	}
	lb.mu.Lock()
	lb.role = role
	lb.mu.Unlock()
	return lb.Refresh(ctx)
}
