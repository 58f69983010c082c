// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/logging"
	"github.com/nvakumar/ssfrontend/internal/model"
)

// GroupState is a snapshot of a GroupDetail.
type GroupState struct {
	Group   model.Group
	Loaded  bool
	Deleted bool
	Err     error
}

// GroupDetail shows one group and its posts. Every action waits for the
// server and then refetches the group.
type GroupDetail struct {
	id      string
	svc     GroupService
	session Session
	log     *zap.SugaredLogger

	// Posts lists the group's posts.
	Posts *ListView[model.Post]

	mu       sync.Mutex
	state    GroupState
	gen      uint64
	mounted  bool
	scope    context.Context
	cancel   context.CancelFunc
	onChange func(GroupState)
}

// NewGroupDetail returns an unmounted view for groupID.
func NewGroupDetail(groupID string, svc GroupService, sess Session, log *zap.SugaredLogger) *GroupDetail {
	log = logging.OrNop(log).With("group", groupID)
	return &GroupDetail{
		id:      groupID,
		svc:     svc,
		session: sess,
		log:     log,
		Posts: NewListView(func(ctx context.Context) ([]model.Post, error) {
			return svc.ListGroupPosts(ctx, groupID)
		}, log),
	}
}

// OnChange registers fn for state changes.
func (g *GroupDetail) OnChange(fn func(GroupState)) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// State returns a snapshot.
func (g *GroupDetail) State() GroupState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Mounted reports whether the view is mounted.
func (g *GroupDetail) Mounted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mounted
}

func (g *GroupDetail) notifyLocked() {
	s, fn := g.state, g.onChange
	g.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Mount opens the view under parent and loads the group and its posts.
func (g *GroupDetail) Mount(parent context.Context) error {
	g.Open(parent)
	if err := g.Reload(parent); err != nil {
		return err
	}
	return g.Posts.Refresh(parent)
}

// Open mounts the view and its posts list without fetching.
func (g *GroupDetail) Open(parent context.Context) {
	g.mu.Lock()
	if !g.mounted {
		g.scope, g.cancel = context.WithCancel(parent)
		g.mounted = true
	}
	g.mu.Unlock()
	g.Posts.Open(parent)
}

// Unmount cancels requests in flight. Nothing is applied afterwards and
// further actions fail with ErrNotMounted.
func (g *GroupDetail) Unmount() {
	g.mu.Lock()
	if g.mounted {
		g.mounted = false
		g.gen++
		g.cancel()
	}
	g.mu.Unlock()
	g.Posts.Unmount()
}

// scoped derives a context from ctx that also ends when the view is
// unmounted.
func (g *GroupDetail) scoped(ctx context.Context) (context.Context, context.CancelFunc, error) {
	g.mu.Lock()
	mounted, scope := g.mounted, g.scope
	g.mu.Unlock()
	if !mounted {
		return nil, nil, ErrNotMounted
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(scope, cancel)
	return ctx, func() { stop(); cancel() }, nil
}

// Reload refetches the group. Only the latest reload is applied.
func (g *GroupDetail) Reload(ctx context.Context) error {
	ctx, done, err := g.scoped(ctx)
	if err != nil {
		return err
	}
	defer done()

	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.mu.Unlock()

	grp, err := g.svc.GetGroup(ctx, g.id)

	g.mu.Lock()
	if gen != g.gen || !g.mounted {
		g.mu.Unlock()
		g.log.Debugw("discarding stale group response", "generation", gen, "error", err)
		return err
	}
	if err != nil {
		g.state.Err = err
	} else {
		g.state.Group, g.state.Loaded, g.state.Err = grp, true, nil
	}
	g.notifyLocked()
	return err
}

// =============================================================================
// PERMISSIONS
// =============================================================================

func (g *GroupDetail) self() (string, bool) {
	s, ok := g.session.Current()
	return s.UserID, ok
}

// IsAdmin reports whether the signed-in user administers the group.
func (g *GroupDetail) IsAdmin() bool {
	uid, ok := g.self()
	return ok && g.State().Group.IsAdmin(uid)
}

// IsMember reports whether the signed-in user belongs to the group.
func (g *GroupDetail) IsMember() bool {
	uid, ok := g.self()
	return ok && g.State().Group.IsMember(uid)
}

// =============================================================================
// ACTIONS
// =============================================================================

// Join adds the signed-in user to the group.
func (g *GroupDetail) Join(ctx context.Context) error {
	if _, ok := g.self(); !ok {
		return ErrNotLoggedIn
	}
	return g.act(ctx, "join group", func(ctx context.Context) error {
		return g.svc.JoinGroup(ctx, g.id)
	})
}

// Leave removes the signed-in user. The admin cannot leave.
func (g *GroupDetail) Leave(ctx context.Context) error {
	if _, ok := g.self(); !ok {
		return ErrNotLoggedIn
	}
	if g.IsAdmin() {
		return ErrAdminCannotLeave
	}
	return g.act(ctx, "leave group", func(ctx context.Context) error {
		return g.svc.LeaveGroup(ctx, g.id)
	})
}

// RemoveMember removes memberID. Only the admin may do this, and the admin
// cannot remove themselves.
func (g *GroupDetail) RemoveMember(ctx context.Context, memberID string) error {
	if _, ok := g.self(); !ok {
		return ErrNotLoggedIn
	}
	if !g.IsAdmin() {
		return ErrForbidden
	}
	if g.State().Group.IsAdmin(memberID) {
		return ErrAdminCannotLeave
	}
	return g.act(ctx, "remove member", func(ctx context.Context) error {
		_, err := g.svc.RemoveMember(ctx, g.id, memberID)
		return err
	})
}

// Delete deletes the group. Only the admin may do this.
func (g *GroupDetail) Delete(ctx context.Context) error {
	if _, ok := g.self(); !ok {
		return ErrNotLoggedIn
	}
	if !g.IsAdmin() {
		return ErrForbidden
	}
	ctx, done, err := g.scoped(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := g.svc.DeleteGroup(ctx, g.id); err != nil {
		g.log.Warnw("delete group failed", "error", err)
		return fmt.Errorf("delete group: %w", err)
	}
	g.mu.Lock()
	g.gen++
	g.state.Deleted = true
	g.notifyLocked()
	g.Posts.Unmount()
	return nil
}

// act runs call and refetches the group on success. The view must be
// mounted; unmounting cancels the call.
func (g *GroupDetail) act(ctx context.Context, what string, call func(context.Context) error) error {
	ctx, done, err := g.scoped(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := call(ctx); err != nil {
		g.log.Warnw(what+" failed", "error", err)
		return fmt.Errorf("%s: %w", what, err)
	}
	if err := g.Reload(ctx); err != nil && !errors.Is(err, ErrNotMounted) {
		g.log.Warnw("reload after "+what+" failed", "error", err)
	}
	return nil
}
