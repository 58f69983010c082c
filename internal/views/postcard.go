// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/logging"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/optimistic"
)

// Guard keys for PostCard actions.
const (
	actionLike    = "like"
	actionComment = "comment"
	actionEdit    = "edit"
)

// PostCard controls a single post.
type PostCard struct {
	cell    *optimistic.Cell[model.Post]
	svc     PostService
	session Session
	guard   optimistic.Guard
	log     *zap.SugaredLogger
}

// NewPostCard wraps p.
func NewPostCard(p model.Post, svc PostService, sess Session, log *zap.SugaredLogger) *PostCard {
	return &PostCard{
		cell:    optimistic.NewCell(p, clonePost),
		svc:     svc,
		session: sess,
		log:     logging.OrNop(log),
	}
}

func clonePost(p model.Post) model.Post {
	p.Likes = append([]string(nil), p.Likes...)
	p.Comments = append([]model.Comment(nil), p.Comments...)
	if p.Group != nil {
		g := *p.Group
		p.Group = &g
	}
	return p
}

// Post returns the current state.
func (c *PostCard) Post() model.Post { return c.cell.Get() }

// ID returns the post id.
func (c *PostCard) ID() string { return c.cell.Get().ID }

// OnChange registers fn for state changes.
func (c *PostCard) OnChange(fn func(model.Post)) { c.cell.OnChange(fn) }

// Liked reports whether the signed-in user likes the post, and the like
// count.
func (c *PostCard) Liked() (bool, int) {
	p := c.cell.Get()
	return p.IsLikedBy(c.userID()), p.LikeCount()
}

// Busy reports whether a like toggle is waiting for the server.
func (c *PostCard) Busy() bool { return c.guard.InFlight(actionLike) }

func (c *PostCard) userID() string {
	if s, ok := c.session.Current(); ok {
		return s.UserID
	}
	return ""
}

// CanModify reports whether the signed-in user wrote the post or
// administers its group.
func (c *PostCard) CanModify() bool {
	return c.cell.Get().CanModify(c.userID())
}

// CanDeleteComment reports whether the signed-in user may delete cm: its
// author, the post's author or the group admin.
func (c *PostCard) CanDeleteComment(cm model.Comment) bool {
	uid := c.userID()
	if uid == "" {
		return false
	}
	return cm.Author.ID == uid || c.cell.Get().CanModify(uid)
}

// =============================================================================
// LIKES
// =============================================================================

// ToggleLike flips the like state at once and asks the server to do the
// same. If the server refuses, the previous state is restored exactly and
// the error is returned. A second toggle while one is pending fails with
// ErrInFlight.
func (c *PostCard) ToggleLike(ctx context.Context) error {
	uid := c.userID()
	if uid == "" {
		return ErrNotLoggedIn
	}
	release, err := c.guard.Acquire(actionLike)
	if err != nil {
		return err
	}
	defer release()

	postID := c.ID()
	toggle := func(p *model.Post) func(*model.Post) {
		prev := append([]string(nil), p.Likes...)
		p.SetLiked(uid, !p.IsLikedBy(uid))
		return func(p *model.Post) { p.Likes = prev }
	}

	err = optimistic.Apply(ctx, c.cell, toggle, func(ctx context.Context) error {
		return c.svc.LikePost(ctx, postID)
	})
	if err != nil {
		c.log.Warnw("like failed, reverted", "post", postID, "error", err)
		return fmt.Errorf("like post: %w", err)
	}
	return nil
}

// =============================================================================
// COMMENTS
// =============================================================================

// SubmitComment posts text and, once the server accepts it, replaces the
// local comments with the server's list.
func (c *PostCard) SubmitComment(ctx context.Context, text string) error {
	if c.userID() == "" {
		return ErrNotLoggedIn
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyComment
	}
	release, err := c.guard.Acquire(actionComment)
	if err != nil {
		return err
	}
	defer release()

	postID := c.ID()
	_, err = optimistic.AfterConfirm(ctx, c.cell,
		func(ctx context.Context) ([]model.Comment, error) {
			return c.svc.AddComment(ctx, postID, text)
		},
		func(p *model.Post, comments []model.Comment) { p.Comments = comments })
	if err != nil {
		c.log.Warnw("comment failed", "post", postID, "error", err)
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

// DeleteComment removes a comment after the server confirms it.
func (c *PostCard) DeleteComment(ctx context.Context, commentID string) error {
	if c.userID() == "" {
		return ErrNotLoggedIn
	}
	p := c.cell.Get()
	var target *model.Comment
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			target = &p.Comments[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("comment %s not found", commentID)
	}
	if !c.CanDeleteComment(*target) {
		return ErrForbidden
	}

	_, err := optimistic.AfterConfirm(ctx, c.cell,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.svc.DeleteComment(ctx, p.ID, commentID)
		},
		func(p *model.Post, _ struct{}) {
			kept := p.Comments[:0]
			for _, cm := range p.Comments {
				if cm.ID != commentID {
					kept = append(kept, cm)
				}
			}
			p.Comments = kept
		})
	if err != nil {
		c.log.Warnw("delete comment failed", "post", p.ID, "comment", commentID, "error", err)
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// =============================================================================
// AUTHOR ACTIONS
// =============================================================================

// Update edits the title and description. Only the author or the group
// admin may edit.
func (c *PostCard) Update(ctx context.Context, title, description string) error {
	if c.userID() == "" {
		return ErrNotLoggedIn
	}
	if !c.CanModify() {
		return ErrForbidden
	}
	release, err := c.guard.Acquire(actionEdit)
	if err != nil {
		return err
	}
	defer release()

	p := c.cell.Get()
	_, err = optimistic.AfterConfirm(ctx, c.cell,
		func(ctx context.Context) (model.Post, error) {
			return c.svc.UpdatePost(ctx, p.ID, api.PostUpdate{
				Title:       title,
				Description: description,
				MediaURL:    p.MediaURL,
				MediaType:   p.MediaType,
			})
		},
		func(cur *model.Post, updated model.Post) {
			cur.Title, cur.Description = updated.Title, updated.Description
			if updated.MediaURL != "" {
				cur.MediaURL, cur.MediaType = updated.MediaURL, updated.MediaType
			}
		})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes the post on the server. The caller drops the card from its
// list on success.
func (c *PostCard) Delete(ctx context.Context) error {
	if c.userID() == "" {
		return ErrNotLoggedIn
	}
	if !c.CanModify() {
		return ErrForbidden
	}
	release, err := c.guard.Acquire(actionEdit)
	if err != nil {
		return err
	}
	defer release()

	if err := c.svc.DeletePost(ctx, c.ID()); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
