// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// NewGroup describes a group to create.
type NewGroup struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPrivate   bool   `json:"isPrivate"`
}

// ListGroups returns every group visible to the caller.
func (c *Client) ListGroups(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/groups"}, &groups)
	return groups, err
}

// GetGroup returns a group with populated members.
func (c *Client) GetGroup(ctx context.Context, groupID string) (model.Group, error) {
	var g model.Group
	err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/groups/%s", groupID)}, &g)
	return g, err
}

// ListGroupPosts returns the posts published in a group.
func (c *Client) ListGroupPosts(ctx context.Context, groupID string) ([]model.Post, error) {
	var posts []model.Post
	err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/groups/%s/posts", groupID)}, &posts)
	return posts, err
}

// CreateGroup creates a group administered by the caller.
func (c *Client) CreateGroup(ctx context.Context, ng NewGroup) (model.Group, error) {
	var g model.Group
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/groups", json: ng}, &g)
	return g, err
}

// JoinGroup adds the caller to a group.
func (c *Client) JoinGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, request{method: http.MethodPost, path: pathf("/api/groups/%s/join", groupID), json: struct{}{}}, nil)
}

// LeaveGroup removes the caller from a group.
func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, request{method: http.MethodPost, path: pathf("/api/groups/%s/leave", groupID), json: struct{}{}}, nil)
}

// RemoveMember removes memberID from a group the caller administers and
// returns the updated group.
func (c *Client) RemoveMember(ctx context.Context, groupID, memberID string) (model.Group, error) {
	var g model.Group
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathf("/api/groups/%s/remove-member", groupID),
		json:   map[string]string{"memberId": memberID},
	}, &g)
	return g, err
}

// DeleteGroup deletes a group the caller administers.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathf("/api/groups/%s", groupID)}, nil)
}

// UpdateGroupCover replaces a group's cover image.
func (c *Client) UpdateGroupCover(ctx context.Context, groupID string, cover Upload) (model.Group, error) {
	form := newMultipartForm()
	form.file("coverImage", &cover)
	req, err := form.request(http.MethodPut, pathf("/api/groups/%s/cover", groupID))
	if err != nil {
		return model.Group{}, err
	}
	var g model.Group
	err = c.do(ctx, req, &g)
	return g, err
}
