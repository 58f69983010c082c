// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// =============================================================================
// POSTS
// =============================================================================

// NewPost describes a post to create. Media is optional.
type NewPost struct {
	Title       string
	Description string
	GroupID     string
	Media       *Upload
}

// PostUpdate carries editable post fields.
type PostUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	MediaType   string `json:"mediaType,omitempty"`
}

// ListPosts returns the feed.
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/posts"}, &posts)
	return posts, err
}

// GetPost returns one post.
func (c *Client) GetPost(ctx context.Context, postID string) (model.Post, error) {
	var p model.Post
	err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/posts/%s", postID)}, &p)
	return p, err
}

// CreatePost uploads a post as multipart form data. The media type is
// derived from the file name.
func (c *Client) CreatePost(ctx context.Context, np NewPost) (model.Post, error) {
	form := newMultipartForm()
	form.field("title", np.Title)
	form.field("description", np.Description)
	form.field("groupId", np.GroupID)
	if np.Media != nil {
		form.file("file", np.Media)
		form.field("mediaType", MediaTypeFor(np.Media.Name))
	}
	req, err := form.request(http.MethodPost, "/api/posts")
	if err != nil {
		return model.Post{}, err
	}

	var p model.Post
	err = c.do(ctx, req, &p)
	return p, err
}

// UpdatePost edits a post's text and media reference.
func (c *Client) UpdatePost(ctx context.Context, postID string, u PostUpdate) (model.Post, error) {
	var p model.Post
	err := c.do(ctx, request{method: http.MethodPut, path: pathf("/api/posts/%s", postID), json: u}, &p)
	return p, err
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathf("/api/posts/%s", postID)}, nil)
}

// LikePost toggles the caller's like on a post. The response body is ignored.
func (c *Client) LikePost(ctx context.Context, postID string) error {
	return c.do(ctx, request{method: http.MethodPut, path: pathf("/api/posts/%s/like", postID), json: struct{}{}}, nil)
}

// =============================================================================
// COMMENTS
// =============================================================================

// AddComment posts a comment and returns the post's full comment list in
// server order.
func (c *Client) AddComment(ctx context.Context, postID, text string) ([]model.Comment, error) {
	var comments []model.Comment
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathf("/api/posts/%s/comment", postID),
		json:   map[string]string{"text": text},
	}, &comments)
	return comments, err
}

// DeleteComment removes a comment. Callers drop it from local state once
// this returns nil.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   pathf("/api/posts/%s/comment/%s", postID, commentID),
	}, nil)
}
