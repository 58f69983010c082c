// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// =============================================================================
// USERS
// =============================================================================

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Bio               string   `json:"bio"`
	Skills            []string `json:"skills"`
	ProfilePictureURL string   `json:"profilePictureUrl,omitempty"`
	ResumeURL         string   `json:"resumeUrl,omitempty"`
}

// SearchUsers finds users matching q.
func (c *Client) SearchUsers(ctx context.Context, q string) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/users/search",
		query:  url.Values{"q": {q}},
	}, &users)
	return users, err
}

// UpdateProfile saves the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (model.User, error) {
	var user model.User
	err := c.do(ctx, request{method: http.MethodPut, path: "/api/users/me", json: u}, &user)
	return user, err
}

// UploadAvatar uploads a profile picture and returns its URL.
func (c *Client) UploadAvatar(ctx context.Context, up Upload) (string, error) {
	var out struct {
		URL string `json:"profilePictureUrl"`
	}
	if err := c.upload(ctx, "/api/users/upload/avatar", "avatar", up, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// UploadResume uploads a resume document and returns its URL.
func (c *Client) UploadResume(ctx context.Context, up Upload) (string, error) {
	var out struct {
		URL string `json:"resumeUrl"`
	}
	if err := c.upload(ctx, "/api/users/upload/resume", "resume", up, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) upload(ctx context.Context, path, field string, up Upload, out any) error {
	form := newMultipartForm()
	form.file(field, &up)
	req, err := form.request(http.MethodPost, path)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

// =============================================================================
// LISTINGS
// =============================================================================

// Leaderboard returns ranked users. An empty role or model.AllRoles omits the
// filter.
func (c *Client) Leaderboard(ctx context.Context, role string) ([]model.LeaderboardEntry, error) {
	var q url.Values
	if role != "" && role != model.AllRoles {
		q = url.Values{"role": {role}}
	}
	var entries []model.LeaderboardEntry
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/leaderboard", query: q}, &entries)
	return entries, err
}

// NewCastingCall describes an audition listing to publish.
type NewCastingCall struct {
	ProjectTitle        string    `json:"projectTitle"`
	ProjectType         string    `json:"projectType"`
	RoleDescription     string    `json:"roleDescription"`
	RoleType            string    `json:"roleType"`
	Location            string    `json:"location"`
	ApplicationDeadline time.Time `json:"applicationDeadline"`
	ContactEmail        string    `json:"contactEmail"`
}

// ListCastingCalls returns open audition listings.
func (c *Client) ListCastingCalls(ctx context.Context) ([]model.CastingCall, error) {
	var calls []model.CastingCall
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/casting-calls"}, &calls)
	return calls, err
}

// CreateCastingCall publishes a listing.
func (c *Client) CreateCastingCall(ctx context.Context, nc NewCastingCall) (model.CastingCall, error) {
	var call model.CastingCall
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/casting-calls", json: nc}, &call)
	return call, err
}
