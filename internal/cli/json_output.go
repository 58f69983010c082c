// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - machine readable output for --json.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// JSONResponse is the envelope every command prints in JSON mode.
type JSONResponse struct {
	Success   bool           `json:"success"`
	Data      any            `json:"data"`
	Error     *string        `json:"error"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
	Command   string         `json:"command,omitempty"`
}

// NewJSONResponse wraps data in a successful envelope.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse wraps err in a failed envelope.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Details:   errorDetails(err),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the envelope to w with indentation.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// String returns the indented envelope.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s"}`, err)
	}
	return string(data)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// VersionData is the payload of "version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// WhoamiData is the payload of "whoami --json".
type WhoamiData struct {
	LoggedIn  bool       `json:"logged_in"`
	UserID    string     `json:"user_id,omitempty"`
	FullName  string     `json:"full_name,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// PostSummary is a feed row in JSON mode. Comments are counted rather than
// embedded to keep feed output small; "post show" returns the full post.
type PostSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Group     string    `json:"group,omitempty"`
	Likes     int       `json:"likes"`
	Liked     bool      `json:"liked"`
	Comments  int       `json:"comments"`
	MediaURL  string    `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func summarizePost(p model.Post, selfID string) PostSummary {
	s := PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Author:    p.Author.DisplayName(),
		Likes:     p.LikeCount(),
		Liked:     p.IsLikedBy(selfID),
		Comments:  len(p.Comments),
		MediaURL:  p.MediaURL,
		CreatedAt: p.CreatedAt,
	}
	if p.Group != nil {
		s.Group = p.Group.Name
	}
	return s
}

// LikeData is the payload of "like --json".
type LikeData struct {
	PostID string `json:"post_id"`
	Liked  bool   `json:"liked"`
	Likes  int    `json:"likes"`
}
