// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Media types understood by the backend.
const (
	MediaPhoto = "Photo"
	MediaVideo = "Video"
)

// =============================================================================
// POST
// =============================================================================

// Post is a feed entry. Likes holds the ids of users who liked the post and
// never contains the same id twice once it has passed through SetLiked or
// UnmarshalJSON.
type Post struct {
	ID          string    `json:"_id"`
	Author      UserRef   `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
	MediaType   string    `json:"mediaType,omitempty"`
	Likes       []string  `json:"likes"`
	Comments    []Comment `json:"comments"`
	Group       *GroupRef `json:"group,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UnmarshalJSON decodes a post and drops duplicate liker ids.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Post(raw)
	p.Likes = dedupe(p.Likes)
	return nil
}

// IsLikedBy reports whether userID is in the liker set.
func (p Post) IsLikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// LikeCount returns the number of distinct likers.
func (p Post) LikeCount() int {
	return len(p.Likes)
}

// SetLiked adds or removes userID from the liker set.
func (p *Post) SetLiked(userID string, liked bool) {
	if userID == "" {
		return
	}
	if liked {
		if !p.IsLikedBy(userID) {
			p.Likes = append(p.Likes, userID)
		}
		return
	}
	out := p.Likes[:0]
	for _, id := range p.Likes {
		if id != userID {
			out = append(out, id)
		}
	}
	p.Likes = out
}

// IsAuthor reports whether userID wrote the post.
func (p Post) IsAuthor(userID string) bool {
	return userID != "" && p.Author.ID == userID
}

// IsGroupAdmin reports whether userID administers the group the post was
// made in.
func (p Post) IsGroupAdmin(userID string) bool {
	return userID != "" && p.Group != nil && p.Group.Admin.ID == userID
}

// CanModify reports whether userID may edit or delete the post: its author
// or the admin of its group.
func (p Post) CanModify(userID string) bool {
	return p.IsAuthor(userID) || p.IsGroupAdmin(userID)
}

// HasMedia reports whether the post carries an attachment.
func (p Post) HasMedia() bool {
	return p.MediaURL != ""
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// =============================================================================
// COMMENT
// =============================================================================

// Comment is a reply on a post. Comments are only ever appended from server
// responses.
type Comment struct {
	ID        string    `json:"_id"`
	Author    UserRef   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// =============================================================================
// GROUP REFERENCE
// =============================================================================

// GroupRef is a group as embedded in a post: either an id or a small object.
type GroupRef struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name,omitempty"`
	Admin UserRef `json:"admin,omitempty"`
}

// UnmarshalJSON accepts a string id or an object.
func (g *GroupRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*g = GroupRef{ID: id}
		return nil
	}
	type plain GroupRef
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = GroupRef(raw)
	return nil
}
