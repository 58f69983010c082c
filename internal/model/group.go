// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Group is a community of users. The admin is always a member, whether or not
// the server lists them in Members.
type Group struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Admin         UserRef   `json:"admin"`
	Members       []UserRef `json:"members"`
	IsPrivate     bool      `json:"isPrivate"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// IsAdmin reports whether userID administers the group.
func (g Group) IsAdmin(userID string) bool {
	return userID != "" && g.Admin.ID == userID
}

// IsMember reports whether userID belongs to the group. The admin is
// implicitly a member.
func (g Group) IsMember(userID string) bool {
	if userID == "" {
		return false
	}
	if g.IsAdmin(userID) {
		return true
	}
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// MemberCount counts distinct members including the admin.
func (g Group) MemberCount() int {
	seen := make(map[string]struct{}, len(g.Members)+1)
	if g.Admin.ID != "" {
		seen[g.Admin.ID] = struct{}{}
	}
	for _, m := range g.Members {
		if m.ID != "" {
			seen[m.ID] = struct{}{}
		}
	}
	return len(seen)
}

// Visibility returns a label for the group's privacy setting.
func (g Group) Visibility() string {
	if g.IsPrivate {
		return "Private"
	}
	return "Public"
}
