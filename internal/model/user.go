// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// USER
// =============================================================================

// User is a member of the network as returned by the API.
type User struct {
	ID             string   `json:"_id"`
	FullName       string   `json:"fullName"`
	Email          string   `json:"email,omitempty"`
	Role           string   `json:"role,omitempty"`
	Avatar         string   `json:"avatar,omitempty"`
	ProfilePicture string   `json:"profilePictureUrl,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	ResumeURL      string   `json:"resumeUrl,omitempty"`
}

// DisplayName returns the best human readable name for the user.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// Initial returns the first letter of the display name, used as an avatar
// placeholder in narrow layouts.
func (u User) Initial() string {
	for _, r := range u.DisplayName() {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// =============================================================================
// USER REFERENCE
// =============================================================================

// UserRef is a reference to a user that may be populated. The server sends
// either "userId" or {"_id": "userId", "fullName": ...} depending on the
// endpoint.
type UserRef struct {
	User
}

// Ref builds a reference carrying only an id.
func Ref(id string) UserRef {
	return UserRef{User: User{ID: id}}
}

// Populated reports whether the reference carried more than an id.
func (r UserRef) Populated() bool {
	return r.FullName != "" || r.Email != "" || r.Role != ""
}

// UnmarshalJSON accepts a string id, an object, or null.
func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = UserRef{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref(id)
		return nil
	case data[0] == '{':
		var u User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		*r = UserRef{User: u}
		return nil
	default:
		return fmt.Errorf("user reference: unexpected JSON %q", truncate(data, 32))
	}
}

// MarshalJSON writes a bare id unless the reference is populated.
func (r UserRef) MarshalJSON() ([]byte, error) {
	if !r.Populated() {
		return json.Marshal(r.ID)
	}
	return json.Marshal(r.User)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the client-held identity and credential used to authorize API
// calls.
type Session struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Token       string `json:"-"`
}

// SessionFromUser builds a session for an authenticated user.
func SessionFromUser(u User, token string) Session {
	return Session{
		UserID:      u.ID,
		DisplayName: u.DisplayName(),
		Role:        u.Role,
		Avatar:      u.Avatar,
		Token:       token,
	}
}

// Valid reports whether the session identifies a user and holds a token.
func (s Session) Valid() bool {
	return s.UserID != "" && s.Token != ""
}
