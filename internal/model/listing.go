// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// AllRoles is the leaderboard filter value meaning "no role filter".
const AllRoles = "All Roles"

// Roles lists the professional roles users can pick, in display order.
var Roles = []string{
	"Actor",
	"Model",
	"Filmmaker",
	"Director",
	"Writer",
	"Photographer",
	"Editor",
	"Musician",
	"Creator",
	"Student",
	"Production House",
}

// IsKnownRole reports whether role is AllRoles or one of Roles.
func IsKnownRole(role string) bool {
	if role == AllRoles {
		return true
	}
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	UserID          string  `json:"userId"`
	FullName        string  `json:"fullName"`
	Role            string  `json:"role"`
	Avatar          string  `json:"avatar,omitempty"`
	TotalLikes      int     `json:"totalLikes"`
	TotalPosts      int     `json:"totalPosts"`
	EngagementScore float64 `json:"engagementScore"`
}

// CastingCall is an open audition listing.
type CastingCall struct {
	ID                  string    `json:"_id"`
	PostedBy            UserRef   `json:"user"`
	ProjectTitle        string    `json:"projectTitle"`
	ProjectType         string    `json:"projectType"`
	RoleDescription     string    `json:"roleDescription"`
	RoleType            string    `json:"roleType"`
	Location            string    `json:"location"`
	ApplicationDeadline time.Time `json:"applicationDeadline"`
	ContactEmail        string    `json:"contactEmail"`
}

// Open reports whether applications are still accepted at now.
func (c CastingCall) Open(now time.Time) bool {
	return c.ApplicationDeadline.IsZero() || now.Before(c.ApplicationDeadline)
}
