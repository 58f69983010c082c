// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"time"

	"github.com/nvakumar/ssfrontend/internal/model"
)

func (b *Backend) seed() {
	for _, u := range []model.User{
		{ID: Alice, FullName: "Alice Archer", Email: "alice@example.com", Role: "Actor"},
		{ID: Bob, FullName: "Bob Barker", Email: "bob@example.com", Role: "Director"},
		{ID: Carol, FullName: "Carol Chen", Email: "carol@example.com", Role: "Writer"},
	} {
		b.users[u.ID] = u
	}

	b.posts = []*model.Post{
		{
			ID:          PostByBob,
			Author:      b.ref(Bob),
			Title:       "Casting for a short film",
			Description: "Looking for **two actors** for a weekend shoot.",
			Likes:       []string{Carol},
			Comments: []model.Comment{
				{ID: CommentByCarol, Author: b.ref(Carol), Text: "Interested!", CreatedAt: epoch.Add(-time.Hour)},
			},
			CreatedAt: epoch.Add(-2 * time.Hour),
		},
		{
			ID:        PostByAlice,
			Author:    b.ref(Alice),
			Title:     "First day on set",
			Likes:     []string{},
			Comments:  []model.Comment{},
			CreatedAt: epoch.Add(-3 * time.Hour),
		},
	}

	b.groups = []*model.Group{
		{
			ID:          GroupFilm,
			Name:        "Indie Film Makers",
			Description: "Low budget, high ambition.",
			Admin:       b.ref(Bob),
			Members:     []model.UserRef{b.ref(Bob), b.ref(Carol)},
			CreatedAt:   epoch.Add(-48 * time.Hour),
		},
	}
	b.posts[0].Group = &model.GroupRef{ID: GroupFilm, Name: "Indie Film Makers", Admin: model.Ref(Bob)}

	b.conversations = []model.Conversation{
		{
			ID: ConvAliceBob,
			Participants: []model.Participant{
				{ID: Alice, FullName: "Alice Archer"},
				{ID: Bob, FullName: "Bob Barker"},
			},
		},
	}
	b.messages[ConvAliceBob] = []model.Message{
		{ID: model.Confirmed("m-1"), ConversationID: ConvAliceBob, SenderID: Bob, Text: "Hey Alice", CreatedAt: epoch.Add(-30 * time.Minute)},
		{ID: model.Confirmed("m-2"), ConversationID: ConvAliceBob, SenderID: Alice, Text: "Hi Bob!", CreatedAt: epoch.Add(-29 * time.Minute)},
	}

	b.leaderboard = []model.LeaderboardEntry{
		{UserID: Bob, FullName: "Bob Barker", Role: "Director", TotalLikes: 40, TotalPosts: 10, EngagementScore: 4.2},
		{UserID: Alice, FullName: "Alice Archer", Role: "Actor", TotalLikes: 12, TotalPosts: 6, EngagementScore: 2.5},
		{UserID: Carol, FullName: "Carol Chen", Role: "Writer", TotalLikes: 3, TotalPosts: 2, EngagementScore: 1.1},
	}

	b.casting = []model.CastingCall{
		{
			ID:                  CastingCallLead,
			PostedBy:            b.ref(Bob),
			ProjectTitle:        "Night Shift",
			ProjectType:         "Short Film",
			RoleDescription:     "Lead, late 20s, comedic timing",
			RoleType:            "Actor",
			Location:            "Mumbai",
			ApplicationDeadline: epoch.Add(14 * 24 * time.Hour),
			ContactEmail:        "bob@example.com",
		},
	}
}
