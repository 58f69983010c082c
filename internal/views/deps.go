// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"

	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/realtime"
)

// Session exposes the signed-in user. *session.Manager satisfies it.
type Session interface {
	Current() (model.Session, bool)
}

// PostService is the part of the API client used by PostCard and Feed.
type PostService interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	LikePost(ctx context.Context, postID string) error
	AddComment(ctx context.Context, postID, text string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
	UpdatePost(ctx context.Context, postID string, u api.PostUpdate) (model.Post, error)
	DeletePost(ctx context.Context, postID string) error
}

// ChatService is the part of the API client used by ChatWindow and
// Conversations.
type ChatService interface {
	ListConversations(ctx context.Context, userID string) ([]model.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	CreateMessage(ctx context.Context, m api.NewMessage) (model.Message, error)
}

// GroupService is the part of the API client used by the group views.
type GroupService interface {
	ListGroups(ctx context.Context) ([]model.Group, error)
	GetGroup(ctx context.Context, groupID string) (model.Group, error)
	ListGroupPosts(ctx context.Context, groupID string) ([]model.Post, error)
	JoinGroup(ctx context.Context, groupID string) error
	LeaveGroup(ctx context.Context, groupID string) error
	RemoveMember(ctx context.Context, groupID, memberID string) (model.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
}

// DirectoryService backs search, the leaderboard and casting calls.
type DirectoryService interface {
	SearchUsers(ctx context.Context, q string) ([]model.User, error)
	Leaderboard(ctx context.Context, role string) ([]model.LeaderboardEntry, error)
	ListCastingCalls(ctx context.Context) ([]model.CastingCall, error)
}

// RealtimeChannel is the realtime connection owned by a ChatWindow.
// *realtime.Channel satisfies it.
type RealtimeChannel interface {
	AddUser(userID string) error
	SendMessage(senderID, receiverID, text string) error
	Arrivals() <-chan realtime.Arrival
	Close() error
}

// Connector opens a realtime channel for a chat view.
type Connector func(ctx context.Context) (RealtimeChannel, error)

// RealtimeConnector dials the gateway with realtime.Open. The token is read
// from tokens each time a view mounts.
func RealtimeConnector(cfg realtime.Config, tokens api.TokenSource, log *zap.SugaredLogger) Connector {
	return func(ctx context.Context) (RealtimeChannel, error) {
		c := cfg
		if tokens != nil {
			if tok, err := tokens.Token(); err == nil {
				c.Token = tok
			}
		}
		ch, err := realtime.Open(ctx, c, log)
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
}
