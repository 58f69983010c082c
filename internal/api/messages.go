// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// NewMessage is the durable record of a sent chat message.
type NewMessage struct {
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"sender"`
	ReceiverID     string `json:"receiver,omitempty"`
	Text           string `json:"text"`
}

// ListConversations returns the conversations userID takes part in.
func (c *Client) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/conversations/%s", userID)}, &convs)
	return convs, err
}

// ListMessages returns a conversation's history, oldest first.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var msgs []model.Message
	err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/messages/%s", conversationID)}, &msgs)
	return msgs, err
}

// CreateMessage stores a message and returns it with its server id.
func (c *Client) CreateMessage(ctx context.Context, m NewMessage) (model.Message, error) {
	var msg model.Message
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/messages", json: m}, &msg)
	return msg, err
}
