// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE IDENTITY
// =============================================================================

// MessageID identifies a chat message. A message is either Confirmed, when the
// server assigned the id, or Local, when the client synthesized it for a
// realtime arrival that has no durable record yet.
type MessageID struct {
	value string
	local bool
}

// Confirmed wraps a server-assigned id.
func Confirmed(serverID string) MessageID {
	return MessageID{value: serverID}
}

// Local wraps a client-synthesized id.
func Local(tempID string) MessageID {
	return MessageID{value: tempID, local: true}
}

// NewLocalID returns a fresh Local id.
func NewLocalID() MessageID {
	return Local(uuid.NewString())
}

// String returns the raw id.
func (id MessageID) String() string { return id.value }

// IsLocal reports whether the id was synthesized by the client.
func (id MessageID) IsLocal() bool { return id.local }

// IsZero reports whether the id is unset.
func (id MessageID) IsZero() bool { return id.value == "" }

// UnmarshalJSON decodes a server id. Ids arriving from JSON are always
// Confirmed.
func (id *MessageID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = Confirmed(s)
	return nil
}

// MarshalJSON writes the raw id.
func (id MessageID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single direct message.
type Message struct {
	ID             MessageID `json:"_id"`
	ConversationID string    `json:"conversationId,omitempty"`
	SenderID       string    `json:"sender"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewArrival builds a Local message for a realtime delivery.
func NewArrival(senderID, text string, at time.Time) Message {
	return Message{
		ID:        NewLocalID(),
		SenderID:  senderID,
		Text:      text,
		CreatedAt: at,
	}
}

// IsFrom reports whether userID sent the message.
func (m Message) IsFrom(userID string) bool {
	return m.SenderID == userID
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Participant is a member of a conversation.
type Participant struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

// Conversation is a direct message thread. It is read-only for the client.
type Conversation struct {
	ID           string        `json:"_id"`
	Participants []Participant `json:"participants"`
	UpdatedAt    time.Time     `json:"updatedAt,omitempty"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// Other returns the first participant that is not selfID.
func (c Conversation) Other(selfID string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.ID != selfID {
			return p, true
		}
	}
	return Participant{}, false
}

// Title names the conversation from the point of view of selfID.
func (c Conversation) Title(selfID string) string {
	if p, ok := c.Other(selfID); ok && p.FullName != "" {
		return p.FullName
	}
	return "Conversation " + c.ID
}
